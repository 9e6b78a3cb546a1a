// Package storetest holds the conformance suite every store.Backend must pass.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/mastertasks/internal/model"
	"github.com/idilsaglam/mastertasks/internal/store"
)

// RunBackend exercises b through the raw Backend contract and through a
// Collection. b must start empty.
func RunBackend(t *testing.T, b store.Backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		v, ok, err := b.Get(ctx, "missing")
		require.NoError(t, err)
		require.False(t, ok)
		require.Nil(t, v)
	})

	t.Run("set get overwrite delete", func(t *testing.T) {
		require.NoError(t, b.Set(ctx, "k", []byte(`"one"`)))
		v, ok, err := b.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, `"one"`, string(v))

		require.NoError(t, b.Set(ctx, "k", []byte(`"two"`)))
		v, _, err = b.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, `"two"`, string(v))

		require.NoError(t, b.Delete(ctx, "k"))
		_, ok, err = b.Get(ctx, "k")
		require.NoError(t, err)
		require.False(t, ok)

		// deleting again is fine
		require.NoError(t, b.Delete(ctx, "k"))
	})

	t.Run("keys sorted", func(t *testing.T) {
		require.NoError(t, b.Set(ctx, "b", []byte("2")))
		require.NoError(t, b.Set(ctx, "a", []byte("1")))
		keys, err := b.Keys(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, keys)
		require.NoError(t, b.Delete(ctx, "a"))
		require.NoError(t, b.Delete(ctx, "b"))
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := b.Get(cctx, "k")
		require.ErrorIs(t, err, context.Canceled)
		require.ErrorIs(t, b.Set(cctx, "k", []byte("x")), context.Canceled)
	})

	t.Run("collection round trip", func(t *testing.T) {
		c := store.NewCollection(b)

		got, err := c.Load(ctx)
		require.NoError(t, err)
		require.Empty(t, got)

		in := []model.StoredTask{
			{ID: "2", Title: "second", Category: model.CategoryWork, CreatedAt: "2024-01-01T00:00:00.000Z", UpdatedAt: "2024-01-01T00:00:00.000Z"},
			{ID: "1", Title: "first", Completed: true, Category: model.CategoryUrgent, CreatedAt: "2024-01-02T00:00:00.000Z", UpdatedAt: "2024-01-03T00:00:00.000Z"},
		}
		require.NoError(t, c.Save(ctx, in))

		got, err = c.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, in, got)

		info, err := c.Debug(ctx)
		require.NoError(t, err)
		require.Equal(t, b.Kind(), info.Kind)
		require.Equal(t, b.Kind().Description(), info.StorageType)
		require.Contains(t, info.Keys, store.CollectionKey)
		require.Equal(t, 2, info.TasksCount)

		require.NoError(t, c.Remove(ctx))
		got, err = c.Load(ctx)
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("self test leaves no probe behind", func(t *testing.T) {
		c := store.NewCollection(b)
		ok, err := c.SelfTest(ctx)
		require.NoError(t, err)
		require.True(t, ok)

		_, found, err := b.Get(ctx, store.ProbeKey)
		require.NoError(t, err)
		require.False(t, found)
	})
}
