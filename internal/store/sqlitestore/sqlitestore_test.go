package sqlitestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/mastertasks/internal/store/storetest"
)

func TestStore_Conformance(t *testing.T) {
	s, err := OpenDir(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	storetest.RunBackend(t, s)
}

func TestStore_InMemoryConformance(t *testing.T) {
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	storetest.RunBackend(t, s)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenDir(ctx, dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "tasks", []byte(`[{"id":"1"}]`)))
	require.NoError(t, s.Close())

	// reopening must not re-run the migration
	s, err = OpenDir(ctx, dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	v, ok, err := s.Get(ctx, "tasks")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[{"id":"1"}]`, string(v))
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), "")
	require.Error(t, err)

	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	_, err = OpenDir(context.Background(), blocker)
	require.Error(t, err)
}

func TestUpSection(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"no markers", "CREATE TABLE a (x);", "CREATE TABLE a (x);"},
		{"up only", "-- +migrate Up\nCREATE TABLE a (x);", "\nCREATE TABLE a (x);"},
		{"up and down", "-- +migrate Up\nA;\n-- +migrate Down\nB;", "\nA;\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, upSection(tc.in))
		})
	}
}
