package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/idilsaglam/mastertasks/internal/store"
	"github.com/idilsaglam/mastertasks/internal/store/storetest"
)

func TestStore_Conformance(t *testing.T) {
	storetest.RunBackend(t, New())
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()

	in := []byte("abc")
	if err := s.Set(ctx, "k", in); err != nil {
		t.Fatalf("Set() err = %v", err)
	}
	in[0] = 'x'

	got, _, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("Get() = %q, want %q", got, "abc")
	}
	got[1] = 'y'
	again, _, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("Get() after caller mutation = %q, want %q", again, "abc")
	}
}

func TestStore_Closed(t *testing.T) {
	s := New()
	_ = s.Close()

	_, _, err := s.Get(context.Background(), "k")
	if !errors.Is(err, store.ErrNotConfigured) {
		t.Fatalf("Get() err = %v, want %v", err, store.ErrNotConfigured)
	}
}

func TestStore_ConcurrentSet(t *testing.T) {
	s := New()
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = s.Set(ctx, "k", []byte("v"))
			_, _, _ = s.Get(ctx, "k")
		}()
	}
	wg.Wait()

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() err = %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("Keys() len = %d, want 1", len(keys))
	}
}
