// Package memory is the in-process fallback backend. Nothing it holds
// survives the process.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/idilsaglam/mastertasks/internal/store"
)

type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

func (s *Store) Kind() store.Kind { return store.KindMemory }

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.values == nil {
		return nil, false, store.ErrNotConfigured
	}
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	// callers get their own copy
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.values == nil {
		return store.ErrNotConfigured
	}
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.values == nil {
		return store.ErrNotConfigured
	}
	delete(s.values, key)
	return nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.values == nil {
		return nil, store.ErrNotConfigured
	}
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close drops everything held.
func (s *Store) Close() error {
	s.mu.Lock()
	s.values = nil
	s.mu.Unlock()
	return nil
}
