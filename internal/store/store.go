// Package store defines the storage capability every backend implements and
// the Collection adapter that keeps the task list under one logical key.
//
// Three backends live in subpackages:
//   - kvstore: native key-value file store (bbolt)
//   - sqlitestore: embedded SQL database (SQLite)
//   - memory: process-local map, used as the degraded fallback
//
// The selector subpackage decides which one a process uses.
package store

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when a backend handle is nil or closed.
var ErrNotConfigured = errors.New("storage is not configured")

// Kind identifies a backend implementation.
type Kind string

const (
	KindNative   Kind = "native-kv"
	KindEmbedded Kind = "embedded-db"
	KindMemory   Kind = "memory"
)

// Description is the user-facing storage type text. The memory text must
// make clear that nothing survives a restart.
func (k Kind) Description() string {
	switch k {
	case KindNative:
		return "Native key-value (bbolt - persistent)"
	case KindEmbedded:
		return "Embedded database (SQLite - persistent)"
	case KindMemory:
		return "Memory (temporary - data is lost on exit)"
	}
	return string(k)
}

// Durable reports whether data written to this kind of backend survives a
// process restart.
func (k Kind) Durable() bool { return k == KindNative || k == KindEmbedded }

// Backend is a string-keyed byte store. Every backend implements all of it,
// diagnostics included. Individual calls are atomic; sequences of calls are
// not.
type Backend interface {
	Kind() Kind
	// Get returns the value under key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set replaces the value under key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists every key currently stored, sorted.
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Info is the selection outcome the UI shows.
type Info struct {
	UsingFallback bool   `json:"usingFallback" yaml:"usingFallback"`
	StorageType   string `json:"storageType" yaml:"storageType"`
	IsNative      bool   `json:"isNative" yaml:"isNative"`
	// Kind is empty until selection has run.
	Kind Kind `json:"kind" yaml:"kind"`
}
