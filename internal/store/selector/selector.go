// Package selector decides, once per process, which storage backend the task
// repository talks to.
//
// The decision runs in order: a native host opens the native key-value
// backend, anything else opens the embedded database. If the chosen backend
// fails to open, the selector logs the cause and falls back to the in-memory
// backend. The failure never reaches callers as an error; it shows up only in
// Info().UsingFallback and the storage type text. The choice is never retried.
package selector

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/idilsaglam/mastertasks/internal/store"
	"github.com/idilsaglam/mastertasks/internal/store/kvstore"
	"github.com/idilsaglam/mastertasks/internal/store/memory"
	"github.com/idilsaglam/mastertasks/internal/store/sqlitestore"
)

// Platform tells the selector what kind of host it runs on.
type Platform string

const (
	PlatformAuto    Platform = "auto"
	PlatformNative  Platform = "native"
	PlatformDesktop Platform = "desktop"
)

// ParsePlatform accepts auto, native or desktop. Empty means auto.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PlatformAuto, nil
	case PlatformAuto, PlatformNative, PlatformDesktop:
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q (want auto, native or desktop)", s)
}

// IsNative resolves auto against the operating system: mobile hosts are
// native.
func IsNative(p Platform, goos string) bool {
	switch p {
	case PlatformNative:
		return true
	case PlatformDesktop:
		return false
	}
	return goos == "android" || goos == "ios"
}

// Opener opens one backend.
type Opener func(ctx context.Context) (store.Backend, error)

// Config drives the selection. OpenNative and OpenEmbedded default to the
// bbolt and SQLite backends under DataDir.
type Config struct {
	Platform     Platform
	DataDir      string
	GOOS         string
	OpenNative   Opener
	OpenEmbedded Opener
	Logger       *slog.Logger
}

// Selector holds the process-wide backend choice. Build it once at startup
// and hand it to whatever needs storage.
type Selector struct {
	cfg Config

	once  sync.Once
	ready atomic.Bool

	backend    store.Backend
	collection *store.Collection
	info       store.Info
	cause      error
}

func New(cfg Config) *Selector {
	if cfg.Platform == "" {
		cfg.Platform = PlatformAuto
	}
	if cfg.GOOS == "" {
		cfg.GOOS = runtime.GOOS
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.OpenNative == nil {
		dir := cfg.DataDir
		cfg.OpenNative = func(context.Context) (store.Backend, error) {
			return kvstore.OpenDir(dir)
		}
	}
	if cfg.OpenEmbedded == nil {
		dir := cfg.DataDir
		cfg.OpenEmbedded = func(ctx context.Context) (store.Backend, error) {
			return sqlitestore.OpenDir(ctx, dir)
		}
	}
	return &Selector{cfg: cfg}
}

// Init runs the selection the first time it is called; later calls return
// immediately.
func (s *Selector) Init(ctx context.Context) {
	s.once.Do(func() {
		s.selectBackend(ctx)
		s.ready.Store(true)
	})
}

func (s *Selector) selectBackend(ctx context.Context) {
	log := s.cfg.Logger
	native := IsNative(s.cfg.Platform, s.cfg.GOOS)

	open := s.cfg.OpenEmbedded
	if native {
		open = s.cfg.OpenNative
	}
	b, err := safeOpen(ctx, open)
	if err != nil {
		log.Warn("storage unavailable, using in-memory fallback",
			"native", native, "err", err)
		s.cause = err
		b = memory.New()
	} else {
		log.Info("storage ready", "kind", b.Kind(), "native", native)
	}

	s.backend = b
	s.collection = store.NewCollection(b)
	s.info = store.Info{
		UsingFallback: b.Kind() == store.KindMemory && err != nil,
		StorageType:   b.Kind().Description(),
		IsNative:      native,
		Kind:          b.Kind(),
	}
}

// safeOpen turns a panicking opener into an error so that selection always
// completes.
func safeOpen(ctx context.Context, open Opener) (b store.Backend, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("open backend: panic: %v", r)
		}
	}()
	b, err = open(ctx)
	if err == nil && b == nil {
		err = fmt.Errorf("open backend: %w", store.ErrNotConfigured)
	}
	return b, err
}

// Collection returns the task collection on the selected backend, running
// Init first if needed.
func (s *Selector) Collection(ctx context.Context) *store.Collection {
	s.Init(ctx)
	return s.collection
}

// Info reports the selection outcome without re-running it. Before Init it
// reports a "Checking..." placeholder.
func (s *Selector) Info() store.Info {
	if !s.ready.Load() {
		return store.Info{StorageType: "Checking..."}
	}
	return s.info
}

// Cause returns the error that forced the fallback, if any.
func (s *Selector) Cause() error {
	if !s.ready.Load() {
		return nil
	}
	return s.cause
}

// Close releases the selected backend. It is safe to call before Init.
func (s *Selector) Close() error {
	if !s.ready.Load() || s.backend == nil {
		return nil
	}
	return s.backend.Close()
}
