package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/idilsaglam/mastertasks/internal/model"
	"github.com/idilsaglam/mastertasks/internal/store/jsonstore"
)

const (
	// CollectionKey is the single key the task list lives under.
	CollectionKey = "tasks"
	// ProbeKey is written and removed again by SelfTest.
	ProbeKey = "storage_test"
)

// DebugInfo is a raw snapshot of what a backend holds.
type DebugInfo struct {
	StorageType string             `json:"storageType" yaml:"storageType"`
	Kind        Kind               `json:"kind" yaml:"kind"`
	Keys        []string           `json:"keys" yaml:"keys"`
	Tasks       []model.StoredTask `json:"tasks" yaml:"tasks"`
	TasksCount  int                `json:"tasksCount" yaml:"tasksCount"`
}

// Collection binds a Backend to the task collection key. Load, Save and
// Remove pass backend errors through; nothing is retried.
type Collection struct {
	backend Backend
}

func NewCollection(b Backend) *Collection {
	return &Collection{backend: b}
}

func (c *Collection) Kind() Kind {
	if c == nil || c.backend == nil {
		return ""
	}
	return c.backend.Kind()
}

// Load returns the stored collection, or an empty slice when the key is absent.
func (c *Collection) Load(ctx context.Context) ([]model.StoredTask, error) {
	if c == nil || c.backend == nil {
		return nil, ErrNotConfigured
	}
	raw, ok, err := c.backend.Get(ctx, CollectionKey)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", CollectionKey, err)
	}
	if !ok {
		return []model.StoredTask{}, nil
	}
	tasks, err := jsonstore.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", CollectionKey, err)
	}
	return tasks, nil
}

// Save overwrites the whole collection.
func (c *Collection) Save(ctx context.Context, tasks []model.StoredTask) error {
	if c == nil || c.backend == nil {
		return ErrNotConfigured
	}
	raw, err := jsonstore.Encode(tasks)
	if err != nil {
		return fmt.Errorf("save %s: %w", CollectionKey, err)
	}
	if err := c.backend.Set(ctx, CollectionKey, raw); err != nil {
		return fmt.Errorf("save %s: %w", CollectionKey, err)
	}
	return nil
}

// Remove deletes the collection key outright.
func (c *Collection) Remove(ctx context.Context) error {
	if c == nil || c.backend == nil {
		return ErrNotConfigured
	}
	if err := c.backend.Delete(ctx, CollectionKey); err != nil {
		return fmt.Errorf("remove %s: %w", CollectionKey, err)
	}
	return nil
}

type probe struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// SelfTest writes a probe value, reads it back and deletes it. It reports
// false with the error when any step fails.
func (c *Collection) SelfTest(ctx context.Context) (bool, error) {
	if c == nil || c.backend == nil {
		return false, ErrNotConfigured
	}
	want := probe{
		Message:   fmt.Sprintf("%s storage works", c.backend.Kind()),
		Timestamp: model.FormatTimestamp(time.Now()),
	}
	raw, err := json.Marshal(want)
	if err != nil {
		return false, fmt.Errorf("self-test marshal: %w", err)
	}
	if err := c.backend.Set(ctx, ProbeKey, raw); err != nil {
		return false, fmt.Errorf("self-test write: %w", err)
	}
	got, ok, err := c.backend.Get(ctx, ProbeKey)
	if err != nil {
		return false, fmt.Errorf("self-test read: %w", err)
	}
	if err := c.backend.Delete(ctx, ProbeKey); err != nil {
		return false, fmt.Errorf("self-test delete: %w", err)
	}
	if !ok || !bytes.Equal(got, raw) {
		return false, nil
	}
	var back probe
	if err := json.Unmarshal(got, &back); err != nil {
		return false, nil
	}
	return back == want, nil
}

// Debug lists the backend's keys and the raw stored tasks.
func (c *Collection) Debug(ctx context.Context) (DebugInfo, error) {
	if c == nil || c.backend == nil {
		return DebugInfo{}, ErrNotConfigured
	}
	keys, err := c.backend.Keys(ctx)
	if err != nil {
		return DebugInfo{}, fmt.Errorf("list keys: %w", err)
	}
	tasks, err := c.Load(ctx)
	if err != nil {
		return DebugInfo{}, err
	}
	kind := c.backend.Kind()
	return DebugInfo{
		StorageType: kind.Description(),
		Kind:        kind,
		Keys:        keys,
		Tasks:       tasks,
		TasksCount:  len(tasks),
	}, nil
}
