// Package task owns task identity, serialization and the CRUD operations the
// presentation layer calls.
//
// Every mutating operation loads the whole collection, changes it in memory
// and writes the whole collection back. There is no lock around that
// sequence: two overlapping writers lose one update (last writer wins). That
// is accepted for a single-user, single-device app.
package task

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/idilsaglam/mastertasks/internal/model"
	"github.com/idilsaglam/mastertasks/internal/store"
	"github.com/idilsaglam/mastertasks/internal/store/jsonstore"
	"github.com/idilsaglam/mastertasks/internal/store/selector"
)

// Repository is the only entry point the UI uses for task data.
type Repository struct {
	sel   *selector.Selector
	log   *slog.Logger
	now   func() time.Time
	newID func() string
}

type Option func(*Repository)

func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.log = l
		}
	}
}

// WithClock replaces time.Now; mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator replaces the UUIDv4 generator.
func WithIDGenerator(gen func() string) Option {
	return func(r *Repository) {
		if gen != nil {
			r.newID = gen
		}
	}
}

func NewRepository(sel *selector.Selector, opts ...Option) (*Repository, error) {
	if sel == nil {
		return nil, ErrSelectorNil
	}
	r := &Repository{
		sel:   sel,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// collection makes sure the backend is selected; a no-op after the first call.
func (r *Repository) collection(ctx context.Context) *store.Collection {
	return r.sel.Collection(ctx)
}

// timestamp is the current time at persisted precision, so what a call
// returns equals what a later read produces.
func (r *Repository) timestamp() time.Time {
	return r.now().UTC().Truncate(model.Precision)
}

func validate(title string, category model.Category) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if !category.Valid() {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, string(category))
	}
	return title, nil
}

// CreateTask appends a new pending task. Empty titles and unknown categories
// are rejected before any storage access.
func (r *Repository) CreateTask(ctx context.Context, title string, category model.Category) (model.Task, error) {
	title, err := validate(title, category)
	if err != nil {
		return model.Task{}, err
	}
	c := r.collection(ctx)

	now := r.timestamp()
	t := model.Task{
		ID:        r.newID(),
		Title:     title,
		Completed: false,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}

	stored, err := c.Load(ctx)
	if err != nil {
		return model.Task{}, err
	}
	stored = append(stored, model.Serialize(t))
	if err := c.Save(ctx, stored); err != nil {
		return model.Task{}, err
	}

	r.log.Debug("task created", "id", t.ID, "category", t.Category, "total", len(stored))
	return t, nil
}

// GetTasks returns every task in storage order.
func (r *Repository) GetTasks(ctx context.Context) ([]model.Task, error) {
	c := r.collection(ctx)
	stored, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := model.DeserializeAll(stored)
	if err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	r.log.Debug("tasks loaded", "count", len(tasks), "kind", c.Kind())
	return tasks, nil
}

// GetTask looks a single task up by id.
func (r *Repository) GetTask(ctx context.Context, id string) (model.Task, bool, error) {
	tasks, err := r.GetTasks(ctx)
	if err != nil {
		return model.Task{}, false, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, true, nil
		}
	}
	return model.Task{}, false, nil
}

// touch moves UpdatedAt to now, and at least one persisted tick past its
// previous value so successive edits are strictly ordered.
func (r *Repository) touch(t *model.Task) {
	now := r.timestamp()
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(model.Precision)
	}
	t.UpdatedAt = now
}

// mutate runs fn on the first task with the given id and persists the whole
// collection. It reports false, without writing, when no task matches.
func (r *Repository) mutate(ctx context.Context, id string, fn func(*model.Task)) (bool, error) {
	tasks, err := r.GetTasks(ctx)
	if err != nil {
		return false, err
	}
	idx := -1
	for i := range tasks {
		if tasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}
	fn(&tasks[idx])
	r.touch(&tasks[idx])

	if err := r.collection(ctx).Save(ctx, model.SerializeAll(tasks)); err != nil {
		return false, err
	}
	return true, nil
}

// ToggleTaskCompletion flips the completed flag. An unknown id is not an
// error; it returns false and leaves storage untouched.
func (r *Repository) ToggleTaskCompletion(ctx context.Context, id string) (bool, error) {
	found, err := r.mutate(ctx, id, func(t *model.Task) { t.Completed = !t.Completed })
	if err != nil {
		return false, err
	}
	r.log.Debug("task toggled", "id", id, "found", found)
	return found, nil
}

// UpdateTask replaces title and category, with the same validation as
// CreateTask.
func (r *Repository) UpdateTask(ctx context.Context, id, title string, category model.Category) (bool, error) {
	title, err := validate(title, category)
	if err != nil {
		return false, err
	}
	found, err := r.mutate(ctx, id, func(t *model.Task) {
		t.Title = title
		t.Category = category
	})
	if err != nil {
		return false, err
	}
	r.log.Debug("task updated", "id", id, "found", found)
	return found, nil
}

// DeleteTask removes a task permanently. Storage is written only when
// something was removed.
func (r *Repository) DeleteTask(ctx context.Context, id string) (bool, error) {
	tasks, err := r.GetTasks(ctx)
	if err != nil {
		return false, err
	}
	kept := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tasks) {
		return false, nil
	}
	if err := r.collection(ctx).Save(ctx, model.SerializeAll(kept)); err != nil {
		return false, err
	}
	r.log.Debug("task deleted", "id", id, "remaining", len(kept))
	return true, nil
}

// ClearAllTasks drops the whole collection key.
func (r *Repository) ClearAllTasks(ctx context.Context) error {
	if err := r.collection(ctx).Remove(ctx); err != nil {
		return err
	}
	r.log.Debug("tasks cleared")
	return nil
}

// GetTaskStats aggregates over GetTasks.
func (r *Repository) GetTaskStats(ctx context.Context) (model.Stats, error) {
	tasks, err := r.GetTasks(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	return model.ComputeStats(tasks), nil
}

// DebugStorage returns the backend's raw keys and stored records.
func (r *Repository) DebugStorage(ctx context.Context) (store.DebugInfo, error) {
	info, err := r.collection(ctx).Debug(ctx)
	if err != nil {
		return store.DebugInfo{}, err
	}
	r.log.Debug("storage debug", "kind", info.Kind, "keys", len(info.Keys), "tasks", info.TasksCount)
	return info, nil
}

// TestStorage runs the backend's write/read/delete probe.
func (r *Repository) TestStorage(ctx context.Context) (bool, error) {
	ok, err := r.collection(ctx).SelfTest(ctx)
	if err != nil {
		r.log.Warn("storage self-test failed", "err", err)
		return false, err
	}
	r.log.Debug("storage self-test", "ok", ok)
	return ok, nil
}

// StorageInfo reports which backend is in use without touching it.
func (r *Repository) StorageInfo() store.Info {
	return r.sel.Info()
}

// Prepare runs backend selection now instead of on the first operation and
// returns the outcome.
func (r *Repository) Prepare(ctx context.Context) store.Info {
	r.collection(ctx)
	return r.sel.Info()
}

// FallbackCause is the error that pushed storage onto the in-memory
// fallback, or nil.
func (r *Repository) FallbackCause() error {
	return r.sel.Cause()
}

// Export writes the stored collection to a JSON file and returns how many
// tasks it wrote.
func (r *Repository) Export(ctx context.Context, path string) (int, error) {
	stored, err := r.collection(ctx).Load(ctx)
	if err != nil {
		return 0, err
	}
	if err := jsonstore.WriteFile(path, stored); err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	r.log.Debug("tasks exported", "path", path, "count", len(stored))
	return len(stored), nil
}
