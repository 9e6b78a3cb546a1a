package model

import (
	"fmt"
	"time"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision, the same
// shape JavaScript's Date.toISOString produces.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Precision is the smallest time step that survives a round-trip through
// the persisted form.
const Precision = time.Millisecond

// StoredTask is the JSON-safe form of a Task as it sits in storage.
type StoredTask struct {
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Completed bool     `json:"completed" yaml:"completed"`
	Category  Category `json:"category" yaml:"category"`
	CreatedAt string   `json:"createdAt" yaml:"createdAt"`
	UpdatedAt string   `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// FormatTimestamp renders t in the persisted layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Truncate(Precision).Format(TimestampLayout)
}

// ParseTimestamp accepts any RFC 3339 timestamp, fractional seconds optional.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// Serialize converts a Task to its storage-safe form.
func Serialize(t Task) StoredTask {
	return StoredTask{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		Category:  t.Category,
		CreatedAt: FormatTimestamp(t.CreatedAt),
		UpdatedAt: FormatTimestamp(t.UpdatedAt),
	}
}

// Deserialize converts a stored record back into a Task. A missing
// updatedAt falls back to createdAt.
func Deserialize(st StoredTask) (Task, error) {
	if !st.Category.Valid() {
		return Task{}, fmt.Errorf("task %s: %w: %q", st.ID, ErrInvalidCategory, string(st.Category))
	}
	created, err := ParseTimestamp(st.CreatedAt)
	if err != nil {
		return Task{}, fmt.Errorf("task %s createdAt: %w", st.ID, err)
	}
	updated := created
	if st.UpdatedAt != "" {
		updated, err = ParseTimestamp(st.UpdatedAt)
		if err != nil {
			return Task{}, fmt.Errorf("task %s updatedAt: %w", st.ID, err)
		}
	}
	return Task{
		ID:        st.ID,
		Title:     st.Title,
		Completed: st.Completed,
		Category:  st.Category,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

// SerializeAll converts a collection, preserving order.
func SerializeAll(tasks []Task) []StoredTask {
	out := make([]StoredTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, Serialize(t))
	}
	return out
}

// DeserializeAll converts a stored collection, preserving order. The first
// malformed record aborts the conversion.
func DeserializeAll(stored []StoredTask) ([]Task, error) {
	out := make([]Task, 0, len(stored))
	for _, st := range stored {
		t, err := Deserialize(st)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
