package model

import "time"

// Task is the domain model for a tracked task. Timestamps are native values;
// see StoredTask for the persisted form.
type Task struct {
	ID        string
	Title     string
	Completed bool
	Category  Category
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stats is a read-only aggregate over a task collection.
// Pending is always Total - Completed.
type Stats struct {
	Total     int `json:"total" yaml:"total"`
	Completed int `json:"completed" yaml:"completed"`
	Pending   int `json:"pending" yaml:"pending"`
}

// ComputeStats counts completed and pending tasks.
func ComputeStats(tasks []Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}
