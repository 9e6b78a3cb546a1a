// Package filter projects a task list for display: status or category
// filters plus a case-insensitive title search.
package filter

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/idilsaglam/mastertasks/internal/model"
)

// Kind is "all", "pending", "completed" or a category value.
type Kind string

const (
	All       Kind = "all"
	Pending   Kind = "pending"
	Completed Kind = "completed"
)

// Kinds lists every filter in the order the UI cycles through them.
func Kinds() []Kind {
	out := []Kind{All, Pending, Completed}
	for _, c := range model.Categories() {
		out = append(out, Kind(c))
	}
	return out
}

// Parse accepts a filter name or a category. Empty means All.
func Parse(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case "":
		return All, nil
	case All, Pending, Completed:
		return k, nil
	}
	if model.Category(k).Valid() {
		return k, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// Next returns the filter after k in Kinds order, wrapping around.
func (k Kind) Next() Kind {
	kinds := Kinds()
	for i, x := range kinds {
		if x == k {
			return kinds[(i+1)%len(kinds)]
		}
	}
	return All
}

// Filter is the active view state.
type Filter struct {
	Kind  Kind
	Query string
}

func (f Filter) match(t model.Task, folder cases.Caser, query string) bool {
	switch f.Kind {
	case "", All:
	case Pending:
		if t.Completed {
			return false
		}
	case Completed:
		if !t.Completed {
			return false
		}
	default:
		if t.Category != model.Category(f.Kind) {
			return false
		}
	}
	if query == "" {
		return true
	}
	return strings.Contains(folder.String(t.Title), query)
}

// Apply returns the tasks matching f, in their original order.
func Apply(tasks []model.Task, f Filter) []model.Task {
	folder := cases.Fold()
	query := folder.String(strings.TrimSpace(f.Query))

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.match(t, folder, query) {
			out = append(out, t)
		}
	}
	return out
}

// Summary counts tasks by status and category, ignoring any search.
type Summary struct {
	model.Stats
	ByCategory map[model.Category]int
}

func Summarize(tasks []model.Task) Summary {
	s := Summary{
		Stats:      model.ComputeStats(tasks),
		ByCategory: make(map[model.Category]int, len(model.Categories())),
	}
	for _, c := range model.Categories() {
		s.ByCategory[c] = 0
	}
	for _, t := range tasks {
		s.ByCategory[t.Category]++
	}
	return s
}

// DisplayName is the heading for the current view.
func DisplayName(f Filter) string {
	if q := strings.TrimSpace(f.Query); q != "" {
		return fmt.Sprintf("Search: %q", q)
	}
	switch f.Kind {
	case "", All:
		return "All tasks"
	case Pending:
		return "Pending tasks"
	case Completed:
		return "Completed tasks"
	}
	return model.Category(f.Kind).DisplayName()
}
