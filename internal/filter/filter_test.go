package filter

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/idilsaglam/mastertasks/internal/model"
)

func sample() []model.Task {
	return []model.Task{
		{ID: "1", Title: "Buy milk", Category: model.CategoryPersonal},
		{ID: "2", Title: "Write REPORT", Category: model.CategoryWork, Completed: true},
		{ID: "3", Title: "Read chapter 4", Category: model.CategoryStudy},
		{ID: "4", Title: "Call the bank", Category: model.CategoryUrgent, Completed: true},
		{ID: "5", Title: "Straße fegen", Category: model.CategoryPersonal},
	}
}

func ids(tasks []model.Task) string {
	s := ""
	for _, t := range tasks {
		s += t.ID
	}
	return s
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		f    Filter
		want string
	}{
		{"all", Filter{Kind: All}, "12345"},
		{"zero value", Filter{}, "12345"},
		{"pending", Filter{Kind: Pending}, "135"},
		{"completed", Filter{Kind: Completed}, "24"},
		{"category", Filter{Kind: Kind(model.CategoryPersonal)}, "15"},
		{"search case-insensitive", Filter{Kind: All, Query: "  report "}, "2"},
		{"search within filter", Filter{Kind: Pending, Query: "a"}, "35"},
		{"search unicode fold", Filter{Query: "STRASSE"}, "5"},
		{"no match", Filter{Query: "zzz"}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ids(Apply(sample(), tc.f)); got != tc.want {
				t.Fatalf("Apply() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	for in, want := range map[string]Kind{"": All, "ALL": All, "pending": Pending, "Work": Kind(model.CategoryWork)} {
		got, err := Parse(in)
		if err != nil || got != want {
			t.Errorf("Parse(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := Parse("someday"); err == nil {
		t.Error("Parse(someday) err = nil, want non-nil")
	}
}

func TestNext_Cycles(t *testing.T) {
	k := All
	for range Kinds() {
		k = k.Next()
	}
	if k != All {
		t.Fatalf("after a full cycle got %q, want all", k)
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]Filter{
		"All tasks":       {Kind: All},
		"Pending tasks":   {Kind: Pending},
		"Completed tasks": {Kind: Completed},
		"Urgent":          {Kind: Kind(model.CategoryUrgent)},
		`Search: "milk"`:  {Kind: Completed, Query: "milk"},
	}
	for want, f := range tests {
		if got := DisplayName(f); got != want {
			t.Errorf("DisplayName(%+v) = %q, want %q", f, got, want)
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample())
	if s.Total != 5 || s.Completed != 2 || s.Pending != 3 {
		t.Fatalf("Summarize() = %+v", s.Stats)
	}
	if s.ByCategory[model.CategoryPersonal] != 2 || s.ByCategory[model.CategoryStudy] != 1 {
		t.Fatalf("ByCategory = %v", s.ByCategory)
	}

	empty := Summarize(nil)
	if len(empty.ByCategory) != len(model.Categories()) {
		t.Fatalf("ByCategory on empty = %v, want every category", empty.ByCategory)
	}
}

func genTask(t *rapid.T) model.Task {
	cats := model.Categories()
	return model.Task{
		ID:        rapid.StringMatching(`[a-z0-9]{6}`).Draw(t, "id"),
		Title:     rapid.StringMatching(`[A-Za-z ]{1,20}`).Draw(t, "title"),
		Completed: rapid.Bool().Draw(t, "completed"),
		Category:  cats[rapid.IntRange(0, len(cats)-1).Draw(t, "cat")],
	}
}

// Apply returns an order-preserving subsequence; category counts sum to Total.
func TestProperty_ApplyIsSubsequence(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tasks := rapid.SliceOfN(rapid.Custom(genTask), 0, 30).Draw(rt, "tasks")
		kinds := Kinds()
		f := Filter{
			Kind:  kinds[rapid.IntRange(0, len(kinds)-1).Draw(rt, "kind")],
			Query: rapid.StringMatching(`[a-z]{0,2}`).Draw(rt, "query"),
		}

		got := Apply(tasks, f)
		j := 0
		for _, t := range tasks {
			if j < len(got) && got[j] == t {
				j++
			}
		}
		if j != len(got) {
			rt.Fatalf("Apply() result is not a subsequence of the input")
		}

		sum := 0
		for _, n := range Summarize(tasks).ByCategory {
			sum += n
		}
		if sum != len(tasks) {
			rt.Fatalf("category counts sum to %d, want %d", sum, len(tasks))
		}
	})
}
