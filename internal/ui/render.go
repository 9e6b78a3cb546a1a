package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/mastertasks/internal/filter"
	"github.com/idilsaglam/mastertasks/internal/model"
	"github.com/idilsaglam/mastertasks/internal/store"
)

const maxTitle = 80

// Badge is the short coloured category label, e.g. "[work]".
func Badge(c model.Category) string {
	s := lipgloss.NewStyle()
	if !Current().NoColor {
		s = s.Foreground(lipgloss.Color(c.Color()))
	}
	return s.Render("[" + string(c) + "]")
}

// Truncate shortens long titles for single-line display.
func Truncate(title string, max int) string {
	r := []rune(title)
	if len(r) <= max {
		return title
	}
	return string(r[:max-3]) + "..."
}

// TaskLine renders one task with its 1-based index.
func TaskLine(index int, t model.Task) string {
	th := Current()
	box, boxStyle, title := th.BoxUnchecked, th.Muted, Truncate(t.Title, maxTitle)
	if t.Completed {
		box, boxStyle, title = th.BoxChecked, th.Success, th.Done.Render(title)
	}
	return fmt.Sprintf("%s %s %s %s",
		th.Muted.Render(fmt.Sprintf("%2d.", index)),
		boxStyle.Render(box),
		title,
		Badge(t.Category),
	)
}

// Header is the one-line counter strip shown above lists.
func Header(title string, s model.Stats) string {
	th := Current()
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		th.Title.Render(title),
		th.Success.Render(th.SymDone), s.Completed,
		th.Pending.Render(th.SymPending), s.Pending,
		th.Accent.Render("Total"), s.Total,
	)
}

// CategoryLine lists per-category counts.
func CategoryLine(sum filter.Summary) string {
	line := ""
	for i, c := range model.Categories() {
		if i > 0 {
			line += "  "
		}
		line += fmt.Sprintf("%s %d", Badge(c), sum.ByCategory[c])
	}
	return line
}

// StorageLine describes the active backend; the fallback is flagged so the
// user knows nothing will be kept.
func StorageLine(info store.Info) string {
	th := Current()
	text := "Storage: " + info.StorageType
	if info.UsingFallback {
		return th.Pending.Render(text + " (fallback)")
	}
	return th.Muted.Render(text)
}
