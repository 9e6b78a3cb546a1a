// Package tui is the interactive task list. Every change goes straight to the
// repository; the list is reloaded from storage afterwards.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/mastertasks/internal/filter"
	"github.com/idilsaglam/mastertasks/internal/model"
	"github.com/idilsaglam/mastertasks/internal/store"
	"github.com/idilsaglam/mastertasks/internal/ui"
)

// Tasks is the part of task.Repository the list needs.
type Tasks interface {
	GetTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, title string, category model.Category) (model.Task, error)
	ToggleTaskCompletion(ctx context.Context, id string) (bool, error)
	UpdateTask(ctx context.Context, id, title string, category model.Category) (bool, error)
	DeleteTask(ctx context.Context, id string) (bool, error)
	StorageInfo() store.Info
}

// listItem adapts model.Task to bubbles/list.Item
type listItem struct {
	task model.Task
	pos  int // 1-based position in storage order, as the CLI numbers tasks
}

func (i listItem) Title() string       { return i.task.Title }
func (i listItem) Description() string { return i.task.Category.DisplayName() }
func (i listItem) FilterValue() string { return i.task.Title }

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
)

type modelTUI struct {
	ctx   context.Context
	repo  Tasks
	log   *slog.Logger
	list  list.Model
	tasks []model.Task // everything in storage, unfiltered
	filt  filter.Filter

	mode     mode
	ti       textinput.Model // shared by add & edit
	category model.Category  // category for the add/edit in progress
	editID   string
	inputErr string

	status    string
	statusErr bool

	width, height int
}

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = ui.Current().Selected.Render(">") + " "
	}
	fmt.Fprint(w, prefix+ui.TaskLine(it.pos, it.task))
}

var (
	addBind    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind   = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	toggleBind = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	deleteBind = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	filterBind = key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "next filter"))
)

func newModel(ctx context.Context, repo Tasks, log *slog.Logger) modelTUI {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	l := list.New(nil, itemDelegate{}, 80, 20)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = ui.Current().Title
	l.Styles.HelpStyle = ui.Current().Muted
	l.Styles.PaginationStyle = ui.Current().Muted
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("task", "tasks")
	l.DisableQuitKeybindings()

	extra := func() []key.Binding {
		return []key.Binding{toggleBind, addBind, editBind, deleteBind, filterBind}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := modelTUI{
		ctx:      ctx,
		repo:     repo,
		log:      log,
		list:     l,
		ti:       ti,
		filt:     filter.Filter{Kind: filter.All},
		category: model.CategoryPersonal,
		width:    80,
		height:   24,
	}
	m.reload()
	return m
}

// Run starts the Bubble Tea list and blocks until the user quits.
func Run(ctx context.Context, repo Tasks, log *slog.Logger) error {
	p := tea.NewProgram(newModel(ctx, repo, log), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// reload re-reads storage. On failure the list is emptied rather than left
// showing data that may no longer match storage.
func (m *modelTUI) reload() tea.Cmd {
	tasks, err := m.repo.GetTasks(m.ctx)
	if err != nil {
		m.log.Error("loading tasks", "err", err)
		m.fail(err)
		m.tasks = nil
		return m.refresh()
	}
	m.tasks = tasks
	return m.refresh()
}

// refresh re-applies the filter to the cached tasks. The returned command
// re-runs an active "/" search over the new items.
func (m *modelTUI) refresh() tea.Cmd {
	pos := make(map[string]int, len(m.tasks))
	for i, t := range m.tasks {
		pos[t.ID] = i + 1
	}
	shown := filter.Apply(m.tasks, m.filt)
	items := make([]list.Item, 0, len(shown))
	for _, t := range shown {
		items = append(items, listItem{task: t, pos: pos[t.ID]})
	}
	m.list.Title = ui.Header(filter.DisplayName(m.filt), model.ComputeStats(m.tasks))
	return m.list.SetItems(items)
}

func (m *modelTUI) fail(err error) {
	m.status = err.Error()
	m.statusErr = true
}

func (m *modelTUI) note(msg string) {
	m.status = msg
	m.statusErr = false
}

func (m modelTUI) selected() (model.Task, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}

func nextCategory(c model.Category) model.Category {
	all := model.Categories()
	for i, x := range all {
		if x == c {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

// Update and View implement Bubble Tea's Model on modelTUI
func (m modelTUI) Init() tea.Cmd { return nil }

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if sz, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = sz.Width, sz.Height
		m.resize()
		return m, nil
	}
	if m.mode != modeList {
		return m.updateInput(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	// While the list's own "/" filter is being typed, every key belongs to it.
	if !ok || m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch km.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc":
		if m.list.FilterState() == list.Unfiltered {
			return m, tea.Quit
		}
	case " ":
		if t, ok := m.selected(); ok {
			if _, err := m.repo.ToggleTaskCompletion(m.ctx, t.ID); err != nil {
				m.fail(err)
				return m, nil
			}
			m.note("toggled")
			cmd := m.reload()
			return m, cmd
		}
		return m, nil
	case "d":
		if t, ok := m.selected(); ok {
			if _, err := m.repo.DeleteTask(m.ctx, t.ID); err != nil {
				m.fail(err)
				return m, nil
			}
			m.note("deleted")
			cmd := m.reload()
			return m, cmd
		}
		return m, nil
	case "a":
		m.mode = modeAdd
		m.inputErr = ""
		m.category = model.CategoryPersonal
		m.ti.SetValue("")
		m.ti.Placeholder = "New task title..."
		cmd := m.ti.Focus()
		return m, cmd
	case "e":
		if t, ok := m.selected(); ok {
			m.mode = modeEdit
			m.inputErr = ""
			m.editID = t.ID
			m.category = t.Category
			m.ti.SetValue(t.Title)
			m.ti.CursorEnd()
			m.ti.Placeholder = "Edit task title..."
			cmd := m.ti.Focus()
			return m, cmd
		}
		return m, nil
	case "f":
		m.filt.Kind = m.filt.Kind.Next()
		cmd := m.refresh()
		return m, cmd
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m modelTUI) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			m.closeInput()
			return m, nil
		case "tab":
			m.category = nextCategory(m.category)
			return m, nil
		case "enter":
			title := strings.TrimSpace(m.ti.Value())
			if title == "" {
				m.inputErr = "Title cannot be empty"
				return m, nil
			}
			var err error
			if m.mode == modeAdd {
				_, err = m.repo.CreateTask(m.ctx, title, m.category)
			} else {
				_, err = m.repo.UpdateTask(m.ctx, m.editID, title, m.category)
			}
			if err != nil {
				m.inputErr = err.Error()
				return m, nil
			}
			if m.mode == modeAdd {
				m.note("added")
			} else {
				m.note("updated")
			}
			m.closeInput()
			cmd := m.reload()
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *modelTUI) closeInput() {
	m.mode = modeList
	m.editID = ""
	m.inputErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
}

func (m *modelTUI) resize() {
	h := m.height - 6
	if m.mode != modeList {
		h -= 3
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
}

func (m modelTUI) View() string {
	th := ui.Current()
	s := model.ComputeStats(m.tasks)

	lines := []string{
		m.list.View(),
		th.Muted.Render(ui.ProgressBar(s.Completed, s.Total, 28)),
	}
	if m.mode != modeList {
		title := "Add task"
		if m.mode == modeEdit {
			title = "Edit task"
		}
		title += "  " + ui.Badge(m.category) + th.Muted.Render("  tab: category")
		if m.inputErr != "" {
			title += "  " + th.Error.Render(m.inputErr)
		}
		box := lipgloss.NewStyle().Border(th.Border).BorderForeground(th.BorderColor).Padding(0, 1)
		lines = append(lines, box.Render(title+"\n"+m.ti.View()))
	}

	status := ui.StorageLine(m.repo.StorageInfo())
	if m.status != "" {
		if m.statusErr {
			status += "  " + th.Error.Render(m.status)
		} else {
			status += "  " + th.Success.Render(m.status)
		}
	}
	lines = append(lines, status)
	return ui.Panel(lines)
}
