package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/mastertasks/internal/filter"
	"github.com/idilsaglam/mastertasks/internal/model"
	"github.com/idilsaglam/mastertasks/internal/ui"
)

// resolve finds a task by 1-based index (as printed by ls) or by id.
func (a *app) resolve(ctx context.Context, ref string) (model.Task, error) {
	tasks, err := a.repo.GetTasks(ctx)
	if err != nil {
		return model.Task{}, err
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(tasks) {
			return model.Task{}, usagef("index out of range: have %d, got %d", len(tasks), n)
		}
		return tasks[n-1], nil
	}
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
	}
	return model.Task{}, usagef("no task with id %q", ref)
}

// warnFallback tells the user that nothing written now will survive exit.
func (a *app) warnFallback(cmd *cobra.Command) {
	if a.repo.StorageInfo().UsingFallback {
		ui.Warn(cmd.ErrOrStderr(), "storage unavailable: using memory, changes are lost on exit")
	}
}

func parseCategory(s string) (model.Category, error) {
	c, err := model.ParseCategory(s)
	if err != nil {
		return "", usageError{err}
	}
	return c, nil
}

func newAddCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a new task (title can be multiple words)",
		Example: `  tasks add Buy milk
  tasks add -c urgent "Call the bank"`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := parseCategory(category)
			if err != nil {
				return err
			}
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return usagef("add: empty title")
			}
			t, err := a.repo.CreateTask(cmd.Context(), title, cat)
			if err != nil {
				return err
			}
			a.warnFallback(cmd)
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("added %q %s", t.Title, ui.Badge(t.Category)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", string(model.CategoryPersonal),
		"study, personal, work or urgent")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var (
		kind   string
		search string
		group  bool
	)
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := filter.Parse(kind)
			if err != nil {
				return usageError{err}
			}
			f := filter.Filter{Kind: k, Query: search}

			all, err := a.repo.GetTasks(cmd.Context())
			if err != nil {
				return err
			}
			shown := filter.Apply(all, f)
			s := model.ComputeStats(all)

			th := ui.Current()
			lines := []string{
				ui.Header(filter.DisplayName(f), s),
				th.Muted.Render(ui.ProgressBar(s.Completed, s.Total, 28)),
				"",
			}
			if group {
				lines = append(lines, groupLines(all, shown)...)
			} else {
				lines = append(lines, flatLines(all, shown)...)
			}
			lines = append(lines, "", ui.StorageLine(a.repo.StorageInfo()))
			if len(all) == 0 {
				lines = append(lines, th.Muted.Render("Tip: add with `tasks add Buy milk`"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Panel(lines))
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&kind, "filter", "f", string(filter.All), "all, pending, completed or a category")
	fl.StringVarP(&search, "search", "s", "", "only tasks whose title contains this text")
	fl.BoolVarP(&group, "group", "g", false, "group output by pending/done")
	return cmd
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id|index>",
		Short: "Toggle the completed flag of a task",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := a.resolve(ctx, args[0])
			if err != nil {
				return err
			}
			found, err := a.repo.ToggleTaskCompletion(ctx, t.ID)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("task %s disappeared before it could be toggled", t.ID)
			}
			a.warnFallback(cmd)
			state := "pending"
			if !t.Completed {
				state = "completed"
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("%q marked %s", t.Title, state))
			return nil
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "edit <id|index> <title...>",
		Short: "Change the title (and optionally the category) of a task",
		Args:  usageArgs(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := a.resolve(ctx, args[0])
			if err != nil {
				return err
			}
			cat := t.Category
			if cmd.Flags().Changed("category") {
				if cat, err = parseCategory(category); err != nil {
					return err
				}
			}
			title := strings.TrimSpace(strings.Join(args[1:], " "))
			if title == "" {
				return usagef("edit: empty title")
			}
			found, err := a.repo.UpdateTask(ctx, t.ID, title, cat)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("task %s disappeared before it could be edited", t.ID)
			}
			a.warnFallback(cmd)
			ui.OK(cmd.OutOrStdout(), "updated")
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "study, personal, work or urgent")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id|index>",
		Aliases: []string{"remove"},
		Short:   "Delete a task",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := a.resolve(ctx, args[0])
			if err != nil {
				return err
			}
			found, err := a.repo.DeleteTask(ctx, t.ID)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("task %s disappeared before it could be removed", t.ID)
			}
			a.warnFallback(cmd)
			ui.OK(cmd.OutOrStdout(), "removed")
			return nil
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every task",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return usagef("clear deletes every task; pass --yes to confirm")
			}
			if err := a.repo.ClearAllTasks(cmd.Context()); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "all tasks deleted")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counts",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, err := a.repo.GetTasks(cmd.Context())
			if err != nil {
				return err
			}
			sum := filter.Summarize(all)
			lines := []string{
				ui.Header("Stats", sum.Stats),
				ui.Current().Muted.Render(ui.ProgressBar(sum.Completed, sum.Total, 28)),
				"",
				ui.CategoryLine(sum),
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Panel(lines))
			return nil
		},
	}
}

// -------------- rendering helpers --------------

// positions maps task id to the 1-based index in storage order, so filtered
// listings still print the index done/rm accept.
func positions(all []model.Task) map[string]int {
	pos := make(map[string]int, len(all))
	for i, t := range all {
		pos[t.ID] = i + 1
	}
	return pos
}

func flatLines(all, shown []model.Task) []string {
	if len(shown) == 0 {
		return []string{ui.Current().Muted.Render("no tasks")}
	}
	pos := positions(all)
	out := make([]string, 0, len(shown))
	for _, t := range shown {
		out = append(out, ui.TaskLine(pos[t.ID], t))
	}
	return out
}

func groupLines(all, shown []model.Task) []string {
	var pend, done []model.Task
	for _, t := range shown {
		if t.Completed {
			done = append(done, t)
		} else {
			pend = append(pend, t)
		}
	}
	th := ui.Current()
	section := func(title string, tasks []model.Task) []string {
		lines := []string{th.Accent.Render(title)}
		if len(tasks) == 0 {
			return append(lines, th.Muted.Render("(none)"))
		}
		return append(lines, flatLines(all, tasks)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}
