package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/mastertasks/internal/config"
	"github.com/idilsaglam/mastertasks/internal/model"
	"github.com/idilsaglam/mastertasks/internal/store/selector"
	"github.com/idilsaglam/mastertasks/internal/task"
	"github.com/idilsaglam/mastertasks/internal/ui"
)

// Version is stamped at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// usageError marks mistakes on the command line; they exit with 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

// usageArgs tags cobra's positional-arg errors as usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// exitCode maps an error onto the process exit status (0 ok, 1 error, 2 usage).
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ue usageError
	if errors.As(err, &ue) ||
		errors.Is(err, task.ErrInvalidInput) ||
		errors.Is(err, model.ErrInvalidCategory) {
		return 2
	}
	return 1
}

// app is what every subcommand shares once the root flags are parsed.
type app struct {
	configPath string
	dataDir    string
	platform   string
	logLevel   string

	// openEmbedded replaces the SQLite opener when set.
	openEmbedded selector.Opener

	cfg  config.Config
	log  *slog.Logger
	sel  *selector.Selector
	repo *task.Repository
}

// setup resolves config (file, env, then flags) and wires storage. Nothing is
// opened here; the selector picks a backend on first use.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = a.dataDir
	}
	if flags.Changed("platform") {
		cfg.Platform = a.platform
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return usageError{err}
	}
	platform, _ := selector.ParsePlatform(cfg.Platform)

	ui.SetTheme(cfg.Theme)
	a.cfg = cfg
	a.log = cfg.Logger(cmd.ErrOrStderr())
	a.sel = selector.New(selector.Config{
		Platform:     platform,
		DataDir:      cfg.DataDir,
		Logger:       a.log,
		OpenEmbedded: a.openEmbedded,
	})
	a.repo, err = task.NewRepository(a.sel, task.WithLogger(a.log))
	return err
}

func (a *app) close() {
	if a.sel == nil {
		return
	}
	if err := a.sel.Close(); err != nil {
		a.log.Warn("closing storage", "err", err)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "tasks",
		Short: "mastertasks - a personal task tracker",
		Long: `mastertasks keeps a list of tasks with a category and a done flag.

Tasks are stored in an embedded SQLite database on desktop platforms and in
a bbolt key-value file on mobile platforms. If neither can be opened the app
keeps running on in-memory storage and says so.

Tasks are addressed by id or by the 1-based index shown by "tasks ls".`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return usagef("no command given")
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ~/.mastertasks/config.yaml)")
	pf.StringVar(&a.dataDir, "data-dir", "", "directory for the database files")
	pf.StringVar(&a.platform, "platform", "", "auto, native or desktop")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newDoneCmd(a),
		newEditCmd(a),
		newRemoveCmd(a),
		newClearCmd(a),
		newStatsCmd(a),
		newInfoCmd(a),
		newDebugCmd(a),
		newSelfTestCmd(a),
		newExportCmd(a),
		newUICmd(a),
		newVersionCmd(),
	)
	return root
}

// Run executes one command line and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return run(ctx, &app{}, args, stdout, stderr)
}

func run(ctx context.Context, a *app, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.close()

	code := exitCode(err)
	if code != 0 {
		ui.Fail(stderr, err.Error())
		if code == 2 {
			fmt.Fprintln(stderr, ui.Current().Muted.Render("Hint: run `tasks --help` for usage"))
		}
	}
	return code
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  usageArgs(cobra.NoArgs),
		// no storage needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tasks %s\n", Version)
		},
	}
}
