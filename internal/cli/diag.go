package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/mastertasks/internal/tui"
	"github.com/idilsaglam/mastertasks/internal/ui"
)

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show which storage backend is in use",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := a.repo.Prepare(cmd.Context())

			th := ui.Current()
			lines := []string{
				th.Title.Render("Storage"),
				"type:     " + info.StorageType,
				"native:   " + yesNo(info.IsNative),
				"fallback: " + yesNo(info.UsingFallback),
				"durable:  " + yesNo(info.Kind.Durable()),
				"data dir: " + a.cfg.DataDir,
			}
			if cause := a.repo.FallbackCause(); cause != nil {
				lines = append(lines, th.Error.Render("reason:   "+cause.Error()))
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Panel(lines))
			return nil
		},
	}
}

func newDebugCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Dump the raw keys and records held by the backend",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(format)
			if format != "yaml" && format != "json" {
				return usagef("unknown format %q (want yaml or json)", format)
			}
			info, err := a.repo.DebugStorage(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(info); err != nil {
				return fmt.Errorf("encode yaml: %w", err)
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "yaml or json")
	return cmd
}

func newSelfTestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Write, read back and delete a probe value",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ok, err := a.repo.TestStorage(cmd.Context())
			if err != nil {
				return fmt.Errorf("storage self-test: %w", err)
			}
			if !ok {
				return errors.New("storage self-test failed")
			}
			a.warnFallback(cmd)
			ui.OK(cmd.OutOrStdout(), "storage self-test passed ("+a.repo.StorageInfo().StorageType+")")
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write every task to a JSON file",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.repo.Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("exported %d tasks to %s", n, args[0]))
			return nil
		},
	}
}

func newUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive task list",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return tui.Run(cmd.Context(), a.repo, a.log)
		},
	}
}
