// Package cli implements the rayforge command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kingrea/rayforge/internal/action"
	"github.com/kingrea/rayforge/internal/config"
)

// Execute runs the command line and returns the process exit status.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "rayforge: interrupted")
		} else {
			fmt.Fprintf(os.Stderr, "rayforge: %v\n", err)
		}
		return action.ExitCode(err)
	}
	return 0
}

type rootOptions struct {
	dir      string
	file     string
	logLevel string
	noColor  bool
	dryRun   bool
	only     bool
	ui       bool
}

func (o *rootOptions) applyOverrides(cfg *config.Config) {
	if o.file != "" {
		cfg.Settings.File = o.file
	}
	if o.logLevel != "" {
		cfg.Settings.Log.Level = strings.ToLower(o.logLevel)
	}
	if o.noColor {
		cfg.Settings.NoColor = true
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "rayforge [target...]",
		Short: "Build, test and render the canvas",
		Long: `rayforge runs named targets from rayforge.yaml (or the built-in graph)
in dependency order, one external command at a time. The first failing
command stops the chain and its exit status becomes rayforge's.

With no target, the definition's default list runs (clean, test, render).`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTargets(cmd, opts, args)
		},
		ValidArgsFunction: func(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			s, err := openSession(opts, nil)
			if err != nil {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			defer s.Close()
			return append(s.def.TargetIDs(), defaultTarget), cobra.ShellCompDirectiveNoFileComp
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.dir, "dir", "C", ".", "project directory")
	flags.StringVarP(&opts.file, "file", "f", "", "target file (default rayforge.yaml, env RAYFORGE_FILE)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level for .rayforge/logs/rayforge.log (env RAYFORGE_LOG_LEVEL)")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output (env RAYFORGE_NO_COLOR)")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "print the execution order without running anything")
	cmd.Flags().BoolVar(&opts.only, "only", false, "run the named targets without their dependencies")
	cmd.Flags().BoolVar(&opts.ui, "ui", false, "show the live dashboard (useful with tdd)")

	cmd.AddCommand(
		newListCmd(opts),
		newStatusCmd(opts),
		newLogCmd(opts),
		newInitCmd(opts),
	)
	return cmd
}
