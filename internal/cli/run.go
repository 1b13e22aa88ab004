package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrea/rayforge/internal/console"
	"github.com/kingrea/rayforge/internal/eventbridge"
	"github.com/kingrea/rayforge/internal/tui"
	"github.com/kingrea/rayforge/internal/workflow/engine"
)

// defaultTarget names the definition's default list on the command line.
const defaultTarget = "default"

func runTargets(cmd *cobra.Command, opts *rootOptions, args []string) error {
	var logConsole io.Writer = cmd.ErrOrStderr()
	if opts.ui {
		logConsole = nil
	}
	s, err := openSession(opts, logConsole)
	if err != nil {
		return err
	}
	defer s.Close()

	req := engine.RunRequest{
		Definition:       s.def,
		Targets:          expandTargets(s, args),
		SkipDependencies: opts.only,
	}
	if opts.dryRun {
		return printPlan(cmd.OutOrStdout(), s, req)
	}
	if opts.ui {
		return runDashboard(cmd.Context(), s, req, args)
	}

	rc := s.runContext(cmd.OutOrStdout(), cmd.ErrOrStderr())
	rc.Reporter = console.NewReporter(cmd.ErrOrStderr(), s.cfg.Settings.NoColor)
	_, err = s.engine.Run(cmd.Context(), rc, req)
	return err
}

// expandTargets maps "default" to the definition's default list unless the
// project declares a target with that name.
func expandTargets(s *session, args []string) []string {
	var out []string
	for _, arg := range args {
		if _, declared := s.def.Target(arg); arg == defaultTarget && !declared {
			out = append(out, s.def.Default...)
			continue
		}
		out = append(out, arg)
	}
	return out
}

func printPlan(w io.Writer, s *session, req engine.RunRequest) error {
	queue, err := s.engine.Plan(req)
	if err != nil {
		return err
	}
	for i, id := range queue {
		ref, _ := s.def.Target(id)
		line := fmt.Sprintf("%d. %s (%s)", i+1, id, ref.ActionKind())
		if ref.Description != "" {
			line += " " + ref.Description
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

// runDashboard runs req behind the bubbletea dashboard. Command output goes
// to .rayforge/logs/output.log while the dashboard owns the terminal.
func runDashboard(ctx context.Context, s *session, req engine.RunRequest, args []string) error {
	output, err := os.OpenFile(s.cfg.Layout.OutputPath(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open output log: %w", err)
	}
	defer output.Close()

	router := eventbridge.NewRouter(eventbridge.RouterWithLogger(s.logger.Logger))
	sub := router.Subscribe(eventbridge.AllTargets)
	defer sub.Close()

	rc := s.runContext(output, output)
	rc.Stdin = nil
	rc.Reporter = router

	title := strings.Join(args, " ")
	if title == "" {
		title = defaultTarget
	}
	return tui.Run(ctx, tui.Options{
		Title:   title,
		Events:  sub.Events,
		NoColor: s.cfg.Settings.NoColor,
		Work: func(ctx context.Context) error {
			_, err := s.engine.Run(ctx, rc, req)
			return err
		},
	})
}
