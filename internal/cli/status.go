package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/kingrea/rayforge/internal/console"
	"github.com/kingrea/rayforge/internal/workflow/engine"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var clear bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the outcome of the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()
			out := cmd.OutOrStdout()
			if clear {
				if err := s.cfg.Layout.Reset(); err != nil {
					return fmt.Errorf("clear state: %w", err)
				}
				fmt.Fprintln(out, "run state cleared")
				return nil
			}
			state, err := s.engine.View()
			if errors.Is(err, engine.ErrStateNotFound) {
				fmt.Fprintln(out, "no runs recorded yet")
				return nil
			}
			if err != nil {
				return err
			}
			printState(out, state)
			return nil
		},
	}
	cmd.Flags().BoolVar(&clear, "clear", false, "forget the last run")
	return cmd
}

func printState(w io.Writer, state engine.State) {
	fmt.Fprintf(w, "run %s: %s", state.RunID, state.Status)
	if state.StatusReason != "" {
		fmt.Fprintf(w, " (%s)", state.StatusReason)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "started %s, took %s, exit code %d\n",
		state.StartedAt.Local().Format(time.DateTime),
		console.FormatDuration(state.FinishedAt.Sub(state.StartedAt)),
		state.ExitCode,
	)
	for _, id := range state.Queue {
		if skip, ok := state.Skipped[id]; ok {
			fmt.Fprintf(w, "  - %s skipped (%s)\n", id, skip.Reason)
			continue
		}
		if run, ok := state.Runs[id]; ok {
			line := fmt.Sprintf("  %s %s %s %s", console.Symbol(run.Status), id, run.Status, console.FormatDuration(run.Duration))
			if run.Error != "" {
				line += ": " + run.Error
			}
			fmt.Fprintln(w, line)
			continue
		}
		fmt.Fprintf(w, "  - %s not run\n", id)
	}
	for _, node := range state.Nodes {
		if len(node.Artifacts) == 0 {
			continue
		}
		ids := make([]string, 0, len(node.Artifacts))
		for id := range node.Artifacts {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			art := node.Artifacts[id]
			fmt.Fprintf(w, "  %s output %s: %s\n", node.ID, art.Pattern, art.State)
		}
	}
}
