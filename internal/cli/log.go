package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogCmd(opts *rootOptions) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print the most recent run history entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if lines <= 0 {
				return fmt.Errorf("-n must be positive")
			}
			s, err := openSession(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()
			out := cmd.OutOrStdout()
			entries, total := s.history.Tail(lines)
			if total == 0 {
				fmt.Fprintln(out, "history is empty")
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintln(out, entry)
			}
			if total > len(entries) {
				fmt.Fprintf(out, "(%d of %d entries, %s)\n", len(entries), total, s.history.Path())
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "number of entries")
	return cmd
}
