package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the declared targets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			t := table.New().
				Border(lipgloss.HiddenBorder()).
				Headers("TARGET", "ACTION", "DEPENDS ON", "DESCRIPTION")
			for _, ref := range s.def.Targets {
				t.Row(ref.ID, ref.ActionKind(), strings.Join(s.def.Dependencies(ref.ID), ", "), ref.Description)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, t.Render())
			source := "built-in definition"
			if s.fromFile {
				source = s.cfg.TargetFile()
			}
			fmt.Fprintf(out, "default: %s\n", strings.Join(s.def.Default, ", "))
			fmt.Fprintf(out, "source:  %s\n", source)
			for _, file := range s.plugins {
				fmt.Fprintf(out, "plugin:  %s\n", file.Path)
			}
			return nil
		},
	}
}
