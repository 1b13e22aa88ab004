package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kingrea/rayforge/internal/config"
	"github.com/kingrea/rayforge/internal/workflow"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write rayforge.yaml and the .rayforge directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.dir)
			if err != nil {
				return err
			}
			opts.applyOverrides(cfg)
			if err := config.InitStateDir(cfg.ProjectDir); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			path := cfg.TargetFile()
			if _, err := os.Stat(path); err == nil && !force {
				fmt.Fprintf(out, "%s already exists (use --force to overwrite)\n", path)
				return nil
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			data, err := workflow.MarshalDefinitionYAML(workflow.DefaultDefinition())
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(out, "wrote %s\n", path)
			fmt.Fprintf(out, "settings in %s\n", cfg.ConfigPath())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing target file")
	return cmd
}
