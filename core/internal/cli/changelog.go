package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"slimdiag/changelog"
)

func NewChangelogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Print the build changelog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, map[string]string{"changelog.path": "path"})
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), changelog.Read(cfg.Changelog.Path, changelog.DefaultFallback))
			return err
		},
	}

	cmd.Flags().String("path", changelog.DefaultPath, "Changelog file")
	return cmd
}
