package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"slimdiag/core/internal/version"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "slimdiag",
		Short:         "Device diagnostics bundler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Config file (default: ./.slimdiag.yaml or ~/.config/slimdiag/.slimdiag.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().String("log-format", "", "Log format (auto|text|json)")

	cmd.AddCommand(NewBugreportCmd())
	cmd.AddCommand(NewChangelogCmd())
	cmd.AddCommand(NewConfigCmd())
	cmd.AddCommand(NewVersionCmd())

	cmd.SetVersionTemplate(fmt.Sprintf("%s (%s/%s)\n", version.Version, runtime.GOOS, runtime.GOARCH))
	cmd.Version = version.Version

	return cmd
}
