package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"slimdiag/core/internal/config"
	"slimdiag/core/internal/logging"
)

// globalFlags maps config keys to the root persistent flags.
var globalFlags = map[string]string{
	"log.level":  "log-level",
	"log.format": "log-format",
}

// loadConfig resolves configuration for cmd. bindings maps config keys to
// flag names of cmd; only flags the user set override file and env values.
func loadConfig(cmd *cobra.Command, bindings map[string]string) (*config.Config, error) {
	v := viper.New()
	for _, set := range []map[string]string{globalFlags, bindings} {
		for key, name := range set {
			f := cmd.Flags().Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}

	loader := config.NewLoaderWithViper(v)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loader.WithConfigFile(path)
	}
	return loader.Load()
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *logging.Logger {
	return logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
}
