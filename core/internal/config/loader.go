package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"slimdiag/changelog"
	"slimdiag/privileged"
)

const envPrefix = "SLIMDIAG"

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// NewLoaderWithViper creates a loader using an existing viper instance so
// that CLI flag bindings take part in resolution.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// WithConfigFile sets an explicit config file path.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// Viper returns the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load loads configuration from all sources.
// Precedence (highest to lowest):
// 1. CLI flags (bound with viper.BindPFlag)
// 2. Environment variables (SLIMDIAG_*)
// 3. .slimdiag.yaml in the current directory
// 4. ~/.config/slimdiag/.slimdiag.yaml
// 5. Defaults
func (l *Loader) Load() (*Config, error) {
	SetDefaults(l.v)

	l.v.SetEnvPrefix(envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName(".slimdiag")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(home, ".config", "slimdiag"))
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigFile returns the config file path if one was used.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")

	v.SetDefault("bugreport.storage_root", DefaultStorageRoot())
	v.SetDefault("bugreport.dir_name", "Bugreport")
	v.SetDefault("bugreport.capture_timeout", "2m")
	v.SetDefault("bugreport.prune_captures", false)

	v.SetDefault("privileged.mode", privileged.ModeSu)
	v.SetDefault("privileged.su_path", "su")
	v.SetDefault("privileged.require_root", true)

	v.SetDefault("changelog.path", changelog.DefaultPath)
}

// DefaultStorageRoot is the shared external storage root, as exported by
// Android in EXTERNAL_STORAGE.
func DefaultStorageRoot() string {
	if root := os.Getenv("EXTERNAL_STORAGE"); root != "" {
		return root
	}
	return "/sdcard"
}

// Default returns the configuration produced by defaults alone.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}
