package config

// Config holds all application configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	BugReport  BugReportConfig  `mapstructure:"bugreport" yaml:"bugreport"`
	Privileged PrivilegedConfig `mapstructure:"privileged" yaml:"privileged"`
	Changelog  ChangelogConfig  `mapstructure:"changelog" yaml:"changelog"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// BugReportConfig configures diagnostics collection.
type BugReportConfig struct {
	StorageRoot    string `mapstructure:"storage_root" yaml:"storage_root"`
	DirName        string `mapstructure:"dir_name" yaml:"dir_name"`
	CaptureTimeout string `mapstructure:"capture_timeout" yaml:"capture_timeout"`
	PruneCaptures  bool   `mapstructure:"prune_captures" yaml:"prune_captures"`
}

// PrivilegedConfig selects how elevated access is obtained.
type PrivilegedConfig struct {
	Mode        string `mapstructure:"mode" yaml:"mode"`
	SuPath      string `mapstructure:"su_path" yaml:"su_path"`
	RequireRoot bool   `mapstructure:"require_root" yaml:"require_root"`
}

// ChangelogConfig locates the build changelog.
type ChangelogConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}
