package config

import (
	"fmt"
	"strings"
	"time"

	"slimdiag/privileged"
)

// Validate rejects values that would only fail later inside a run.
func (c *Config) Validate() error {
	switch c.Privileged.Mode {
	case privileged.ModeSu, privileged.ModeShell:
	default:
		return fmt.Errorf("privileged.mode: unknown value %q (want %s|%s)", c.Privileged.Mode, privileged.ModeSu, privileged.ModeShell)
	}
	if strings.TrimSpace(c.BugReport.StorageRoot) == "" {
		return fmt.Errorf("bugreport.storage_root must not be empty")
	}
	if strings.ContainsRune(c.BugReport.DirName, '/') {
		return fmt.Errorf("bugreport.dir_name must be a single path element, got %q", c.BugReport.DirName)
	}
	if _, err := c.BugReport.Timeout(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "auto", "text", "json":
	default:
		return fmt.Errorf("log.format: unknown value %q (want auto|text|json)", c.Log.Format)
	}
	return nil
}

// Timeout parses CaptureTimeout; an empty value means the collector default.
func (c BugReportConfig) Timeout() (time.Duration, error) {
	if strings.TrimSpace(c.CaptureTimeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CaptureTimeout)
	if err != nil {
		return 0, fmt.Errorf("bugreport.capture_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("bugreport.capture_timeout must not be negative, got %s", d)
	}
	return d, nil
}
