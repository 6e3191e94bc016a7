package android

import "fmt"

type LogcatTarget struct{}

func NewLogcatTarget() *LogcatTarget { return &LogcatTarget{} }

func (t *LogcatTarget) Name() string { return "logcat" }

func (t *LogcatTarget) FileName() string { return "logcat.log" }

// Command dumps the whole log buffer at verbose level and exits.
func (t *LogcatTarget) Command(dest string) string {
	return fmt.Sprintf("logcat -d -f %s '*:V'", shellQuote(dest))
}
