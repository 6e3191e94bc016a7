package android

import (
	"strings"

	"slimdiag/collectors"
)

// DefaultTargets returns the capture targets in archive order.
func DefaultTargets() []collectors.Target {
	return []collectors.Target{
		NewLogcatTarget(),
		NewLastKmsgTarget(),
		NewDmesgTarget(),
	}
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
