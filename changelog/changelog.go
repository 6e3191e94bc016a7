// Package changelog reads the build changelog shipped with the system image.
package changelog

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"strings"
)

const (
	DefaultPath     = "/system/etc/changelog.txt"
	DefaultFallback = "No changelog available"
)

// Read returns the changelog at path with every line newline-terminated. When
// the file does not exist it returns fallback. Any other failure is reported
// as the content itself, so callers can show it verbatim.
func Read(path, fallback string) string {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fallback
		}
		return err.Error()
	}
	defer f.Close()

	var sb strings.Builder
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		sb.WriteString(s.Text())
		sb.WriteByte('\n')
	}
	if err := s.Err(); err != nil {
		return err.Error()
	}
	return sb.String()
}
