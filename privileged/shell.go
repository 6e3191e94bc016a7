package privileged

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Shell runs commands through sh directly. It is meant for processes that
// already run as root (adb root, init services) or, with RequireRoot off,
// for unprivileged collection on a host.
type Shell struct {
	Path        string
	RequireRoot bool

	geteuid func() int
}

func NewShell(requireRoot bool) *Shell {
	return &Shell{Path: "sh", RequireRoot: requireRoot, geteuid: os.Geteuid}
}

func (s *Shell) Acquire(ctx context.Context) (Handle, error) {
	_ = ctx

	if s.RequireRoot {
		euid := os.Geteuid()
		if s.geteuid != nil {
			euid = s.geteuid()
		}
		if euid != 0 {
			return nil, fmt.Errorf("%w: running as uid %d", ErrPermissionDenied, euid)
		}
	}
	bin, err := exec.LookPath(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found: %v", ErrPermissionDenied, s.Path, err)
	}
	return &session{bin: bin}, nil
}
