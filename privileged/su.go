package privileged

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Su obtains root through the device's su binary. Acquire asks su for the
// effective uid and only succeeds when it reports 0, so a denied prompt or a
// missing binary fails before any capture is attempted.
type Su struct {
	Path string
}

func NewSu(path string) *Su {
	if path == "" {
		path = "su"
	}
	return &Su{Path: path}
}

func (s *Su) Acquire(ctx context.Context) (Handle, error) {
	bin, err := exec.LookPath(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found: %v", ErrPermissionDenied, s.Path, err)
	}

	res, err := runCmd(ctx, bin, "-c", "id -u")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("%w: su exited with code %d", ErrPermissionDenied, res.ExitCode)
	}
	if uid := strings.TrimSpace(string(res.Stdout)); uid != "0" {
		return nil, fmt.Errorf("%w: su granted uid %q", ErrPermissionDenied, uid)
	}
	return &session{bin: bin}, nil
}
