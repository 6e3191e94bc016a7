// Package privileged runs shell commands with elevated access.
//
// An Executor hands out a Handle once access has been granted. The handle is
// owned by a single caller until Release; commands are passed to a shell
// verbatim, so output redirection is expressed in the command string.
package privileged

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrPermissionDenied = errors.New("privileged access denied")
	ErrReleased         = errors.New("privileged handle already released")
)

// Result is the outcome of one command. A non-zero ExitCode is not an error.
type Result struct {
	Stdout   []byte
	ExitCode int
}

type Executor interface {
	Acquire(ctx context.Context) (Handle, error)
}

type Handle interface {
	Run(ctx context.Context, command string) (Result, error)
	Release() error
}

const (
	ModeSu    = "su"
	ModeShell = "shell"
)

// New returns the executor for the configured mode.
func New(mode string, suPath string, requireRoot bool) (Executor, error) {
	switch mode {
	case ModeSu, "":
		return NewSu(suPath), nil
	case ModeShell:
		return NewShell(requireRoot), nil
	default:
		return nil, fmt.Errorf("unknown privileged mode %q (want %s|%s)", mode, ModeSu, ModeShell)
	}
}

// session runs every command as `<bin> -c <command>`.
type session struct {
	bin string

	mu       sync.Mutex
	released bool
}

func (s *session) Run(ctx context.Context, command string) (Result, error) {
	s.mu.Lock()
	released := s.released
	s.mu.Unlock()
	if released {
		return Result{ExitCode: -1}, ErrReleased
	}
	return runCmd(ctx, s.bin, "-c", command)
}

func (s *session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}
	s.released = true
	return nil
}
