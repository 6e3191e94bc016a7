package privileged

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long a killed command may keep its output pipes open
// through orphaned children.
const waitDelay = time.Second

func runCmd(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{Stdout: out.Bytes(), ExitCode: -1}, ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{Stdout: out.Bytes(), ExitCode: exitErr.ExitCode()}, nil
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Result{ExitCode: -1}, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return Result{ExitCode: -1}, fmt.Errorf("%s: %w", name, err)
	}
	return Result{Stdout: out.Bytes()}, nil
}
