package bugreport

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"slimdiag/collectors"
	"slimdiag/collectors/android"
	"slimdiag/collectors/system"
	ievidence "slimdiag/core/internal/evidence"
	"slimdiag/core/internal/logging"
	"slimdiag/evidence"
	"slimdiag/privileged"
)

const (
	DefaultDirName        = "Bugreport"
	BundleName            = "bugreport.zip"
	DefaultCaptureTimeout = 2 * time.Minute
)

var (
	ErrDirectory        = errors.New("output directory unavailable")
	ErrPermissionDenied = errors.New("privileged access unavailable")
	ErrArchive          = errors.New("writing bundle failed")
)

type Outcome string

const (
	Success Outcome = "success"
	Failure Outcome = "failure"
)

// Notifier receives the single user-facing result of a run. It is called
// from the goroutine executing the run.
type Notifier interface {
	Notify(outcome Outcome, message string)
}

type NotifierFunc func(outcome Outcome, message string)

func (f NotifierFunc) Notify(outcome Outcome, message string) { f(outcome, message) }

type Options struct {
	// OutputDir is the directory holding captures and the bundle,
	// usually <external storage>/Bugreport.
	OutputDir      string
	Executor       privileged.Executor
	Targets        []collectors.Target
	CaptureTimeout time.Duration
	// PruneCaptures removes capture files once the bundle is written.
	PruneCaptures bool
	// Describe identifies the device for the run report. It receives the
	// storage root. Defaults to system.Describe.
	Describe func(storageRoot string) system.DeviceInfo
	Logger   *logging.Logger
}

type Collector struct {
	opts   Options
	logger *logging.Logger
}

func New(opts Options) *Collector {
	if opts.Targets == nil {
		opts.Targets = android.DefaultTargets()
	}
	if opts.CaptureTimeout <= 0 {
		opts.CaptureTimeout = DefaultCaptureTimeout
	}
	if opts.Describe == nil {
		opts.Describe = system.Describe
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Collector{opts: opts, logger: logger}
}

// OutputDir joins a storage root with the bug report directory name.
func OutputDir(storageRoot, dirName string) string {
	if dirName == "" {
		dirName = DefaultDirName
	}
	return filepath.Join(storageRoot, dirName)
}

func (c *Collector) BundlePath() string {
	return filepath.Join(c.opts.OutputDir, BundleName)
}

func (c *Collector) capturePaths() []string {
	paths := make([]string, 0, len(c.opts.Targets))
	for _, t := range c.opts.Targets {
		paths = append(paths, filepath.Join(c.opts.OutputDir, t.FileName()))
	}
	return paths
}

type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	OutputDir  string
	BundlePath string
	Outcome    Outcome
	Message    string
	Device     system.DeviceInfo
	Captures   []collectors.CaptureResult
	Entries    []ievidence.Entry
	Err        error
}

func (r Report) Manifest() ievidence.Manifest {
	m := ievidence.Manifest{
		RunID:      r.RunID,
		StartedAt:  r.StartedAt.UTC().Format(time.RFC3339Nano),
		FinishedAt: r.FinishedAt.UTC().Format(time.RFC3339Nano),
		OutputDir:  r.OutputDir,
		Bundle:     r.BundlePath,
		Outcome:    string(r.Outcome),
		Device:     &r.Device,
		Captures:   r.Captures,
		Entries:    r.Entries,
	}
	if r.Err != nil {
		m.Error = r.Err.Error()
	}
	return m
}

// Collect performs one complete run: reset the output directory, acquire
// privileged access, capture every target, write the bundle, notify, and
// release. notify may be nil.
func (c *Collector) Collect(ctx context.Context, runID string, notify Notifier) Report {
	rep := Report{
		RunID:      runID,
		StartedAt:  time.Now().UTC(),
		OutputDir:  c.opts.OutputDir,
		BundlePath: c.BundlePath(),
		Device:     c.opts.Describe(filepath.Dir(c.opts.OutputDir)),
	}
	log := c.logger.WithRun(runID)

	if err := c.prepare(); err != nil {
		return c.finish(log, rep, err, notify)
	}

	if err := ctx.Err(); err != nil {
		return c.finish(log, rep, err, notify)
	}
	handle, err := c.opts.Executor.Acquire(ctx)
	if err != nil {
		return c.finish(log, rep, fmt.Errorf("%w: %w", ErrPermissionDenied, err), notify)
	}
	defer func() {
		if err := handle.Release(); err != nil {
			log.Warn("releasing privileged handle", "error", err)
		}
	}()

	for _, t := range c.opts.Targets {
		res := c.capture(ctx, handle, t)
		if res.Status != collectors.StatusCaptured {
			log.WithTarget(t.Name()).Warn("capture incomplete", "status", res.Status, "exit_code", res.ExitCode, "error", res.Error)
		} else {
			log.WithTarget(t.Name()).Debug("capture finished")
		}
		rep.Captures = append(rep.Captures, res)
	}

	names, err := writeBundle(rep.BundlePath, c.capturePaths())
	if err != nil {
		return c.finish(log, rep, fmt.Errorf("%w: %v", ErrArchive, err), notify)
	}
	rep.Entries = c.describe(log, names)

	if c.opts.PruneCaptures {
		c.prune(log)
	}
	return c.finish(log, rep, nil, notify)
}

// prepare ensures the output directory exists and removes the artifacts of a
// previous run.
func (c *Collector) prepare() error {
	if err := os.MkdirAll(c.opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrDirectory, err)
	}
	for _, p := range append(c.capturePaths(), c.BundlePath()) {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: removing stale %s: %v", ErrDirectory, filepath.Base(p), err)
		}
	}
	return nil
}

func (c *Collector) capture(ctx context.Context, h privileged.Handle, t collectors.Target) collectors.CaptureResult {
	dest := filepath.Join(c.opts.OutputDir, t.FileName())
	res := collectors.CaptureResult{Target: t.Name(), File: t.FileName()}

	cctx, cancel := context.WithTimeout(ctx, c.opts.CaptureTimeout)
	defer cancel()

	out, err := h.Run(cctx, t.Command(dest))
	res.ExitCode = out.ExitCode
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		res.Status = collectors.StatusTimedOut
		res.Error = err.Error()
		return res
	case err != nil:
		res.Status = collectors.StatusFailed
		res.Error = err.Error()
		return res
	case out.ExitCode != 0:
		res.Status = collectors.StatusFailed
		res.Error = fmt.Sprintf("exit status %d", out.ExitCode)
		return res
	}

	ok, err := evidence.HasContent(dest)
	switch {
	case err != nil:
		res.Status = collectors.StatusFailed
		res.Error = err.Error()
	case !ok:
		res.Status = collectors.StatusEmpty
	default:
		res.Status = collectors.StatusCaptured
	}
	return res
}

func (c *Collector) describe(log *logging.Logger, names []string) []ievidence.Entry {
	entries := make([]ievidence.Entry, 0, len(names))
	for _, name := range names {
		d, err := evidence.DigestFile(filepath.Join(c.opts.OutputDir, name))
		if err != nil {
			log.Warn("hashing capture", "file", name, "error", err)
			entries = append(entries, ievidence.Entry{Name: name})
			continue
		}
		entries = append(entries, ievidence.Entry{Name: name, SizeBytes: d.SizeBytes, SHA256: d.SHA256})
	}
	return entries
}

func (c *Collector) prune(log *logging.Logger) {
	for _, p := range c.capturePaths() {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn("pruning capture", "file", filepath.Base(p), "error", err)
		}
	}
}

func (c *Collector) finish(log *logging.Logger, rep Report, err error, notify Notifier) Report {
	rep.FinishedAt = time.Now().UTC()
	rep.Err = err
	if err != nil {
		rep.Outcome = Failure
		rep.Message = "Bugreport failed"
		log.Error("bug report failed", "error", err)
	} else {
		rep.Outcome = Success
		rep.Message = "Bugreport saved to " + rep.BundlePath
		log.Info("bug report written", "bundle", rep.BundlePath, "entries", len(rep.Entries))
	}
	if notify != nil {
		notify.Notify(rep.Outcome, rep.Message)
	}
	return rep
}
