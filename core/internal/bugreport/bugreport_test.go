package bugreport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slimdiag/collectors"
	"slimdiag/collectors/system"
	"slimdiag/privileged"
)

// stubTarget hands the destination path to the fake handle as its command.
type stubTarget struct {
	name string
	file string
}

func (t stubTarget) Name() string { return t.name }

func (t stubTarget) FileName() string { return t.file }

func (t stubTarget) Command(dest string) string { return dest }

var stubTargets = []collectors.Target{
	stubTarget{name: "logcat", file: "logcat.log"},
	stubTarget{name: "last_kmsg", file: "last_kmsg.log"},
	stubTarget{name: "dmesg", file: "dmesg.log"},
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeHandle struct {
	rec      *recorder
	run      func(ctx context.Context, dest string) (privileged.Result, error)
	mu       sync.Mutex
	releases int
}

func (h *fakeHandle) Run(ctx context.Context, command string) (privileged.Result, error) {
	h.rec.add("run " + filepath.Base(command))
	if h.run == nil {
		return privileged.Result{}, nil
	}
	return h.run(ctx, command)
}

func (h *fakeHandle) Release() error {
	h.mu.Lock()
	h.releases++
	h.mu.Unlock()
	h.rec.add("release")
	return nil
}

func (h *fakeHandle) releaseCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.releases
}

type fakeExecutor struct {
	handle   *fakeHandle
	err      error
	acquires int
}

func (e *fakeExecutor) Acquire(ctx context.Context) (privileged.Handle, error) {
	e.acquires++
	if e.err != nil {
		return nil, e.err
	}
	return e.handle, nil
}

// writeContents returns a run func writing the given content per file name.
func writeContents(contents map[string]string) func(context.Context, string) (privileged.Result, error) {
	return func(_ context.Context, dest string) (privileged.Result, error) {
		body, ok := contents[filepath.Base(dest)]
		if !ok {
			return privileged.Result{ExitCode: 1}, nil
		}
		return privileged.Result{}, os.WriteFile(dest, []byte(body), 0o600)
	}
}

type harness struct {
	dir       string
	rec       *recorder
	handle    *fakeHandle
	exec      *fakeExecutor
	collector *Collector
	notices   []Outcome
}

func newHarness(t *testing.T, run func(context.Context, string) (privileged.Result, error)) *harness {
	t.Helper()
	h := &harness{dir: filepath.Join(t.TempDir(), DefaultDirName), rec: &recorder{}}
	h.handle = &fakeHandle{rec: h.rec, run: run}
	h.exec = &fakeExecutor{handle: h.handle}
	h.collector = New(Options{
		OutputDir:      h.dir,
		Executor:       h.exec,
		Targets:        stubTargets,
		CaptureTimeout: time.Second,
		Describe:       testDevice,
	})
	return h
}

func testDevice(string) system.DeviceInfo {
	return system.DeviceInfo{GOOS: "android", GOARCH: "arm64", Build: map[string]string{"ro.product.model": "A0001"}}
}

func (h *harness) notifier() Notifier {
	return NotifierFunc(func(outcome Outcome, message string) {
		h.rec.add("notify " + string(outcome))
		h.notices = append(h.notices, outcome)
	})
}

func (h *harness) collect(ctx context.Context) Report {
	return h.collector.Collect(ctx, "run-test", h.notifier())
}

func TestCollectAllTargetsCaptured(t *testing.T) {
	contents := map[string]string{
		"logcat.log":    "01-01 00:00:00.000 I/boot: up\n",
		"last_kmsg.log": "[    1.000000] last boot\n",
		"dmesg.log":     "[    0.000000] Linux version 4.4\n",
	}
	h := newHarness(t, writeContents(contents))

	rep := h.collect(context.Background())

	require.NoError(t, rep.Err)
	assert.Equal(t, Success, rep.Outcome)
	assert.Equal(t, []Outcome{Success}, h.notices)
	assert.Equal(t, 1, h.handle.releaseCount())

	names, got := readBundle(t, rep.BundlePath)
	assert.Equal(t, []string{"logcat.log", "last_kmsg.log", "dmesg.log"}, names)
	for name, want := range contents {
		assert.Equal(t, want, string(got[name]), name)
	}

	require.Len(t, rep.Captures, 3)
	for _, c := range rep.Captures {
		assert.Equal(t, collectors.StatusCaptured, c.Status, c.Target)
	}
	require.Len(t, rep.Entries, 3)
	assert.Equal(t, "logcat.log", rep.Entries[0].Name)
	assert.Equal(t, int64(len(contents["logcat.log"])), rep.Entries[0].SizeBytes)
	assert.Len(t, rep.Entries[0].SHA256, 64)
}

func TestCollectStepsRunInOrderAndReleaseIsLast(t *testing.T) {
	h := newHarness(t, writeContents(map[string]string{"dmesg.log": "x"}))

	h.collect(context.Background())

	assert.Equal(t, []string{
		"run logcat.log",
		"run last_kmsg.log",
		"run dmesg.log",
		"notify success",
		"release",
	}, h.rec.list())
}

func TestCollectNoOutputStillSucceeds(t *testing.T) {
	// Shell redirection leaves empty files behind when the source is absent.
	h := newHarness(t, func(_ context.Context, dest string) (privileged.Result, error) {
		return privileged.Result{}, os.WriteFile(dest, nil, 0o600)
	})

	rep := h.collect(context.Background())

	require.NoError(t, rep.Err)
	assert.Equal(t, Success, rep.Outcome)
	names, _ := readBundle(t, rep.BundlePath)
	assert.Empty(t, names)
	assert.Empty(t, rep.Entries)
	for _, c := range rep.Captures {
		assert.Equal(t, collectors.StatusEmpty, c.Status)
	}
}

func TestCollectCaptureFailuresAreNotFatal(t *testing.T) {
	h := newHarness(t, func(ctx context.Context, dest string) (privileged.Result, error) {
		switch filepath.Base(dest) {
		case "logcat.log":
			return privileged.Result{ExitCode: -1}, errors.New("logcat: not found")
		case "last_kmsg.log":
			return privileged.Result{ExitCode: 1}, nil
		default:
			return privileged.Result{}, os.WriteFile(dest, []byte("dmesg"), 0o600)
		}
	})

	rep := h.collect(context.Background())

	require.NoError(t, rep.Err)
	assert.Equal(t, Success, rep.Outcome)
	require.Len(t, rep.Captures, 3)
	assert.Equal(t, collectors.StatusFailed, rep.Captures[0].Status)
	assert.Contains(t, rep.Captures[0].Error, "not found")
	assert.Equal(t, collectors.StatusFailed, rep.Captures[1].Status)
	assert.Equal(t, 1, rep.Captures[1].ExitCode)
	assert.Equal(t, collectors.StatusCaptured, rep.Captures[2].Status)

	names, _ := readBundle(t, rep.BundlePath)
	assert.Equal(t, []string{"dmesg.log"}, names)
}

func TestCollectCaptureTimeout(t *testing.T) {
	h := newHarness(t, func(ctx context.Context, dest string) (privileged.Result, error) {
		if filepath.Base(dest) == "last_kmsg.log" {
			<-ctx.Done()
			return privileged.Result{ExitCode: -1}, ctx.Err()
		}
		return privileged.Result{}, os.WriteFile(dest, []byte("ok"), 0o600)
	})
	h.collector.opts.CaptureTimeout = 20 * time.Millisecond

	rep := h.collect(context.Background())

	assert.Equal(t, Success, rep.Outcome)
	assert.Equal(t, collectors.StatusTimedOut, rep.Captures[1].Status)
	assert.Equal(t, collectors.StatusCaptured, rep.Captures[2].Status)
	names, _ := readBundle(t, rep.BundlePath)
	assert.Equal(t, []string{"logcat.log", "dmesg.log"}, names)
}

func TestCollectRemovesStaleArtifacts(t *testing.T) {
	h := newHarness(t, writeContents(map[string]string{"logcat.log": "fresh"}))
	require.NoError(t, os.MkdirAll(h.dir, 0o755))
	for _, name := range []string{"logcat.log", "last_kmsg.log", "dmesg.log", BundleName} {
		require.NoError(t, os.WriteFile(filepath.Join(h.dir, name), []byte("stale"), 0o600))
	}

	rep := h.collect(context.Background())
	require.NoError(t, rep.Err)

	_, err := os.Stat(filepath.Join(h.dir, "last_kmsg.log"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(h.dir, "dmesg.log"))
	assert.True(t, os.IsNotExist(err))

	names, got := readBundle(t, rep.BundlePath)
	assert.Equal(t, []string{"logcat.log"}, names)
	assert.Equal(t, "fresh", string(got["logcat.log"]))
}

func TestCollectPermissionDeniedShortCircuits(t *testing.T) {
	h := newHarness(t, nil)
	h.exec.err = fmt.Errorf("%w: su granted uid \"2000\"", privileged.ErrPermissionDenied)

	rep := h.collect(context.Background())

	assert.Equal(t, Failure, rep.Outcome)
	assert.ErrorIs(t, rep.Err, ErrPermissionDenied)
	assert.ErrorIs(t, rep.Err, privileged.ErrPermissionDenied)
	assert.Equal(t, []string{"notify failure"}, h.rec.list())
	assert.Equal(t, 0, h.handle.releaseCount())

	_, err := os.Stat(rep.BundlePath)
	assert.True(t, os.IsNotExist(err))
}

func TestCollectDirectoryErrorSkipsAcquire(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "storage")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o600))

	h := newHarness(t, nil)
	h.collector.opts.OutputDir = filepath.Join(blocker, DefaultDirName)

	rep := h.collect(context.Background())

	assert.Equal(t, Failure, rep.Outcome)
	assert.ErrorIs(t, rep.Err, ErrDirectory)
	assert.Equal(t, 0, h.exec.acquires)
	assert.Equal(t, []Outcome{Failure}, h.notices)
}

func TestCollectArchiveFailureStillReleases(t *testing.T) {
	h := newHarness(t, func(_ context.Context, dest string) (privileged.Result, error) {
		if filepath.Base(dest) == "dmesg.log" {
			// Occupy the bundle path so it cannot be opened for writing.
			bundle := filepath.Join(filepath.Dir(dest), BundleName)
			return privileged.Result{}, os.MkdirAll(filepath.Join(bundle, "x"), 0o755)
		}
		return privileged.Result{}, os.WriteFile(dest, []byte("data"), 0o600)
	})

	rep := h.collect(context.Background())

	assert.Equal(t, Failure, rep.Outcome)
	assert.ErrorIs(t, rep.Err, ErrArchive)
	assert.Equal(t, 1, h.handle.releaseCount())
	assert.Equal(t, []Outcome{Failure}, h.notices)
	events := h.rec.list()
	assert.Equal(t, "release", events[len(events)-1])
}

func TestCollectCancelledBeforeAcquire(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep := h.collect(ctx)

	assert.Equal(t, Failure, rep.Outcome)
	assert.ErrorIs(t, rep.Err, context.Canceled)
	assert.Equal(t, 0, h.exec.acquires)
}

func TestCollectTwiceProducesSameBundleContents(t *testing.T) {
	contents := map[string]string{"logcat.log": "a", "last_kmsg.log": "b", "dmesg.log": "c"}
	h := newHarness(t, writeContents(contents))

	first := h.collect(context.Background())
	require.NoError(t, first.Err)
	names1, got1 := readBundle(t, first.BundlePath)

	second := h.collect(context.Background())
	require.NoError(t, second.Err)
	names2, got2 := readBundle(t, second.BundlePath)

	assert.Equal(t, names1, names2)
	assert.Equal(t, got1, got2)
	assert.Equal(t, first.Entries, second.Entries)
	assert.Equal(t, 2, h.handle.releaseCount())
}

func TestCollectLeavesCapturesOnDiskByDefault(t *testing.T) {
	h := newHarness(t, writeContents(map[string]string{"dmesg.log": "kept"}))

	rep := h.collect(context.Background())
	require.NoError(t, rep.Err)

	data, err := os.ReadFile(filepath.Join(h.dir, "dmesg.log"))
	require.NoError(t, err)
	assert.Equal(t, "kept", string(data))
}

func TestCollectPruneCaptures(t *testing.T) {
	h := newHarness(t, writeContents(map[string]string{"logcat.log": "a", "dmesg.log": "c"}))
	h.collector.opts.PruneCaptures = true

	rep := h.collect(context.Background())
	require.NoError(t, rep.Err)

	entries, err := os.ReadDir(h.dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, BundleName, entries[0].Name())

	names, _ := readBundle(t, rep.BundlePath)
	assert.Equal(t, []string{"logcat.log", "dmesg.log"}, names)
}

func TestCollectWithShellExecutor(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DefaultDirName)
	c := New(Options{
		OutputDir: dir,
		Executor:  privileged.NewShell(false),
		Targets: []collectors.Target{
			shellTarget{name: "logcat", file: "logcat.log", script: "printf 'logcat line\\n'"},
			shellTarget{name: "last_kmsg", file: "last_kmsg.log", script: "cat /nonexistent/last_kmsg"},
			shellTarget{name: "dmesg", file: "dmesg.log", script: "printf 'dmesg line\\n'"},
		},
	})

	rep := c.Collect(context.Background(), "run-shell", nil)

	require.NoError(t, rep.Err)
	assert.Equal(t, collectors.StatusFailed, rep.Captures[1].Status)
	names, got := readBundle(t, rep.BundlePath)
	assert.Equal(t, []string{"logcat.log", "dmesg.log"}, names)
	assert.Equal(t, "dmesg line\n", string(got["dmesg.log"]))
}

type shellTarget struct {
	name, file, script string
}

func (t shellTarget) Name() string { return t.name }

func (t shellTarget) FileName() string { return t.file }

func (t shellTarget) Command(dest string) string {
	return t.script + " > '" + dest + "'"
}

func TestReportManifest(t *testing.T) {
	h := newHarness(t, writeContents(map[string]string{"dmesg.log": "x"}))
	rep := h.collect(context.Background())

	m := rep.Manifest()
	assert.Equal(t, "run-test", m.RunID)
	assert.Equal(t, "success", m.Outcome)
	assert.Equal(t, rep.BundlePath, m.Bundle)
	assert.Empty(t, m.Error)
	require.NotNil(t, m.Device)
	assert.Equal(t, "A0001", m.Device.Build["ro.product.model"])
	assert.Len(t, m.Captures, 3)
	require.Len(t, m.Entries, 1)
	assert.Equal(t, "dmesg.log", m.Entries[0].Name)

	rep.Err = ErrArchive
	assert.Equal(t, ErrArchive.Error(), rep.Manifest().Error)
}

func TestOutputDir(t *testing.T) {
	assert.Equal(t, filepath.Join("/sdcard", "Bugreport"), OutputDir("/sdcard", ""))
	assert.Equal(t, filepath.Join("/data/media/0", "Logs"), OutputDir("/data/media/0", "Logs"))
}
