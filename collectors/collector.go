package collectors

// Target is one diagnostic source captured by a privileged shell command
// into a file inside the output directory.
type Target interface {
	Name() string
	// FileName is the destination file name, also used as the bundle entry name.
	FileName() string
	// Command returns the shell command that writes the capture to dest.
	Command(dest string) string
}

type Status string

const (
	StatusCaptured Status = "captured"
	StatusEmpty    Status = "empty"
	StatusFailed   Status = "failed"
	StatusTimedOut Status = "timed_out"
)

// CaptureResult records what happened to one target during a run. Capture
// failures never abort a run; they only show up here and in the logs.
type CaptureResult struct {
	Target   string `json:"target"`
	File     string `json:"file"`
	Status   Status `json:"status"`
	ExitCode int    `json:"exit_code"`
	Error    string `json:"error,omitempty"`
}
