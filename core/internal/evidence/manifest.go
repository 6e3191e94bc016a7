package evidence

import (
	"encoding/json"
	"io"

	"slimdiag/collectors"
	"slimdiag/collectors/system"
)

// Entry is one file stored in the bundle.
type Entry struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	SHA256    string `json:"sha256"`
}

// Manifest describes one collection run. It is printed, never stored next to
// the bundle, so the output directory only ever holds the fixed artifacts.
type Manifest struct {
	RunID      string                     `json:"run_id"`
	StartedAt  string                     `json:"started_at"`
	FinishedAt string                     `json:"finished_at"`
	OutputDir  string                     `json:"output_dir"`
	Bundle     string                     `json:"bundle"`
	Outcome    string                     `json:"outcome"`
	Device     *system.DeviceInfo         `json:"device,omitempty"`
	Error      string                     `json:"error,omitempty"`
	Captures   []collectors.CaptureResult `json:"captures"`
	Entries    []Entry                    `json:"entries"`
}

func WriteManifest(w io.Writer, m Manifest) error {
	if m.Captures == nil {
		m.Captures = []collectors.CaptureResult{}
	}
	if m.Entries == nil {
		m.Entries = []Entry{}
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
