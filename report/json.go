package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// JSONReporter writes the summary of a run as a JSON document. The destination is opened when
// the reporter is created and closed when the run ends.
type JSONReporter struct {
	out    io.WriteCloser
	closed bool
}

// NewJSONReporter creates or truncates the file at path.
func NewJSONReporter(path string) (*JSONReporter, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("can't create report directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("can't create report file: %w", err)
	}
	return &JSONReporter{out: f}, nil
}

// NewJSONReporterTo writes to an already open destination, which is closed at the end of the run.
func NewJSONReporterTo(out io.WriteCloser) *JSONReporter {
	return &JSONReporter{out: out}
}

func (j *JSONReporter) RunStarted(RunInfo) {}

func (j *JSONReporter) SpecFinished(SpecEvent) {}

func (j *JSONReporter) RunEnded(s Summary) error {
	if j.closed {
		return nil
	}
	j.closed = true
	if s.Specs == nil {
		s.Specs = []SpecEvent{}
	}
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	writeErr := enc.Encode(s)
	closeErr := j.out.Close()
	if writeErr != nil {
		return fmt.Errorf("can't write report: %w", writeErr)
	}
	return closeErr
}
