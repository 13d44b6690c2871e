// Package report collects the outcome of every spec in a run and passes it to reporters.
package report

import (
	"errors"
	"fmt"
	"time"
)

// ErrAlreadyRegistered is returned by Run.Register if reporters were already registered.
var ErrAlreadyRegistered = errors.New("reporters are already registered for this run")

// Outcome is the result of one spec.
type Outcome int

const (
	Passed Outcome = iota
	Failed
)

func (o Outcome) String() string {
	if o == Passed {
		return "passed"
	}
	return "failed"
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Header is one request header in a RequestSummary.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RequestSummary describes the request a spec sent, for reproducing it outside the run.
type RequestSummary struct {
	Method  string   `json:"method"`
	URL     string   `json:"url"`
	Headers []Header `json:"headers,omitempty"`
	Body    string   `json:"body,omitempty"`
}

// RunInfo identifies a run.
type RunInfo struct {
	ID        string    `json:"id"`
	Suite     string    `json:"suite"`
	StartTime time.Time `json:"startTime"`
}

// SpecEvent is reported once for each spec that was executed.
type SpecEvent struct {
	Suite    string          `json:"suite"`
	Name     string          `json:"name"`
	Outcome  Outcome         `json:"outcome"`
	Duration time.Duration   `json:"durationNs"`
	Reasons  []string        `json:"reasons,omitempty"`
	Request  *RequestSummary `json:"request,omitempty"`

	// Status is the response status, or zero if no response was received.
	Status int `json:"status,omitempty"`
}

// PassedSpec builds a SpecEvent with a Passed outcome.
func PassedSpec(suite, name string, duration time.Duration) SpecEvent {
	return SpecEvent{Suite: suite, Name: name, Outcome: Passed, Duration: duration}
}

// FailedSpec builds a SpecEvent with a Failed outcome. At least one reason is always recorded.
func FailedSpec(suite, name string, duration time.Duration, reasons ...string) SpecEvent {
	if len(reasons) == 0 {
		reasons = []string{"failed"}
	}
	return SpecEvent{Suite: suite, Name: name, Outcome: Failed, Duration: duration, Reasons: reasons}
}

// Summary is the aggregate of a finished run.
type Summary struct {
	RunInfo
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"durationNs"`
	Specs    []SpecEvent   `json:"specs"`
}

// OK is true if no spec failed.
func (s Summary) OK() bool { return s.Failed == 0 }

func (s Summary) String() string {
	return fmt.Sprintf("%d passed, %d failed in %s", s.Passed, s.Failed, s.Duration.Round(time.Millisecond))
}

// Reporter receives the events of a run. SpecFinished is called in execution order, and
// RunEnded is called exactly once, after which the reporter should release anything it holds.
type Reporter interface {
	RunStarted(info RunInfo)
	SpecFinished(event SpecEvent)
	RunEnded(summary Summary) error
}
