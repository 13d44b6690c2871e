package report

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Run accumulates spec events for one suite run and fans them out to its reporters.
type Run struct {
	info       RunInfo
	reporters  []Reporter
	registered bool
	specs      []SpecEvent
	finalized  bool
	summary    Summary
	lock       sync.Mutex
}

// NewRun starts a run for a suite. Nothing is reported until Register is called.
func NewRun(suite string) *Run {
	return &Run{
		info: RunInfo{ID: uuid.NewString(), Suite: suite, StartTime: time.Now()},
	}
}

// Info returns the identity of the run.
func (r *Run) Info() RunInfo { return r.info }

// Register attaches reporters and sends them RunStarted. It may only be called once per run.
func (r *Run) Register(reporters ...Reporter) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.registered {
		return ErrAlreadyRegistered
	}
	r.registered = true
	r.reporters = append(r.reporters, reporters...)
	for _, rep := range r.reporters {
		rep.RunStarted(r.info)
	}
	return nil
}

// SpecFinished records an event. Events received after Finalize are ignored.
func (r *Run) SpecFinished(event SpecEvent) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.finalized {
		return
	}
	if event.Suite == "" {
		event.Suite = r.info.Suite
	}
	r.specs = append(r.specs, event)
	for _, rep := range r.reporters {
		rep.SpecFinished(event)
	}
}

// Summary returns the aggregate of the events so far.
func (r *Run) Summary() Summary {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.finalized {
		return r.summary
	}
	return r.buildSummary()
}

func (r *Run) buildSummary() Summary {
	s := Summary{RunInfo: r.info, Duration: time.Since(r.info.StartTime)}
	s.Specs = append([]SpecEvent(nil), r.specs...)
	for _, e := range r.specs {
		if e.Outcome == Passed {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// Finalize sends RunEnded to every reporter. Only the first call has any effect; later calls
// return the same summary and no error.
func (r *Run) Finalize() (Summary, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.finalized {
		return r.summary, nil
	}
	r.finalized = true
	r.summary = r.buildSummary()
	var errs []error
	for _, rep := range r.reporters {
		if err := rep.RunEnded(r.summary); err != nil {
			errs = append(errs, err)
		}
	}
	return r.summary, errors.Join(errs...)
}

// WithRun registers the reporters for a new run, calls action, and finalizes the run however
// action exits. If action panics, the run is finalized before the panic continues.
func WithRun(suite string, reporters []Reporter, action func(*Run)) (summary Summary, err error) {
	run := NewRun(suite)
	if err := run.Register(reporters...); err != nil {
		return Summary{}, err
	}
	defer func() {
		if p := recover(); p != nil {
			_, _ = run.Finalize()
			panic(p)
		}
		summary, err = run.Finalize()
	}()
	action(run)
	return
}
