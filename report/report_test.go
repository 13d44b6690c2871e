package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	started  []RunInfo
	specs    []SpecEvent
	ended    []Summary
	endError error
}

func (r *recordingReporter) RunStarted(info RunInfo) { r.started = append(r.started, info) }

func (r *recordingReporter) SpecFinished(e SpecEvent) { r.specs = append(r.specs, e) }

func (r *recordingReporter) RunEnded(s Summary) error {
	r.ended = append(r.ended, s)
	return r.endError
}

func TestRunLifecycle(t *testing.T) {
	rec := &recordingReporter{}
	run := NewRun("reqres")
	require.NoError(t, run.Register(rec))
	require.Len(t, rec.started, 1)
	assert.Equal(t, "reqres", rec.started[0].Suite)
	assert.NotEmpty(t, rec.started[0].ID)

	run.SpecFinished(PassedSpec("", "a", time.Millisecond))
	run.SpecFinished(FailedSpec("", "b", time.Millisecond, "status was 500"))
	run.SpecFinished(PassedSpec("", "c", time.Millisecond))

	summary, err := run.Finalize()
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.False(t, summary.OK())

	var names []string
	for _, e := range summary.Specs {
		names = append(names, e.Name)
		assert.Equal(t, "reqres", e.Suite)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Len(t, rec.specs, 3)

	again, err := run.Finalize()
	require.NoError(t, err)
	assert.Equal(t, summary, again)
	assert.Len(t, rec.ended, 1)

	run.SpecFinished(PassedSpec("", "late", 0))
	assert.Len(t, run.Summary().Specs, 3)
}

func TestRegisterTwice(t *testing.T) {
	run := NewRun("s")
	require.NoError(t, run.Register())
	assert.ErrorIs(t, run.Register(&recordingReporter{}), ErrAlreadyRegistered)
}

func TestFailedSpecAlwaysHasReason(t *testing.T) {
	e := FailedSpec("s", "n", 0)
	assert.Equal(t, Failed, e.Outcome)
	assert.NotEmpty(t, e.Reasons)
	assert.Empty(t, PassedSpec("s", "n", 0).Reasons)
}

func TestFinalizeJoinsReporterErrors(t *testing.T) {
	bad := &recordingReporter{endError: errors.New("disk full")}
	good := &recordingReporter{}
	run := NewRun("s")
	require.NoError(t, run.Register(bad, good))
	_, err := run.Finalize()
	assert.EqualError(t, err, "disk full")
	assert.Len(t, good.ended, 1)
}

func TestWithRunFinalizesOnPanic(t *testing.T) {
	rec := &recordingReporter{}
	assert.PanicsWithValue(t, "boom", func() {
		_, _ = WithRun("s", []Reporter{rec}, func(run *Run) {
			run.SpecFinished(PassedSpec("", "before panic", 0))
			panic("boom")
		})
	})
	require.Len(t, rec.ended, 1)
	assert.Equal(t, 1, rec.ended[0].Passed)
}

func TestWithRunReturnsSummary(t *testing.T) {
	rec := &recordingReporter{}
	summary, err := WithRun("s", []Reporter{rec}, func(run *Run) {
		run.SpecFinished(FailedSpec("", "x", 0, "nope"))
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Len(t, rec.ended, 1)
}

func TestConsoleReporter(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	c := NewConsoleReporter(&buf)
	c.RunStarted(RunInfo{ID: "id1", Suite: "posts"})
	c.SpecFinished(PassedSpec("posts", "get post", 3*time.Millisecond))
	failed := FailedSpec("posts", "create post", time.Millisecond, "status: expected 201, got 500\nsecond line")
	failed.Request = &RequestSummary{
		Method:  "POST",
		URL:     "https://example.com/posts",
		Headers: []Header{{Name: "Content-Type", Value: "application/json"}},
		Body:    `{"title":"it's"}`,
	}
	c.SpecFinished(failed)
	require.NoError(t, c.RunEnded(Summary{RunInfo: RunInfo{Suite: "posts"}, Passed: 1, Failed: 1}))

	out := buf.String()
	assert.Contains(t, out, "suite posts (run id1)")
	assert.Contains(t, out, "PASS get post (3ms)")
	assert.Contains(t, out, "FAIL create post")
	assert.Contains(t, out, "      second line\n")
	assert.Contains(t, out, `reproduce: curl -i -X POST -H 'Content-Type: application/json' --data-raw '{"title":"it'"'"'s"}' https://example.com/posts`)
	assert.Contains(t, out, "suite posts: 1 passed, 1 failed")
}

func TestJSONReporterWritesAndCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")
	j, err := NewJSONReporter(path)
	require.NoError(t, err)

	summary, err := WithRun("users", []Reporter{j}, func(run *Run) {
		run.SpecFinished(PassedSpec("", "list", time.Millisecond))
		run.SpecFinished(FailedSpec("", "login", time.Millisecond, "expected 400"))
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, summary.ID, doc["id"])
	assert.Equal(t, "users", doc["suite"])
	assert.Equal(t, float64(1), doc["passed"])
	assert.Equal(t, float64(1), doc["failed"])
	specs := doc["specs"].([]interface{})
	require.Len(t, specs, 2)
	assert.Equal(t, "failed", specs[1].(map[string]interface{})["outcome"])

	assert.NoError(t, j.RunEnded(summary))
}
