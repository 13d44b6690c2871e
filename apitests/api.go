package apitests

import (
	"context"
	"fmt"
	"strings"

	"github.com/rafafrassetto/http-contract-tests/contract"
	"github.com/rafafrassetto/http-contract-tests/framework"
	"github.com/rafafrassetto/http-contract-tests/store"

	"github.com/google/uuid"
)

// T represents a test or subtest in an API suite.
//
// It implements the same basic functionality as Go's testing.T, but outside of the Go test runner,
// with the debug logging and filtering provided by the framework package. Every T in a suite
// shares the suite's contract.Engine, and therefore its variable store: a value captured by one
// test can be used by any test that runs after it.
//
// To make test assertions, pass the *T to the assert and require packages as if it were a
// *testing.T. Most tests use Spec to describe a request and Require or Check to run it.
type T struct {
	context *framework.Context
	env     *environment
}

type environment struct {
	suite  string
	engine *contract.Engine
	ctx    context.Context
}

// newRootScope expects the suite's *environment as the framework.Run value.
func newRootScope(c *framework.Context) *T {
	return &T{context: c, env: c.Value().(*environment)}
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(&T{context: c, env: t.env})
	})
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// Defer schedules a function to run at the end of the test.
func (t *T) Defer(fn func()) {
	t.context.Defer(fn)
}

// Skip stops the test without failing it.
func (t *T) Skip(reason string) {
	t.context.SkipWithReason(reason)
}

// Store returns the suite's variable store.
func (t *T) Store() *store.Store {
	return t.env.engine.Store()
}

// Spec starts a request for this test. The spec is named after the test, and its dispatch
// logging goes to the test's debug output, prefixed with the suite name.
func (t *T) Spec() *contract.Spec {
	logger := framework.LoggerWithPrefix(t.context.DebugLogger(), "["+t.env.suite+"] ")
	return t.env.engine.WithLogger(logger).Spec(t.context.ID().String())
}

// Check runs a spec and records every failure reason as a test error, without stopping the test.
func (t *T) Check(spec *contract.Spec) *contract.SpecResult {
	result := spec.Run(t.env.ctx)
	for _, reason := range result.Reasons() {
		t.Errorf("%s", reason)
	}
	if result.Response != nil {
		t.Debug("Response status %d, %d bytes", result.Response.Status, len(result.Response.RawBody))
	}
	return result
}

// Require runs a spec and fails the test immediately if anything about it failed.
func (t *T) Require(spec *contract.Spec) *contract.SpecResult {
	result := t.Check(spec)
	if !result.Passed() {
		t.FailNow()
	}
	return result
}

// RequireStored fails the test immediately if a variable a later request depends on was not
// captured.
func (t *T) RequireStored(names ...string) {
	var missing []string
	for _, name := range names {
		if !t.Store().Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) != 0 {
		t.Errorf("variables not captured by an earlier test: %s", strings.Join(missing, ", "))
		t.FailNow()
	}
}

// UniqueName returns a value that will not collide with data from an earlier run.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}
