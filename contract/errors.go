package contract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rafafrassetto/http-contract-tests/match"
	"github.com/rafafrassetto/http-contract-tests/store"
)

var (
	// ErrIncompleteSpec means a request was built without a method or URL, or with a method
	// that is not supported.
	ErrIncompleteSpec = errors.New("incomplete spec")

	// ErrUnboundPathParam means a path parameter has no matching {name} token in the URL, or a
	// {name} token was left without a value.
	ErrUnboundPathParam = errors.New("unbound path parameter")

	// ErrDispatchTimeout is matched by errors.Is for any DispatchTimeoutError.
	ErrDispatchTimeout = errors.New("request timed out")

	// ErrDispatchFailed means the request could not be completed for a reason other than a
	// timeout, such as a refused connection.
	ErrDispatchFailed = errors.New("request failed")

	// ErrNotDispatched means a response was needed before any request had been sent.
	ErrNotDispatched = errors.New("request has not been dispatched")

	ErrNotJSON           = match.ErrNotJSON
	ErrPathNotFound      = match.ErrPathNotFound
	ErrUndefinedVariable = store.ErrUndefinedVariable
)

// DispatchTimeoutError is returned when no response arrived within the request's timeout.
type DispatchTimeoutError struct {
	Method  string
	URL     string
	Timeout time.Duration
}

func (e DispatchTimeoutError) Error() string {
	return fmt.Sprintf("%s %s: no response within %s", e.Method, e.URL, e.Timeout)
}

func (e DispatchTimeoutError) Is(target error) bool {
	return target == ErrDispatchTimeout
}

// FailedAssertion is one assertion of a chain together with the reason it did not hold.
type FailedAssertion struct {
	Assertion Assertion
	Err       error
}

func (f FailedAssertion) Error() string {
	return fmt.Sprintf("%s: %s", f.Assertion, f.Err)
}

func (f FailedAssertion) Unwrap() error { return f.Err }

// AssertionFailure collects every assertion of a chain that did not hold, in the order the
// assertions were attached.
type AssertionFailure struct {
	Failures []FailedAssertion
}

func (e *AssertionFailure) Error() string {
	if len(e.Failures) == 1 {
		return e.Failures[0].Error()
	}
	lines := make([]string, 0, len(e.Failures)+1)
	lines = append(lines, fmt.Sprintf("%d assertions failed:", len(e.Failures)))
	for _, f := range e.Failures {
		lines = append(lines, "  - "+strings.ReplaceAll(f.Error(), "\n", "\n    "))
	}
	return strings.Join(lines, "\n")
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *AssertionFailure) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f)
	}
	return errs
}
