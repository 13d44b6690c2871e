package contract

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rafafrassetto/http-contract-tests/match"
	"github.com/rafafrassetto/http-contract-tests/store"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// AssertionKind selects how an Assertion checks a response.
type AssertionKind int

const (
	StatusEquals AssertionKind = iota
	HeaderEquals
	JSONEquals
	JSONLike
	JSONMatch
	JSONSchema
	JSONLength
	PathExpression
)

func (k AssertionKind) String() string {
	switch k {
	case StatusEquals:
		return "status"
	case HeaderEquals:
		return "header"
	case JSONEquals:
		return "json equals"
	case JSONLike:
		return "json like"
	case JSONMatch:
		return "json match"
	case JSONSchema:
		return "json schema"
	case JSONLength:
		return "json length"
	case PathExpression:
		return "path"
	default:
		return fmt.Sprintf("AssertionKind(%d)", int(k))
	}
}

// Assertion is one expectation about a response. Which fields are used depends on Kind.
type Assertion struct {
	Kind AssertionKind

	// Path selects part of the JSON body. It is required for PathExpression and optional for
	// the other JSON kinds, where an empty path means the whole body.
	Path string

	Status     int
	HeaderName string
	Expected   ldvalue.Value
	Pattern    interface{}
	Schema     *openapi3.Schema
	Length     int
	Predicate  *match.Predicate
}

func (a Assertion) String() string {
	where := ""
	if a.Path != "" {
		where = " at " + a.Path
	}
	switch a.Kind {
	case StatusEquals:
		return fmt.Sprintf("status %d", a.Status)
	case HeaderEquals:
		return fmt.Sprintf("header %s == %s", a.HeaderName, store.Stringify(a.Expected))
	case JSONEquals, JSONLike:
		return fmt.Sprintf("%s%s %s", a.Kind, where, a.Expected.JSONString())
	case JSONLength:
		return fmt.Sprintf("%s%s %d", a.Kind, where, a.Length)
	case PathExpression:
		if a.Predicate != nil {
			return fmt.Sprintf("path %s %s", a.Path, a.Predicate)
		}
		return fmt.Sprintf("path %s == %s", a.Path, a.Expected.JSONString())
	default:
		return a.Kind.String() + where
	}
}

// Resolve returns a copy of the assertion with placeholders in its expected value replaced.
// Matcher patterns and schemas are used as written.
func (a Assertion) Resolve(vars *store.Store) (Assertion, error) {
	switch a.Kind {
	case HeaderEquals, JSONEquals, JSONLike:
	case PathExpression:
		if a.Predicate != nil {
			return a, nil
		}
	default:
		return a, nil
	}
	resolved, err := vars.ResolveValue(a.Expected)
	if err != nil {
		return a, fmt.Errorf("expected value of %s: %w", a.Kind, err)
	}
	a.Expected = resolved
	return a, nil
}

// Evaluate checks the assertion against a response. It has no side effects.
func (a Assertion) Evaluate(record *ResponseRecord) error {
	if record == nil {
		return ErrNotDispatched
	}
	switch a.Kind {
	case StatusEquals:
		if record.Status != a.Status {
			return &match.Mismatch{Message: fmt.Sprintf("expected status %d, got %d%s", a.Status, record.Status, bodySnippet(record))}
		}
		return nil

	case HeaderEquals:
		values := record.Headers.Values(a.HeaderName)
		want := store.Stringify(a.Expected)
		if len(values) == 0 {
			return &match.Mismatch{Message: fmt.Sprintf("expected header %s to be %q, but it was absent", a.HeaderName, want)}
		}
		if values[0] != want {
			return &match.Mismatch{Message: fmt.Sprintf("expected header %s to be %q, got %q", a.HeaderName, want, values[0])}
		}
		return nil
	}

	if a.Kind == PathExpression && a.Path == "" {
		return fmt.Errorf("%w: a path assertion needs a path", match.ErrInvalidPath)
	}
	target, err := record.Lookup(a.Path)
	if err != nil {
		return err
	}

	switch a.Kind {
	case JSONEquals:
		return match.Equals(target, a.Expected)
	case JSONLike:
		return match.Like(target, a.Expected)
	case JSONMatch:
		return match.Match(target, a.Pattern)
	case JSONSchema:
		return match.Schema(target, a.Schema)
	case JSONLength:
		return match.Length(target, a.Length)
	case PathExpression:
		if a.Predicate != nil {
			return a.Predicate.Check(target)
		}
		return match.Equals(target, a.Expected)
	default:
		return fmt.Errorf("unknown assertion kind %s", a.Kind)
	}
}

// EvaluateAssertions evaluates every assertion in order. It returns nil if all of them hold,
// or an *AssertionFailure listing each one that did not.
func EvaluateAssertions(assertions []Assertion, record *ResponseRecord) error {
	var failures []FailedAssertion
	for _, a := range assertions {
		if err := a.Evaluate(record); err != nil {
			failures = append(failures, FailedAssertion{Assertion: a, Err: err})
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return &AssertionFailure{Failures: failures}
}

const maxSnippetLength = 200

func bodySnippet(record *ResponseRecord) string {
	text := record.Text()
	if text == "" {
		return ""
	}
	if len(text) > maxSnippetLength {
		text = text[:maxSnippetLength] + "..."
	}
	return " (body: " + text + ")"
}
