package contract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rafafrassetto/http-contract-tests/match"
	"github.com/rafafrassetto/http-contract-tests/report"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

type specState int

const (
	specConfigured specState = iota
	specTerminal
)

// Spec is one request together with the assertions and captures that apply to its response.
// Configure it with the fluent methods, then call Run. A Spec is not safe for concurrent use.
type Spec struct {
	engine     *Engine
	name       string
	request    *RequestBuilder
	assertions []Assertion
	captures   []Capture
	configErrs []error
	state      specState
	result     *SpecResult
}

// SpecResult is the outcome of running a Spec.
type SpecResult struct {
	Name string

	// Request is nil if the request could not be built.
	Request *RequestDescriptor

	// Response is nil if no response was received.
	Response *ResponseRecord

	// BuildErr is set if the spec was misconfigured or referred to an undefined variable. No
	// request is sent in that case.
	BuildErr error

	// DispatchErr is set if no response was received.
	DispatchErr error

	// AssertionErr is an *AssertionFailure if any assertion did not hold.
	AssertionErr error

	CaptureErrs []error

	Duration time.Duration
}

// Passed is true if there were no errors of any kind.
func (r *SpecResult) Passed() bool { return r.Err() == nil }

// Err combines every error of the result, or returns nil.
func (r *SpecResult) Err() error {
	errs := []error{r.BuildErr, r.DispatchErr, r.AssertionErr}
	errs = append(errs, r.CaptureErrs...)
	return errors.Join(errs...)
}

// Reasons lists the failure messages in the order they occurred.
func (r *SpecResult) Reasons() []string {
	var reasons []string
	for _, err := range []error{r.BuildErr, r.DispatchErr} {
		if err != nil {
			reasons = append(reasons, err.Error())
		}
	}
	var af *AssertionFailure
	if errors.As(r.AssertionErr, &af) {
		for _, f := range af.Failures {
			reasons = append(reasons, f.Error())
		}
	} else if r.AssertionErr != nil {
		reasons = append(reasons, r.AssertionErr.Error())
	}
	for _, err := range r.CaptureErrs {
		reasons = append(reasons, err.Error())
	}
	return reasons
}

// Method sets the request method and URL. A URL without a scheme is appended to the engine's
// BaseURL. The URL may contain {name} path parameters and $S{name} placeholders.
func (s *Spec) Method(verb, url string) *Spec {
	s.request.Method(verb, s.engine.absoluteURL(url))
	return s
}

// Get is shorthand for Method("GET", url).
func (s *Spec) Get(url string) *Spec {
	return s.Method("GET", url)
}

// Post is shorthand for Method("POST", url).
func (s *Spec) Post(url string) *Spec {
	return s.Method("POST", url)
}

// Put is shorthand for Method("PUT", url).
func (s *Spec) Put(url string) *Spec {
	return s.Method("PUT", url)
}

// Patch is shorthand for Method("PATCH", url).
func (s *Spec) Patch(url string) *Spec {
	return s.Method("PATCH", url)
}

// Delete is shorthand for Method("DELETE", url).
func (s *Spec) Delete(url string) *Spec {
	return s.Method("DELETE", url)
}

// WithHeader adds a request header. It replaces any engine header of the same name.
func (s *Spec) WithHeader(name, value string) *Spec {
	s.request.WithHeader(name, value)
	return s
}

// WithJSONBody sets a JSON request body. Strings inside it may contain placeholders.
func (s *Spec) WithJSONBody(body interface{}) *Spec {
	s.request.WithJSONBody(body)
	return s
}

// WithBody sets a raw request body sent with the given content type.
func (s *Spec) WithBody(raw, contentType string) *Spec {
	s.request.WithBody(raw, contentType)
	return s
}

// WithPathParam binds the {name} segment of the URL template.
func (s *Spec) WithPathParam(name string, value interface{}) *Spec {
	s.request.WithPathParam(name, value)
	return s
}

// WithQueryParam appends a query parameter, after any query already present in the URL.
func (s *Spec) WithQueryParam(name string, value interface{}) *Spec {
	s.request.WithQueryParam(name, value)
	return s
}

// WithTimeout overrides the engine's default timeout for this request.
func (s *Spec) WithTimeout(d time.Duration) *Spec {
	s.request.WithTimeout(d)
	return s
}

// Expect attaches an arbitrary assertion.
func (s *Spec) Expect(a Assertion) *Spec {
	s.assertions = append(s.assertions, a)
	return s
}

// ExpectStatus requires the response status code to equal code.
func (s *Spec) ExpectStatus(code int) *Spec {
	return s.Expect(Assertion{Kind: StatusEquals, Status: code})
}

// ExpectHeader requires the first value of a response header to equal value, which may
// contain placeholders.
func (s *Spec) ExpectHeader(name, value string) *Spec {
	return s.Expect(Assertion{Kind: HeaderEquals, HeaderName: name, Expected: ldvalue.String(value)})
}

// ExpectJSON requires the body to equal expected exactly.
func (s *Spec) ExpectJSON(expected interface{}) *Spec {
	return s.ExpectJSONAt("", expected)
}

// ExpectJSONAt requires the value at path to equal expected exactly.
func (s *Spec) ExpectJSONAt(path string, expected interface{}) *Spec {
	return s.expectValue(JSONEquals, path, expected)
}

// ExpectJSONLike requires the body to contain the pattern, ignoring extra object keys and
// array elements.
func (s *Spec) ExpectJSONLike(pattern interface{}) *Spec {
	return s.ExpectJSONLikeAt("", pattern)
}

func (s *Spec) ExpectJSONLikeAt(path string, pattern interface{}) *Spec {
	return s.expectValue(JSONLike, path, pattern)
}

// ExpectJSONMatch compares the body exactly, except where the pattern embeds a match.Matcher.
func (s *Spec) ExpectJSONMatch(pattern interface{}) *Spec {
	return s.ExpectJSONMatchAt("", pattern)
}

func (s *Spec) ExpectJSONMatchAt(path string, pattern interface{}) *Spec {
	return s.Expect(Assertion{Kind: JSONMatch, Path: path, Pattern: pattern})
}

// ExpectJSONSchema validates the body against a schema, given as an *openapi3.Schema, as JSON
// text, or as a Go value that encodes to a schema document.
func (s *Spec) ExpectJSONSchema(schema interface{}) *Spec {
	return s.ExpectJSONSchemaAt("", schema)
}

func (s *Spec) ExpectJSONSchemaAt(path string, schema interface{}) *Spec {
	var parsed *openapi3.Schema
	var err error
	switch v := schema.(type) {
	case string:
		parsed, err = match.ParseSchema([]byte(v))
	case []byte:
		parsed, err = match.ParseSchema(v)
	default:
		parsed, err = match.SchemaFromGo(v)
	}
	if err != nil {
		s.configErrs = append(s.configErrs, fmt.Errorf("%w: %w", ErrIncompleteSpec, err))
		return s
	}
	return s.Expect(Assertion{Kind: JSONSchema, Path: path, Schema: parsed})
}

// ExpectJSONLength requires the body to be an array, string or object of length n.
func (s *Spec) ExpectJSONLength(n int) *Spec {
	return s.ExpectJSONLengthAt("", n)
}

func (s *Spec) ExpectJSONLengthAt(path string, n int) *Spec {
	return s.Expect(Assertion{Kind: JSONLength, Path: path, Length: n})
}

// ExpectPath checks the value at path. If expected is a match.Predicate it is applied to the
// value; otherwise the value must equal expected.
func (s *Spec) ExpectPath(path string, expected interface{}) *Spec {
	switch p := expected.(type) {
	case match.Predicate:
		return s.Expect(Assertion{Kind: PathExpression, Path: path, Predicate: &p})
	case *match.Predicate:
		return s.Expect(Assertion{Kind: PathExpression, Path: path, Predicate: p})
	}
	return s.expectValue(PathExpression, path, expected)
}

// ExpectPathSatisfies checks the value at path against a textual predicate such as
// "length > 0"; see match.ParsePredicate.
func (s *Spec) ExpectPathSatisfies(path, predicate string) *Spec {
	p, err := match.ParsePredicate(predicate)
	if err != nil {
		s.configErrs = append(s.configErrs, fmt.Errorf("%w: %w", ErrIncompleteSpec, err))
		return s
	}
	return s.Expect(Assertion{Kind: PathExpression, Path: path, Predicate: &p})
}

// Stores captures the value at path into the engine's store under name once the response
// has been received.
func (s *Spec) Stores(name, path string) *Spec {
	s.captures = append(s.captures, Capture{Path: path, Name: name})
	return s
}

func (s *Spec) expectValue(kind AssertionKind, path string, expected interface{}) *Spec {
	v, err := match.FromGo(expected)
	if err != nil {
		s.configErrs = append(s.configErrs, fmt.Errorf("%w: %w", ErrIncompleteSpec, err))
		return s
	}
	return s.Expect(Assertion{Kind: kind, Path: path, Expected: v})
}

// Name returns the name given to Engine.Spec.
func (s *Spec) Name() string { return s.name }

// Response returns the response record, or nil if the spec has not received one.
func (s *Spec) Response() *ResponseRecord {
	if s.result == nil {
		return nil
	}
	return s.result.Response
}

// Result returns the result of Run, or nil if the spec has not been run.
func (s *Spec) Result() *SpecResult { return s.result }

// Run builds and sends the request, evaluates every assertion, and then applies the captures.
// Captures are applied even if assertions fail. If the request cannot be built, nothing is sent.
// Running a spec a second time returns the first result without sending anything.
func (s *Spec) Run(ctx context.Context) *SpecResult {
	if s.state == specTerminal {
		return s.result
	}
	if ctx == nil {
		ctx = context.Background()
	}
	startTime := time.Now()
	result := &SpecResult{Name: s.name}
	s.execute(ctx, result)
	result.Duration = time.Since(startTime)

	s.result = result
	s.state = specTerminal
	if s.engine.run != nil {
		s.engine.run.SpecFinished(s.event(result))
	}
	return result
}

func (s *Spec) execute(ctx context.Context, result *SpecResult) {
	vars := s.engine.store
	if len(s.configErrs) != 0 {
		result.BuildErr = errors.Join(s.configErrs...)
		return
	}
	desc, err := s.request.Build(vars)
	if err != nil {
		result.BuildErr = err
		return
	}
	result.Request = &desc

	resolved := make([]Assertion, 0, len(s.assertions))
	for _, a := range s.assertions {
		r, err := a.Resolve(vars)
		if err != nil {
			result.BuildErr = err
			return
		}
		resolved = append(resolved, r)
	}

	ctx = ContextWithLogger(ctx, s.engine.logger)
	record, err := s.engine.dispatcher.Dispatch(ctx, desc)
	if err != nil {
		result.DispatchErr = err
		return
	}
	result.Response = record
	result.AssertionErr = EvaluateAssertions(resolved, record)
	result.CaptureErrs = ApplyCaptures(s.captures, record, vars)
}

func (s *Spec) event(result *SpecResult) report.SpecEvent {
	var e report.SpecEvent
	if result.Passed() {
		e = report.PassedSpec(s.engine.suite, s.name, result.Duration)
	} else {
		e = report.FailedSpec(s.engine.suite, s.name, result.Duration, result.Reasons()...)
	}
	if result.Request != nil {
		summary := result.Request.Summary()
		e.Request = &summary
	}
	if result.Response != nil {
		e.Status = result.Response.Status
	}
	return e
}

// Summary converts the descriptor for reporting.
func (d RequestDescriptor) Summary() report.RequestSummary {
	r := report.RequestSummary{Method: d.Method, URL: d.URL, Body: string(d.Body)}
	for _, h := range d.Headers {
		r.Headers = append(r.Headers, report.Header{Name: h.Name, Value: h.Value})
	}
	return r
}
