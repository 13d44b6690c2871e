package contract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rafafrassetto/http-contract-tests/match"
	"github.com/rafafrassetto/http-contract-tests/store"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

var supportedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

// A URL template token is either a store placeholder or a {name} path parameter.
var urlTokenRegex = regexp.MustCompile(`\$S\{[^}]+\}|\{(\w+)\}`)

// NameValue is one header or parameter. Order is significant and names may repeat.
type NameValue struct {
	Name  string
	Value string
}

// RequestDescriptor is a fully resolved request, ready to be dispatched. It contains no
// placeholders.
type RequestDescriptor struct {
	Method  string
	URL     string
	Headers []NameValue

	// Body is the encoded request body, or nil if there is none. If the body was given as JSON,
	// JSONBody holds the resolved value; otherwise it is null.
	Body     []byte
	JSONBody ldvalue.Value

	PathParams  []NameValue
	QueryParams []NameValue

	// TimeoutMS is undefined if the dispatcher's default timeout applies.
	TimeoutMS ldvalue.OptionalInt
}

// Header returns the first value of a header, compared case-insensitively.
func (d RequestDescriptor) Header(name string) string {
	for _, h := range d.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// RequestBuilder accumulates the parts of a request. Nothing is resolved or validated until
// Build is called.
type RequestBuilder struct {
	method         string
	url            string
	headers        []NameValue
	defaultHeaders []NameValue
	jsonBody       *ldvalue.Value
	rawBody        *string
	contentType    string
	pathParams     []NameValue
	queryParams    []NameValue
	timeoutMS      ldvalue.OptionalInt
	err            error
}

// NewRequest returns an empty builder.
func NewRequest() *RequestBuilder {
	return &RequestBuilder{}
}

// Method sets the HTTP method and the URL template. The template may contain $S{name}
// placeholders and {name} path parameter tokens.
func (b *RequestBuilder) Method(verb, urlTemplate string) *RequestBuilder {
	b.method = strings.ToUpper(strings.TrimSpace(verb))
	b.url = urlTemplate
	return b
}

// Get is shorthand for Method("GET", urlTemplate).
func (b *RequestBuilder) Get(urlTemplate string) *RequestBuilder {
	return b.Method("GET", urlTemplate)
}

// Post is shorthand for Method("POST", urlTemplate).
func (b *RequestBuilder) Post(urlTemplate string) *RequestBuilder {
	return b.Method("POST", urlTemplate)
}

// Put is shorthand for Method("PUT", urlTemplate).
func (b *RequestBuilder) Put(urlTemplate string) *RequestBuilder {
	return b.Method("PUT", urlTemplate)
}

// Patch is shorthand for Method("PATCH", urlTemplate).
func (b *RequestBuilder) Patch(urlTemplate string) *RequestBuilder {
	return b.Method("PATCH", urlTemplate)
}

// Delete is shorthand for Method("DELETE", urlTemplate).
func (b *RequestBuilder) Delete(urlTemplate string) *RequestBuilder {
	return b.Method("DELETE", urlTemplate)
}

// WithHeader adds a header. The value may contain placeholders. Adding the same name twice
// sends both values.
func (b *RequestBuilder) WithHeader(name, value string) *RequestBuilder {
	b.headers = append(b.headers, NameValue{Name: name, Value: value})
	return b
}

// WithDefaultHeader adds a header that is only sent if no header of the same name was added
// with WithHeader. The engine uses it for its configured headers.
func (b *RequestBuilder) WithDefaultHeader(name, value string) *RequestBuilder {
	b.defaultHeaders = append(b.defaultHeaders, NameValue{Name: name, Value: value})
	return b
}

// WithJSONBody sets a JSON body from any JSON-serializable value, such as a map, a struct or
// an ldvalue.Value. String values anywhere in the body may contain placeholders.
func (b *RequestBuilder) WithJSONBody(body interface{}) *RequestBuilder {
	v, err := match.FromGo(body)
	if err != nil {
		b.err = fmt.Errorf("%w: %w", ErrIncompleteSpec, err)
		return b
	}
	b.jsonBody, b.rawBody = &v, nil
	return b
}

// WithBody sets a non-JSON body with the given content type. The text may contain placeholders.
func (b *RequestBuilder) WithBody(raw, contentType string) *RequestBuilder {
	b.rawBody, b.jsonBody = &raw, nil
	b.contentType = contentType
	return b
}

// WithPathParam supplies the value for a {name} token in the URL template.
func (b *RequestBuilder) WithPathParam(name string, value interface{}) *RequestBuilder {
	b.pathParams = append(b.pathParams, NameValue{Name: name, Value: paramString(value)})
	return b
}

// WithQueryParam appends a query parameter. Parameters already present in the URL template
// are kept ahead of it.
func (b *RequestBuilder) WithQueryParam(name string, value interface{}) *RequestBuilder {
	b.queryParams = append(b.queryParams, NameValue{Name: name, Value: paramString(value)})
	return b
}

// WithTimeout overrides the dispatcher's default timeout for this request. Durations are
// rounded down to whole milliseconds, with a minimum of one.
func (b *RequestBuilder) WithTimeout(d time.Duration) *RequestBuilder {
	ms := int(d / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	b.timeoutMS = ldvalue.NewOptionalInt(ms)
	return b
}

// Build resolves every placeholder and path parameter and returns the request. The builder
// can be built again after further changes; earlier descriptors are unaffected.
func (b *RequestBuilder) Build(vars *store.Store) (RequestDescriptor, error) {
	if b.err != nil {
		return RequestDescriptor{}, b.err
	}
	if b.method == "" || b.url == "" {
		return RequestDescriptor{}, fmt.Errorf("%w: a request needs both a method and a URL", ErrIncompleteSpec)
	}
	if !isSupportedMethod(b.method) {
		return RequestDescriptor{}, fmt.Errorf("%w: unsupported method %q", ErrIncompleteSpec, b.method)
	}
	if vars == nil {
		vars = store.New()
	}

	d := RequestDescriptor{Method: b.method, JSONBody: ldvalue.Null(), TimeoutMS: b.timeoutMS}

	pathParams := make(map[string]string, len(b.pathParams))
	for _, p := range b.pathParams {
		value, err := vars.Resolve(p.Value)
		if err != nil {
			return RequestDescriptor{}, fmt.Errorf("path parameter %q: %w", p.Name, err)
		}
		pathParams[p.Name] = value
		d.PathParams = append(d.PathParams, NameValue{Name: p.Name, Value: value})
	}

	resolvedURL, err := expandURL(b.url, pathParams, vars)
	if err != nil {
		return RequestDescriptor{}, err
	}

	for _, q := range b.queryParams {
		value, err := vars.Resolve(q.Value)
		if err != nil {
			return RequestDescriptor{}, fmt.Errorf("query parameter %q: %w", q.Name, err)
		}
		d.QueryParams = append(d.QueryParams, NameValue{Name: q.Name, Value: value})
	}
	d.URL = appendQuery(resolvedURL, d.QueryParams)
	if _, err := url.Parse(d.URL); err != nil {
		return RequestDescriptor{}, fmt.Errorf("%w: %w", ErrIncompleteSpec, err)
	}

	headers := make([]NameValue, 0, len(b.defaultHeaders)+len(b.headers))
	for _, h := range b.defaultHeaders {
		if !hasHeader(b.headers, h.Name) {
			headers = append(headers, h)
		}
	}
	headers = append(headers, b.headers...)
	for _, h := range headers {
		value, err := vars.Resolve(h.Value)
		if err != nil {
			return RequestDescriptor{}, fmt.Errorf("header %q: %w", h.Name, err)
		}
		d.Headers = append(d.Headers, NameValue{Name: h.Name, Value: value})
	}

	switch {
	case b.jsonBody != nil:
		body, err := vars.ResolveValue(*b.jsonBody)
		if err != nil {
			return RequestDescriptor{}, fmt.Errorf("request body: %w", err)
		}
		d.JSONBody = body
		d.Body = []byte(body.JSONString())
		if d.Header("Content-Type") == "" {
			d.Headers = append(d.Headers, NameValue{Name: "Content-Type", Value: "application/json"})
		}
	case b.rawBody != nil:
		body, err := vars.Resolve(*b.rawBody)
		if err != nil {
			return RequestDescriptor{}, fmt.Errorf("request body: %w", err)
		}
		d.Body = []byte(body)
		if b.contentType != "" && d.Header("Content-Type") == "" {
			d.Headers = append(d.Headers, NameValue{Name: "Content-Type", Value: b.contentType})
		}
	}

	return d, nil
}

func expandURL(template string, pathParams map[string]string, vars *store.Store) (string, error) {
	used := make(map[string]bool, len(pathParams))
	var firstErr error
	out := urlTokenRegex.ReplaceAllStringFunc(template, func(token string) string {
		if firstErr != nil {
			return token
		}
		if strings.HasPrefix(token, "$S{") {
			resolved, err := vars.Resolve(token)
			if err != nil {
				firstErr = fmt.Errorf("URL: %w", err)
			}
			return resolved
		}
		name := token[1 : len(token)-1]
		value, ok := pathParams[name]
		if !ok {
			firstErr = fmt.Errorf("%w: no value for {%s} in %q", ErrUnboundPathParam, name, template)
			return token
		}
		used[name] = true
		return url.PathEscape(value)
	})
	if firstErr != nil {
		return "", firstErr
	}
	for name := range pathParams {
		if !used[name] {
			return "", fmt.Errorf("%w: %q has no {%s} token in %q", ErrUnboundPathParam, name, name, template)
		}
	}
	return out, nil
}

func appendQuery(base string, params []NameValue) string {
	if len(params) == 0 {
		return base
	}
	var b strings.Builder
	b.WriteString(base)
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
		if strings.HasSuffix(base, "?") || strings.HasSuffix(base, "&") {
			sep = ""
		}
	}
	for _, p := range params {
		b.WriteString(sep)
		b.WriteString(url.QueryEscape(p.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
		sep = "&"
	}
	return b.String()
}

func hasHeader(headers []NameValue, name string) bool {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return true
		}
	}
	return false
}

func isSupportedMethod(method string) bool {
	for _, m := range supportedMethods {
		if m == method {
			return true
		}
	}
	return false
}

func paramString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case ldvalue.Value:
		return store.Stringify(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
