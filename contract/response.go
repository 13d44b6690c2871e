package contract

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/rafafrassetto/http-contract-tests/match"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// ResponseRecord is everything received for one dispatched request. Any status, including
// 4xx and 5xx, produces a record.
type ResponseRecord struct {
	Status  int
	Headers http.Header
	RawBody []byte

	// Body is the parsed body if IsJSON is true, and null otherwise.
	Body   ldvalue.Value
	IsJSON bool

	Elapsed time.Duration
}

func newResponseRecord(status int, headers http.Header, raw []byte, elapsed time.Duration) *ResponseRecord {
	r := &ResponseRecord{
		Status:  status,
		Headers: headers.Clone(),
		RawBody: raw,
		Body:    ldvalue.Null(),
		Elapsed: elapsed,
	}
	if r.Headers == nil {
		r.Headers = make(http.Header)
	}
	if isJSONContentType(headers.Get("Content-Type")) {
		if body, err := parseJSON(raw); err == nil {
			r.Body, r.IsJSON = body, true
		}
	}
	return r
}

// JSON returns the parsed body, or an error wrapping ErrNotJSON.
func (r *ResponseRecord) JSON() (ldvalue.Value, error) {
	if r == nil {
		return ldvalue.Null(), ErrNotDispatched
	}
	if !r.IsJSON {
		return ldvalue.Null(), fmt.Errorf("%w (content type %q)", ErrNotJSON, r.Headers.Get("Content-Type"))
	}
	return r.Body, nil
}

// Lookup selects a value from the JSON body by path expression.
func (r *ResponseRecord) Lookup(path string) (ldvalue.Value, error) {
	body, err := r.JSON()
	if err != nil {
		return ldvalue.Null(), err
	}
	return match.Lookup(body, path)
}

// Text returns the body as a string regardless of content type.
func (r *ResponseRecord) Text() string {
	if r == nil {
		return ""
	}
	return string(r.RawBody)
}

func isJSONContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func parseJSON(data []byte) (ldvalue.Value, error) {
	var v ldvalue.Value
	if err := v.UnmarshalJSON(data); err != nil {
		return ldvalue.Null(), err
	}
	return v, nil
}
