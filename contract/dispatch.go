package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rafafrassetto/http-contract-tests/framework"
)

// DefaultTimeout applies to requests that do not set their own timeout.
const DefaultTimeout = 30 * time.Second

// Dispatcher sends a resolved request and records the response.
type Dispatcher interface {
	Dispatch(ctx context.Context, req RequestDescriptor) (*ResponseRecord, error)
}

// HTTPDispatcher is a Dispatcher that uses net/http.
type HTTPDispatcher struct {
	// Client defaults to a client with no timeout of its own; the per-request timeout is
	// applied through the request context.
	Client *http.Client

	DefaultTimeout time.Duration

	// Logger is used unless the request context carries its own; see ContextWithLogger.
	Logger framework.Logger
}

// NewHTTPDispatcher returns a dispatcher with the given default timeout. A zero timeout means
// DefaultTimeout.
func NewHTTPDispatcher(defaultTimeout time.Duration, logger framework.Logger) *HTTPDispatcher {
	return &HTTPDispatcher{Client: &http.Client{}, DefaultTimeout: defaultTimeout, Logger: logger}
}

func (d *HTTPDispatcher) Dispatch(ctx context.Context, req RequestDescriptor) (*ResponseRecord, error) {
	timeout := d.DefaultTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if req.TimeoutMS.IsDefined() {
		timeout = time.Duration(req.TimeoutMS.IntValue()) * time.Millisecond
	}
	logger := loggerFromContext(ctx, d.Logger)
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIncompleteSpec, err)
	}
	for _, h := range req.Headers {
		httpReq.Header.Add(h.Name, h.Value)
	}

	logger.Printf("Sending %s %s", req.Method, req.URL)
	if len(req.Body) != 0 {
		logger.Printf("Request body: %s", string(req.Body))
	}
	startTime := time.Now()

	timedOut := func() error {
		logger.Printf("No response to %s %s within %s", req.Method, req.URL, timeout)
		return DispatchTimeoutError{Method: req.Method, URL: req.URL, Timeout: timeout}
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, timedOut()
		}
		logger.Printf("Request failed: %s", err)
		return nil, fmt.Errorf("%w: %s %s: %s", ErrDispatchFailed, req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, timedOut()
		}
		return nil, fmt.Errorf("%w: reading response body: %s", ErrDispatchFailed, err)
	}
	elapsed := time.Since(startTime)

	logger.Printf("Received status %d from %s %s after %s", resp.StatusCode, req.Method, req.URL, elapsed)
	if len(data) != 0 {
		logger.Printf("Response body: %s", string(data))
	}
	return newResponseRecord(resp.StatusCode, resp.Header, data, elapsed), nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}
