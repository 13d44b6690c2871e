package contract

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rafafrassetto/http-contract-tests/framework"
	"github.com/rafafrassetto/http-contract-tests/report"
	"github.com/rafafrassetto/http-contract-tests/store"
)

// Config describes an Engine. All fields are optional.
type Config struct {
	// Suite names the suite in report events.
	Suite string

	// BaseURL is prepended to any request URL that does not start with a scheme.
	BaseURL string

	// Headers are added to every request unless the spec sets a header of the same name.
	Headers map[string]string

	// DefaultTimeout applies to requests without their own timeout. Zero means DefaultTimeout.
	DefaultTimeout time.Duration

	// Store defaults to a new empty store, so that engines never share variables by accident.
	Store *store.Store

	// Dispatcher defaults to an HTTPDispatcher.
	Dispatcher Dispatcher

	// Run, if set, receives a SpecFinished event for every spec that is run.
	Run *report.Run

	Logger framework.Logger
}

// Engine creates specs that share one variable store, dispatcher and report run.
type Engine struct {
	suite      string
	baseURL    string
	headers    []NameValue
	store      *store.Store
	dispatcher Dispatcher
	run        *report.Run
	logger     framework.Logger
}

// New creates an Engine.
func New(cfg Config) *Engine {
	e := &Engine{
		suite:      cfg.Suite,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		store:      cfg.Store,
		dispatcher: cfg.Dispatcher,
		run:        cfg.Run,
		logger:     cfg.Logger,
	}
	if e.logger == nil {
		e.logger = framework.NullLogger()
	}
	if e.store == nil {
		e.store = store.New()
	}
	if e.dispatcher == nil {
		e.dispatcher = NewHTTPDispatcher(cfg.DefaultTimeout, e.logger)
	}
	names := make([]string, 0, len(cfg.Headers))
	for name := range cfg.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e.headers = append(e.headers, NameValue{Name: name, Value: cfg.Headers[name]})
	}
	return e
}

// Store returns the engine's variable store.
func (e *Engine) Store() *store.Store { return e.store }

// Suite returns the suite name used in report events.
func (e *Engine) Suite() string { return e.suite }

// WithLogger returns an engine that shares everything with e but sends dispatch logging to
// logger. This is how each test gets its own debug output.
func (e *Engine) WithLogger(logger framework.Logger) *Engine {
	copied := *e
	if logger == nil {
		logger = framework.NullLogger()
	}
	copied.logger = logger
	return &copied
}

// Spec starts a new spec. The name is used in report events.
func (e *Engine) Spec(name string) *Spec {
	s := &Spec{engine: e, name: name, request: NewRequest()}
	for _, h := range e.headers {
		s.request.WithDefaultHeader(h.Name, h.Value)
	}
	return s
}

func (e *Engine) absoluteURL(u string) string {
	if strings.TrimSpace(u) == "" {
		return ""
	}
	if e.baseURL == "" || strings.Contains(u, "://") {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return e.baseURL + u
}

type loggerContextKey struct{}

// ContextWithLogger attaches a logger that a Dispatcher should use for requests made with ctx.
func ContextWithLogger(ctx context.Context, logger framework.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

func loggerFromContext(ctx context.Context, fallback framework.Logger) framework.Logger {
	if l, ok := ctx.Value(loggerContextKey{}).(framework.Logger); ok && l != nil {
		return l
	}
	if fallback == nil {
		return framework.NullLogger()
	}
	return fallback
}
