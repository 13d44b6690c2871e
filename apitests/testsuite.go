package apitests

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rafafrassetto/http-contract-tests/config"
	"github.com/rafafrassetto/http-contract-tests/contract"
	"github.com/rafafrassetto/http-contract-tests/framework"
	"github.com/rafafrassetto/http-contract-tests/report"
)

// Suites maps each known suite name to its tests, in the order they are run.
var Suites = []struct {
	Name  string
	Tests func(*T)
}{
	{config.ReqRes, DoReqResTests},
	{config.JSONPlaceholder, DoJSONPlaceholderTests},
	{config.FakeRESTAPI, DoFakeRESTAPITests},
}

// Options controls a call to RunTestSuite.
type Options struct {
	Config     *config.Config
	Filter     framework.Filter
	TestLogger framework.TestLogger

	// Reporters returns the reporters for one suite's run. If nil, specs are not reported.
	Reporters func(suite string) ([]report.Reporter, error)

	// Dispatcher overrides the HTTP dispatcher used by every suite.
	Dispatcher contract.Dispatcher

	// Parallel runs the enabled suites concurrently.
	Parallel bool
}

// SuiteResult is what RunTestSuite returns for each suite that ran.
type SuiteResult struct {
	Suite   string
	Results framework.Results
	Summary report.Summary
	Err     error
}

// RunTestSuite runs every enabled suite. Each suite gets its own engine, and therefore its own
// variable store, and its own report run.
func RunTestSuite(ctx context.Context, opts Options) ([]SuiteResult, framework.Results) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	testLogger := opts.TestLogger
	if opts.Parallel && testLogger != nil {
		testLogger = framework.SynchronizedTestLogger(testLogger)
	}

	var enabled []int
	for i, s := range Suites {
		if cfg.Suite(s.Name).IsEnabled() {
			enabled = append(enabled, i)
		}
	}

	out := make([]SuiteResult, len(enabled))
	runOne := func(slot, index int) {
		out[slot] = runSuite(ctx, opts, cfg, testLogger, Suites[index].Name, Suites[index].Tests)
	}
	if opts.Parallel {
		var wg sync.WaitGroup
		for slot, index := range enabled {
			slot, index := slot, index
			wg.Add(1)
			go func() {
				defer wg.Done()
				runOne(slot, index)
			}()
		}
		wg.Wait()
	} else {
		for slot, index := range enabled {
			runOne(slot, index)
		}
	}

	var all framework.Results
	for _, r := range out {
		all.Merge(r.Results)
	}
	return out, all
}

func runSuite(
	ctx context.Context,
	opts Options,
	cfg *config.Config,
	testLogger framework.TestLogger,
	name string,
	tests func(*T),
) SuiteResult {
	result := SuiteResult{Suite: name}
	var reporters []report.Reporter
	if opts.Reporters != nil {
		var err error
		if reporters, err = opts.Reporters(name); err != nil {
			result.Err = err
			return result
		}
	}
	suiteConfig := cfg.Suite(name)
	result.Summary, result.Err = report.WithRun(name, reporters, func(run *report.Run) {
		engine := contract.New(contract.Config{
			Suite:          name,
			BaseURL:        suiteConfig.BaseURL,
			Headers:        suiteConfig.Headers,
			DefaultTimeout: cfg.Timeout(),
			Dispatcher:     opts.Dispatcher,
			Run:            run,
		})
		env := &environment{suite: name, engine: engine, ctx: ctx}
		result.Results = framework.Run(opts.Filter, testLogger, env, func(c *framework.Context) {
			newRootScope(c).Run(name, tests)
		})
	})
	return result
}

// ReportPath returns the JSON report file for suite. When several suites write reports, the
// suite name is inserted before the extension of the configured path.
func ReportPath(path, suite string, suiteCount int) string {
	if suiteCount <= 1 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%s%s", strings.TrimSuffix(path, ext), suite, ext)
}
