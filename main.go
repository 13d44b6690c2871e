package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rafafrassetto/http-contract-tests/apitests"
	"github.com/rafafrassetto/http-contract-tests/framework"
	"github.com/rafafrassetto/http-contract-tests/report"
)

var errTestsFailed = errors.New("some tests failed")

// stdoutReport as the --report-json value sends the JSON reports to standard output.
const stdoutReport = "-"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var params commandParams
	cmd := &cobra.Command{
		Use:           "contract-tests",
		Short:         "Run HTTP API contract tests against the configured sandboxes",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), &params)
		},
	}
	params.Register(cmd.Flags())
	return cmd
}

func run(ctx context.Context, params *commandParams) error {
	if params.noColor {
		color.NoColor = true
	}
	cfg, err := params.LoadConfig()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	out := color.Output
	if cfg.ReportJSON == stdoutReport {
		out = color.Error
	}
	fmt.Fprintln(out)
	framework.PrintFilterDescription(out, params.filters, cfg.DisabledSuites())

	enabled := 0
	for _, s := range apitests.Suites {
		if cfg.Suite(s.Name).IsEnabled() {
			enabled++
		}
	}

	fmt.Fprintln(out, "Running test suites")
	testLogger := &ConsoleTestLogger{
		Out:                  out,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	suites, results := apitests.RunTestSuite(ctx, apitests.Options{
		Config:     cfg,
		Filter:     params.filters.AsFilter,
		TestLogger: testLogger,
		Parallel:   params.parallel,
		Reporters: func(suite string) ([]report.Reporter, error) {
			reporters := []report.Reporter{&report.ConsoleReporter{Out: out, Quiet: !params.debugAll}}
			if cfg.ReportJSON != "" {
				j, err := jsonReporterFor(cfg.ReportJSON, suite, enabled, os.Stdout)
				if err != nil {
					return nil, err
				}
				reporters = append(reporters, j)
			}
			return reporters, nil
		},
	})

	fmt.Fprintln(out)
	var errs []error
	for _, s := range suites {
		if s.Err != nil {
			errs = append(errs, fmt.Errorf("suite %s: %w", s.Suite, s.Err))
		}
	}
	framework.PrintResults(results)
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if !results.OK() {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "To run the failed tests again:")
		fmt.Fprintf(out, "  %s\n", params.RerunCommand(results.Failures))
		return errTestsFailed
	}
	return nil
}

func jsonReporterFor(path, suite string, suiteCount int, stdout io.Writer) (*report.JSONReporter, error) {
	if path == stdoutReport {
		return report.NewJSONReporterTo(nopCloser{stdout}), nil
	}
	return report.NewJSONReporter(apitests.ReportPath(path, suite, suiteCount))
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
