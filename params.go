package main

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alessio/shellescape"
	"github.com/spf13/pflag"

	"github.com/rafafrassetto/http-contract-tests/config"
	"github.com/rafafrassetto/http-contract-tests/framework"
)

type commandParams struct {
	configFile string
	filters    framework.RegexFilters
	debug      bool
	debugAll   bool
	parallel   bool
	reportJSON string
	timeout    time.Duration
	noColor    bool
}

func (c *commandParams) Register(fs *pflag.FlagSet) {
	fs.StringVar(&c.configFile, "config", "", "YAML configuration file (defaults to the public sandboxes)")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.BoolVar(&c.parallel, "parallel", false, "run the suites concurrently")
	fs.StringVar(&c.reportJSON, "report-json", "", `write a JSON report to this file, or "-" for standard output`)
	fs.DurationVar(&c.timeout, "timeout", 0, "default request timeout, overriding the configuration")
	fs.BoolVar(&c.noColor, "no-color", false, "disable colored output")
}

// LoadConfig reads the configuration file and applies the flags that override it.
func (c *commandParams) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return nil, err
	}
	if c.timeout < 0 {
		return nil, errors.New("--timeout must not be negative")
	}
	if c.timeout > 0 {
		ms := int(c.timeout / time.Millisecond)
		if ms < 1 {
			ms = 1
		}
		cfg.TimeoutMS = ms
	}
	if c.reportJSON != "" {
		cfg.ReportJSON = c.reportJSON
	}
	return cfg, nil
}

// RerunCommand returns a shell command that runs only the given tests again, with debug output.
func (c *commandParams) RerunCommand(failures []framework.TestResult) string {
	var b commandBuilder
	b.add(filepath.Base(os.Args[0]))
	if c.configFile != "" {
		b.add("--config", c.configFile)
	}
	for _, f := range failures {
		b.add("--run", exactTestPattern(f.TestID))
	}
	b.add("--debug")
	return b.String()
}

func exactTestPattern(id framework.TestID) string {
	elements := make([]string, 0, len(id.Path))
	for _, name := range id.Path {
		elements = append(elements, "^"+regexp.QuoteMeta(name)+"$")
	}
	return strings.Join(elements, "/")
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
