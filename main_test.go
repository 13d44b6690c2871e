package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafafrassetto/http-contract-tests/framework"
	"github.com/rafafrassetto/http-contract-tests/report"
)

func TestFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout_ms: 5000\nreport_json: a.json\n"), 0o644))

	var params commandParams
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	params.Register(fs)
	require.NoError(t, fs.Parse([]string{
		"--config", path,
		"--timeout", "250ms",
		"--report-json", "b.json",
		"--run", "reqres",
		"--skip", "login",
		"--skip", "delete",
		"--parallel",
	}))

	cfg, err := params.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout())
	assert.Equal(t, "b.json", cfg.ReportJSON)
	assert.True(t, params.parallel)
	assert.Equal(t, `"reqres"`, params.filters.MustMatch.String())
	assert.Equal(t, `"login" or "delete"`, params.filters.MustNotMatch.String())
}

func TestRootCommandRejectsArguments(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"unexpected"})
	assert.Error(t, cmd.Execute())
}

func TestConfigFileValuesWithoutFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout_ms: 5000\nreport_json: a.json\n"), 0o644))

	params := commandParams{configFile: path}
	cfg, err := params.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, "a.json", cfg.ReportJSON)
}

func TestNegativeTimeoutIsRejected(t *testing.T) {
	params := commandParams{timeout: -time.Second}
	_, err := params.LoadConfig()
	assert.Error(t, err)
}

func TestRerunCommand(t *testing.T) {
	params := commandParams{configFile: "my config.yaml"}
	failures := []framework.TestResult{
		{TestID: framework.TestID{Path: []string{"reqres", "users", "update user"}}},
	}
	cmd := params.RerunCommand(failures)
	assert.Contains(t, cmd, "--config 'my config.yaml'")
	assert.Contains(t, cmd, `--run '^reqres$/^users$/^update user$'`)
	assert.Contains(t, cmd, "--debug")
}

func TestExactTestPatternSelectsOnlyThatTest(t *testing.T) {
	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set(exactTestPattern(framework.TestID{Path: []string{"jsonplaceholder", "posts", "get post"}})))

	assert.True(t, filters.AsFilter(framework.TestID{Path: []string{"jsonplaceholder", "posts", "get post"}}))
	assert.False(t, filters.AsFilter(framework.TestID{Path: []string{"jsonplaceholder", "posts", "get posts"}}))
	assert.False(t, filters.AsFilter(framework.TestID{Path: []string{"jsonplaceholder", "posts", "list posts"}}))
}

func TestJSONReportToStandardOutput(t *testing.T) {
	var stdout bytes.Buffer
	for _, suite := range []string{"reqres", "jsonplaceholder"} {
		j, err := jsonReporterFor(stdoutReport, suite, 2, &stdout)
		require.NoError(t, err)
		_, err = report.WithRun(suite, []report.Reporter{j}, func(*report.Run) {})
		require.NoError(t, err)
	}

	dec := json.NewDecoder(&stdout)
	var suites []interface{}
	for dec.More() {
		var doc map[string]interface{}
		require.NoError(t, dec.Decode(&doc))
		suites = append(suites, doc["suite"])
	}
	assert.Equal(t, []interface{}{"reqres", "jsonplaceholder"}, suites)
}

func TestJSONReportToFilePerSuite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	j, err := jsonReporterFor(path, "reqres", 2, nil)
	require.NoError(t, err)
	_, err = report.WithRun("reqres", []report.Reporter{j}, func(*report.Run) {})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(filepath.Dir(path), "report-reqres.json"))
	assert.NoError(t, err)
}
