// Package config loads the run configuration: where each API suite points, which headers it
// sends, how long requests may take, and where the JSON report goes.
package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTimeoutMS is the request timeout used when the configuration does not set one.
const DefaultTimeoutMS = 30000

// Suite names.
const (
	ReqRes          = "reqres"
	JSONPlaceholder = "jsonplaceholder"
	FakeRESTAPI     = "fakerestapi"
)

// SuiteConfig configures one API suite.
type SuiteConfig struct {
	BaseURL string            `yaml:"base_url"`
	Headers map[string]string `yaml:"headers,omitempty"`

	// Enabled defaults to true.
	Enabled *bool `yaml:"enabled,omitempty"`
}

// IsEnabled reports whether the suite should run.
func (s SuiteConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Config is the contents of the configuration file.
type Config struct {
	TimeoutMS  int                    `yaml:"timeout_ms"`
	ReportJSON string                 `yaml:"report_json,omitempty"`
	Suites     map[string]SuiteConfig `yaml:"suites"`
}

// Timeout returns the default request timeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return DefaultTimeoutMS * time.Millisecond
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// Suite returns the configuration of a suite, or a disabled entry if the suite is unknown.
func (c *Config) Suite(name string) SuiteConfig {
	if s, ok := c.Suites[name]; ok {
		return s
	}
	disabled := false
	return SuiteConfig{Enabled: &disabled}
}

// DisabledSuites lists the suites that are configured but turned off, in sorted order.
func (c *Config) DisabledSuites() []string {
	var names []string
	for name, s := range c.Suites {
		if !s.IsEnabled() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Default returns the configuration used when there is no file: every suite against its
// public sandbox.
func Default() *Config {
	return &Config{
		TimeoutMS: DefaultTimeoutMS,
		Suites: map[string]SuiteConfig{
			ReqRes:          {BaseURL: "https://reqres.in/api"},
			JSONPlaceholder: {BaseURL: "https://jsonplaceholder.typicode.com"},
			FakeRESTAPI:     {BaseURL: "https://fakerestapi.azurewebsites.net/api/v1"},
		},
	}
}

// Load reads a YAML configuration file. Settings that the file does not mention keep their
// default values. An empty path or a missing file gives the default configuration.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse overlays YAML data onto cfg.
func Parse(data []byte, cfg *Config) error {
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}
	if file.TimeoutMS < 0 {
		return fmt.Errorf("timeout_ms must not be negative, got %d", file.TimeoutMS)
	}
	if file.TimeoutMS > 0 {
		cfg.TimeoutMS = file.TimeoutMS
	}
	if file.ReportJSON != "" {
		cfg.ReportJSON = file.ReportJSON
	}
	if cfg.Suites == nil {
		cfg.Suites = make(map[string]SuiteConfig)
	}
	for name, s := range file.Suites {
		merged := cfg.Suites[name]
		if s.BaseURL != "" {
			merged.BaseURL = s.BaseURL
		}
		if s.Headers != nil {
			merged.Headers = s.Headers
		}
		if s.Enabled != nil {
			merged.Enabled = s.Enabled
		}
		if merged.BaseURL == "" && merged.IsEnabled() {
			return fmt.Errorf("suite %q has no base_url", name)
		}
		cfg.Suites[name] = merged
	}
	return nil
}
