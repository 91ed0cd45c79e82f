// Package config reads the YAML configuration of the bisect command.
package config

import (
	"bytes"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"go.skia.org/perfbisect/bisection/go/bisect"
	"go.skia.org/perfbisect/bisection/go/commit"
	"go.skia.org/perfbisect/bisection/go/crrev"
	"go.skia.org/perfbisect/bisection/go/gitiles"
	"go.skia.org/perfbisect/bisection/go/sample"
	"go.skia.org/perfbisect/bisection/go/step"
	"go.skia.org/perfbisect/bisection/go/steps"
	"go.skia.org/perfbisect/go/httputils"
)

// Duration is a time.Duration written as a string, e.g. "1h30m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "line %d", value.Line)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// ExecStep configures a steps.Exec.
type ExecStep struct {
	Metric  string   `yaml:"metric,omitempty"`
	Command []string `yaml:"command,omitempty"`
	// CommandLine is an alternative to Command, split with shell quoting
	// rules, e.g. "./run_benchmark --story 'Speedometer 2'".
	CommandLine string `yaml:"command_line,omitempty"`
	Dir     string   `yaml:"dir,omitempty"`
	Env     []string `yaml:"env,omitempty"`
	// Parse is "exit_code" (the default) or "stdout".
	Parse string `yaml:"parse,omitempty"`
	// Attempts is how many times the command is tried if it can't be
	// started. Defaults to 1.
	Attempts int `yaml:"attempts,omitempty"`
	// Stdin is written to the command's standard input.
	Stdin string `yaml:"stdin,omitempty"`
	// Timeout kills the command if it runs longer. Zero means no limit.
	Timeout Duration `yaml:"timeout,omitempty"`
	// LogOutput copies the command's stdout to the log.
	LogOutput bool `yaml:"log_output,omitempty"`
}

// Config is the configuration of a bisection.
type Config struct {
	CrrevURL   string `yaml:"crrev_url"`
	GitilesURL string `yaml:"gitiles_url"`
	// Attempts is how many times requests to crrev and Gitiles are tried.
	Attempts int `yaml:"attempts"`
	// RequestTimeout bounds each request to crrev and Gitiles.
	RequestTimeout Duration `yaml:"request_timeout"`

	SignificanceLevel float64  `yaml:"significance_level"`
	Timeout           Duration `yaml:"timeout"`
	Parallel          bool     `yaml:"parallel"`

	Steps []ExecStep `yaml:"steps"`
}

// Default returns the configuration used for every field missing from a
// file.
func Default() *Config {
	return &Config{
		CrrevURL:          crrev.DEFAULT_BASE_URL,
		GitilesURL:        gitiles.DEFAULT_BASE_URL,
		Attempts:          httputils.DEFAULT_MAX_ATTEMPTS,
		RequestTimeout:    Duration(httputils.REQUEST_TIMEOUT),
		SignificanceLevel: sample.DefaultSignificanceLevel,
		Timeout:           Duration(bisect.DefaultTimeout),
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	cfg, err := Parse(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse reads and validates a configuration. Unknown fields are an error.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decoding YAML")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns every problem with the configuration.
func (c *Config) Validate() error {
	var result error
	for name, u := range map[string]string{"crrev_url": c.CrrevURL, "gitiles_url": c.GitilesURL} {
		if _, err := url.ParseRequestURI(u); err != nil {
			result = multierror.Append(result, errors.Errorf("%s: invalid URL %q", name, u))
		}
	}
	if c.Attempts < 1 {
		result = multierror.Append(result, errors.Errorf("attempts must be at least 1, got %d", c.Attempts))
	}
	if c.RequestTimeout < 0 {
		result = multierror.Append(result, errors.Errorf("request_timeout must not be negative, got %s", time.Duration(c.RequestTimeout)))
	}
	if err := c.Options().Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if len(c.Steps) == 0 {
		result = multierror.Append(result, errors.New("at least one step is required"))
	}
	for i, s := range c.Steps {
		switch {
		case len(s.Command) > 0 && s.CommandLine != "":
			result = multierror.Append(result, errors.Errorf("steps[%d]: only one of command and command_line may be given", i))
		case len(s.Command) == 0 && s.CommandLine == "":
			result = multierror.Append(result, errors.Errorf("steps[%d]: command is required", i))
		case s.CommandLine != "":
			if _, err := shellquote.Split(s.CommandLine); err != nil {
				result = multierror.Append(result, errors.Wrapf(err, "steps[%d]: command_line", i))
			}
		}
		switch steps.ParseMode(s.Parse) {
		case "", steps.ParseExitCode, steps.ParseStdout:
		default:
			result = multierror.Append(result, errors.Errorf("steps[%d]: unknown parse mode %q", i, s.Parse))
		}
		if s.Attempts < 0 {
			result = multierror.Append(result, errors.Errorf("steps[%d]: attempts must not be negative", i))
		}
		if s.Timeout < 0 {
			result = multierror.Append(result, errors.Errorf("steps[%d]: timeout must not be negative", i))
		}
	}
	return result
}

// Options returns the bisection options.
func (c *Config) Options() bisect.Options {
	return bisect.Options{
		SignificanceLevel: c.SignificanceLevel,
		Timeout:           time.Duration(c.Timeout),
		Parallel:          c.Parallel,
	}
}

// argv returns the command of the step.
func (s ExecStep) argv() []string {
	if s.CommandLine == "" {
		return s.Command
	}
	// Validate has already checked that the line splits.
	rv, _ := shellquote.Split(s.CommandLine)
	return rv
}

// BuildSteps returns the configured Steps, in order. The Config must be
// valid.
func (c *Config) BuildSteps() []step.Step {
	rv := make([]step.Step, 0, len(c.Steps))
	for _, s := range c.Steps {
		parse := steps.ParseMode(s.Parse)
		if parse == "" {
			parse = steps.ParseExitCode
		}
		var st step.Step = &steps.Exec{
			Metric:  s.Metric,
			Command: s.argv(),
			Dir:     s.Dir,
			Env:       s.Env,
			Parse:     parse,
			Stdin:     s.Stdin,
			Timeout:   time.Duration(s.Timeout),
			LogOutput: s.LogOutput,
		}
		if s.Attempts > 1 {
			st = step.WithRetry(st, s.Attempts)
		}
		rv = append(rv, st)
	}
	return rv
}

// Resolver returns a commit resolver that uses the configured crrev and
// Gitiles services.
func (c *Config) Resolver() *commit.Resolver {
	httpClient := httputils.DefaultClientConfig().
		WithMaxAttempts(c.Attempts).
		WithRequestTimeout(time.Duration(c.RequestTimeout)).
		Client()
	cr := crrev.New(httpClient)
	cr.BaseURL = c.CrrevURL
	gc := gitiles.New(httpClient)
	gc.BaseURL = c.GitilesURL
	return &commit.Resolver{
		Repos:     cr,
		Log:       gc,
		Positions: cr,
	}
}
