package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.skia.org/perfbisect/bisection/go/bisect"
	"go.skia.org/perfbisect/bisection/go/crrev"
	"go.skia.org/perfbisect/bisection/go/gitiles"
	"go.skia.org/perfbisect/bisection/go/steps"
)

const minimal = `
steps:
  - command: ["./build_and_test.sh"]
`

func TestParse_Minimal_Defaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(minimal))
	require.NoError(t, err)

	assert.Equal(t, crrev.DEFAULT_BASE_URL, cfg.CrrevURL)
	assert.Equal(t, gitiles.DEFAULT_BASE_URL, cfg.GitilesURL)
	assert.Equal(t, 2, cfg.Attempts)
	assert.Equal(t, Duration(5*time.Minute), cfg.RequestTimeout)
	assert.Equal(t, bisect.DefaultOptions(), cfg.Options())
}

func TestParse_AllFields(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
crrev_url: http://localhost:8000/commit
gitiles_url: http://localhost:8001
attempts: 3
significance_level: 0.05
timeout: 90m
parallel: true
steps:
  - metric: build
    command: ["make", "-j8"]
    dir: /src
    env: ["CC=clang"]
    attempts: 2
  - metric: score
    command: ["./bench"]
    parse: stdout
`))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/commit", cfg.CrrevURL)
	assert.Equal(t, 3, cfg.Attempts)
	assert.Equal(t, bisect.Options{SignificanceLevel: 0.05, Timeout: 90 * time.Minute, Parallel: true}, cfg.Options())
	require.Len(t, cfg.Steps, 2)
	assert.Equal(t, ExecStep{
		Metric:   "build",
		Command:  []string{"make", "-j8"},
		Dir:      "/src",
		Env:      []string{"CC=clang"},
		Attempts: 2,
	}, cfg.Steps[0])

	built := cfg.BuildSteps()
	require.Len(t, built, 2)
	assert.Equal(t, "build", built[0].MetricName())
	_, isExec := built[0].(*steps.Exec)
	assert.False(t, isExec, "retried steps are wrapped")
	score, ok := built[1].(*steps.Exec)
	require.True(t, ok)
	assert.Equal(t, steps.ParseStdout, score.Parse)
}

func TestBuildSteps_DefaultParseMode(t *testing.T) {
	cfg, err := Parse(strings.NewReader(minimal))
	require.NoError(t, err)

	built := cfg.BuildSteps()
	require.Len(t, built, 1)
	assert.Equal(t, steps.ParseExitCode, built[0].(*steps.Exec).Parse)
}

func TestBuildSteps_CommandLine_SplitWithShellQuoting(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
steps:
  - command_line: ./run_benchmark --story 'Speedometer 2' --repeat=3
`))
	require.NoError(t, err)

	built := cfg.BuildSteps()
	require.Len(t, built, 1)
	assert.Equal(t, []string{"./run_benchmark", "--story", "Speedometer 2", "--repeat=3"}, built[0].(*steps.Exec).Command)
}

func TestBuildSteps_CommandOptions(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
steps:
  - command: ["./bench"]
    stdin: "--fast"
    timeout: 10m
    log_output: true
`))
	require.NoError(t, err)

	built := cfg.BuildSteps()
	require.Len(t, built, 1)
	e, ok := built[0].(*steps.Exec)
	require.True(t, ok)
	assert.Equal(t, "--fast", e.Stdin)
	assert.Equal(t, 10*time.Minute, e.Timeout)
	assert.True(t, e.LogOutput)
}

func TestValidate_NegativeTimeouts_Error(t *testing.T) {
	cfg := Default()
	cfg.RequestTimeout = Duration(-time.Second)
	cfg.Steps = []ExecStep{{Command: []string{"true"}, Timeout: Duration(-time.Second)}}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request_timeout must not be negative")
	assert.Contains(t, err.Error(), "steps[0]: timeout must not be negative")
}

func TestValidate_CommandAndCommandLine_Error(t *testing.T) {
	_, err := Parse(strings.NewReader(`
steps:
  - command: ["a"]
    command_line: b
  - command_line: "unterminated 'quote"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only one of command and command_line")
	assert.Contains(t, err.Error(), "steps[1]: command_line")
}

func TestParse_UnknownField_Error(t *testing.T) {
	_, err := Parse(strings.NewReader(minimal + "colour: blue\n"))
	require.Error(t, err)
}

func TestParse_BadDuration_Error(t *testing.T) {
	_, err := Parse(strings.NewReader(minimal + "timeout: soon\n"))
	require.Error(t, err)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	_, err := Parse(strings.NewReader(`
crrev_url: not a url
attempts: 0
significance_level: 1.5
steps:
  - parse: json
`))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "crrev_url")
	assert.Contains(t, msg, "attempts must be at least 1")
	assert.Contains(t, msg, "significance level")
	assert.Contains(t, msg, "command is required")
	assert.Contains(t, msg, `unknown parse mode "json"`)
}

func TestValidate_NoSteps_Error(t *testing.T) {
	_, err := Parse(strings.NewReader("parallel: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one step")
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bisect.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"./build_and_test.sh"}, cfg.Steps[0].Command)
}

func TestLoad_MissingFile_Error(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestResolver_UsesConfiguredServices(t *testing.T) {
	cfg := Default()
	cfg.CrrevURL = "http://crrev.example/commit"
	cfg.GitilesURL = "http://gitiles.example"

	r := cfg.Resolver()

	assert.Equal(t, "http://crrev.example/commit", r.Repos.(*crrev.Client).BaseURL)
	assert.Equal(t, "http://gitiles.example", r.Log.(*gitiles.Client).BaseURL)
	assert.Same(t, r.Repos, r.Positions)
}

func TestResolver_RequestTimeout_Applied(t *testing.T) {
	done := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
		}
	}))
	defer ts.Close()
	defer close(done)
	cfg := Default()
	cfg.CrrevURL = ts.URL
	cfg.Attempts = 1
	cfg.RequestTimeout = Duration(50 * time.Millisecond)

	start := time.Now()
	_, err := cfg.Resolver().Repos.Repository(context.Background(), "git_hash_0")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}
