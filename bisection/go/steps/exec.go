package steps

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"go.skia.org/perfbisect/bisection/go/sample"
	"go.skia.org/perfbisect/bisection/go/step"
	"go.skia.org/perfbisect/go/exec"
	"go.skia.org/perfbisect/go/sklog"
)

// ParseMode selects what an Exec Step measures.
type ParseMode string

const (
	// ParseExitCode records the exit code of the command.
	ParseExitCode ParseMode = "exit_code"
	// ParseStdout records every number printed on stdout. A non-zero exit
	// code makes the Result Fatal.
	ParseStdout ParseMode = "stdout"
)

// Environment variables set for an Exec command.
const (
	EnvRepository = "BISECT_REPOSITORY"
	EnvGitHash    = "BISECT_GIT_HASH"
)

// Exec runs a local command on each commit, for example a script that checks
// out and builds the commit and then runs a benchmark.
type Exec struct {
	// Metric is used as the MetricName. Defaults to the command line.
	Metric  string
	Command []string
	Env     []string
	Dir     string
	Parse   ParseMode
	// Stdin, if not empty, is written to the command's standard input.
	Stdin string
	// Timeout, if not zero, kills commands that run longer. A killed command
	// is an error.
	Timeout time.Duration
	// LogOutput copies the command's stdout to the info log.
	LogOutput bool
}

// Run implements step.Step. It expects Args{repository, gitHash} and passes
// them on unchanged. A command that can't be started, or that is killed
// because ctx is done, is an error.
func (e *Exec) Run(ctx context.Context, args step.Args) (*step.Result, error) {
	if len(e.Command) == 0 {
		return nil, errors.New("exec step has no command")
	}
	repository, err := args.String(0)
	if err != nil {
		return nil, err
	}
	gitHash, err := args.String(1)
	if err != nil {
		return nil, err
	}

	var stdout, output bytes.Buffer
	env := append([]string{EnvRepository + "=" + repository, EnvGitHash + "=" + gitHash}, e.Env...)
	cmd := &exec.Command{
		Name:           e.Command[0],
		Args:           e.Command[1:],
		Env:            env,
		InheritPath:    true,
		Dir:            e.Dir,
		LogStdout:      e.LogOutput,
		Stdout:         &stdout,
		CombinedOutput: &output,
		Timeout:        e.Timeout,
	}
	if e.Stdin != "" {
		cmd.Stdin = strings.NewReader(e.Stdin)
	}
	err = exec.Run(ctx, cmd)
	exitCode := 0
	if err != nil && ctx.Err() != nil {
		// The command was killed, its exit code says nothing about the commit.
		return nil, errors.Wrapf(ctx.Err(), "running %s", strings.Join(e.Command, " "))
	}
	if err != nil {
		code, ok := exec.ExitCode(err)
		if !ok {
			return nil, errors.Wrapf(err, "running %s", strings.Join(e.Command, " "))
		}
		exitCode = code
		sklog.Warningf("%s exited with %d on %s:\n%s", strings.Join(e.Command, " "), code, gitHash, output.String())
	}

	if e.Parse == ParseStdout {
		return &step.Result{
			Next:   args,
			Fatal:  exitCode != 0,
			Sample: sample.New(parseFloats(stdout.String())...),
		}, nil
	}
	return &step.Result{Next: args, Sample: sample.New(float64(exitCode))}, nil
}

// parseFloats returns every whitespace separated field of s that is a
// number.
func parseFloats(s string) []float64 {
	var rv []float64
	for _, field := range strings.Fields(s) {
		if f, err := strconv.ParseFloat(field, 64); err == nil {
			rv = append(rv, f)
		}
	}
	return rv
}

// MetricName implements step.Step.
func (e *Exec) MetricName() string {
	if e.Metric != "" {
		return e.Metric
	}
	name := strings.Join(e.Command, " ")
	if e.Parse != ParseStdout {
		name += " (exit code)"
	}
	return name
}

var _ step.Step = (*Exec)(nil)
