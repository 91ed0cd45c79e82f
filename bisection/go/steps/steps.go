// Package steps contains the Steps used to bisect Chrome performance tests:
// find the build of a commit, run a test on it, read the test's results.
//
// How builds are found, tests are scheduled and results are read is left to
// the IsolateFinder, TestRunner and ResultsReader implementations.
package steps

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"go.skia.org/perfbisect/bisection/go/sample"
	"go.skia.org/perfbisect/bisection/go/step"
)

// ErrNoBuild is returned by an IsolateFinder when a commit has no build.
var ErrNoBuild = errors.New("no build for commit")

// IsolateFinder finds the isolated build of a commit.
type IsolateFinder interface {
	// FindIsolated returns the isolated hash of the build of gitHash. It
	// returns an error wrapping ErrNoBuild if there is no such build.
	FindIsolated(ctx context.Context, configuration, repository, gitHash string) (string, error)
}

// TestRequest describes one test run.
type TestRequest struct {
	// Name identifies the run, "<isolated hash>/<suite>".
	Name          string
	Configuration string
	IsolatedHash  string
	ExtraArgs     []string
}

// TestResult is the outcome of a test run.
type TestResult struct {
	TaskID   string
	ExitCode int
	// HasOutput is false if the run did not produce any output to read.
	HasOutput bool
}

// TestRunner runs a test and waits for it to finish.
type TestRunner interface {
	RunTest(ctx context.Context, req TestRequest) (*TestResult, error)
}

// ResultsReader reads the values of a metric from the output of a test run.
type ResultsReader interface {
	ReadValues(ctx context.Context, taskID, metric string) ([]float64, error)
}

// FindIsolated finds the build of a commit. Its Sample is 0 when the build
// exists, 1 otherwise, in which case the Result is Fatal.
type FindIsolated struct {
	Finder        IsolateFinder
	Configuration string
}

// Run implements step.Step. It expects Args{repository, gitHash} and
// passes on Args{isolatedHash}.
func (f *FindIsolated) Run(ctx context.Context, args step.Args) (*step.Result, error) {
	repository, err := args.String(0)
	if err != nil {
		return nil, err
	}
	gitHash, err := args.String(1)
	if err != nil {
		return nil, err
	}
	isolatedHash, err := f.Finder.FindIsolated(ctx, f.Configuration, repository, gitHash)
	if errors.Is(err, ErrNoBuild) {
		return &step.Result{Fatal: true, Sample: sample.New(1)}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "finding isolate of %s", gitHash)
	}
	return &step.Result{Next: step.Args{isolatedHash}, Sample: sample.New(0)}, nil
}

// MetricName implements step.Step.
func (f *FindIsolated) MetricName() string {
	return "Find isolated (exit code)"
}

// RunTest runs a test suite, or a single test of it, on an isolated build.
// Its Sample is the exit code of the run.
type RunTest struct {
	Runner        TestRunner
	Configuration string
	Suite         string
	// Test, if given, restricts the run to one story of the suite.
	Test string
}

// Run implements step.Step. It expects Args{isolatedHash} and passes on
// Args{taskID}. The Result is Fatal if the run produced no output.
func (r *RunTest) Run(ctx context.Context, args step.Args) (*step.Result, error) {
	isolatedHash, err := args.String(0)
	if err != nil {
		return nil, err
	}
	res, err := r.Runner.RunTest(ctx, TestRequest{
		Name:          fmt.Sprintf("%s/%s", isolatedHash, r.Suite),
		Configuration: r.Configuration,
		IsolatedHash:  isolatedHash,
		ExtraArgs:     r.ExtraArgs(),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "running %s on %s", r.Suite, isolatedHash)
	}
	return &step.Result{
		Next:   step.Args{res.TaskID},
		Fatal:  !res.HasOutput,
		Sample: sample.New(float64(res.ExitCode)),
	}, nil
}

// ExtraArgs are the arguments passed to the test.
func (r *RunTest) ExtraArgs() []string {
	rv := []string{r.Suite}
	if r.Test != "" {
		rv = append(rv, "--story-filter="+r.Test)
	}
	return append(rv,
		"--browser=reference",
		"--pageset-repeat=5",
		"--isolated-script-test-output=${ISOLATED_OUTDIR}/output.json",
	)
}

// MetricName implements step.Step.
func (r *RunTest) MetricName() string {
	return r.Suite + " (exit code)"
}

// ReadTestResults reads the values of Metric from a test run. The Result is
// Fatal if the run has no values for it.
type ReadTestResults struct {
	Reader ResultsReader
	Metric string
}

// Run implements step.Step. It expects Args{taskID}.
func (r *ReadTestResults) Run(ctx context.Context, args step.Args) (*step.Result, error) {
	taskID, err := args.String(0)
	if err != nil {
		return nil, err
	}
	values, err := r.Reader.ReadValues(ctx, taskID, r.Metric)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s of task %s", r.Metric, taskID)
	}
	return &step.Result{
		Next:   args,
		Fatal:  len(values) == 0,
		Sample: sample.New(values...),
	}, nil
}

// MetricName implements step.Step.
func (r *ReadTestResults) MetricName() string {
	return r.Metric
}

// Assert that we implement the Step interface.
var _ step.Step = (*FindIsolated)(nil)
var _ step.Step = (*RunTest)(nil)
var _ step.Step = (*ReadTestResults)(nil)
