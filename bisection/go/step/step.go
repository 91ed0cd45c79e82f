// Package step defines the unit of work that a bisection performs on each
// commit.
//
// A Step can be any behavior used to prepare or run a test: finding a build,
// running a benchmark, reading its results. Every Step produces a Sample, so
// an exit code can be compared with statistical significance just like a
// benchmark score. This allows bisecting flaky failures.
package step

import (
	"context"

	"github.com/pkg/errors"

	"go.skia.org/perfbisect/bisection/go/sample"
)

// ErrNotImplemented is returned by Unimplemented.
var ErrNotImplemented = errors.New("step: not implemented")

// Args are the arguments handed from one Step to the next. The first Step of
// a pipeline receives Args{repository, gitHash}.
type Args []any

// String returns the i-th argument as a string.
func (a Args) String(i int) (string, error) {
	if i < 0 || i >= len(a) {
		return "", errors.Errorf("argument %d requested but only %d were passed", i, len(a))
	}
	s, ok := a[i].(string)
	if !ok {
		return "", errors.Errorf("argument %d is a %T, not a string", i, a[i])
	}
	return s, nil
}

// Result is the outcome of running a Step once on one commit.
type Result struct {
	// Next is passed to the subsequent Step's Run.
	Next Args
	// Fatal stops the remaining Steps for this run of this commit. For
	// example, there is no point running a test if the build failed. A fatal
	// Result still carries a Sample for its own metric.
	Fatal bool
	// Sample holds the measurements taken by this run.
	Sample sample.Sample
}

// Step is one stage of the measurement pipeline.
//
// Steps are shared by every commit of a bisection and used as map keys, so
// implementations should be pointer types: two distinct Step values are two
// distinct steps even if they are configured identically.
//
// Run may be slow and flaky. The bisection never retries it; wrap the Step in
// WithRetry if retrying makes sense.
type Step interface {
	// Run performs the work. A non-nil error means the infrastructure failed
	// and aborts the bisection; a measured failure should be reported in the
	// Result instead.
	Run(ctx context.Context, args Args) (*Result, error)

	// MetricName is a human readable label for what the Step measures. It is
	// only used for presentation.
	MetricName() string
}

// Unimplemented can be embedded in a Step to make missing methods fail loudly.
type Unimplemented struct{}

// Run implements Step.
func (Unimplemented) Run(context.Context, Args) (*Result, error) {
	return nil, ErrNotImplemented
}

// MetricName implements Step. It panics.
func (Unimplemented) MetricName() string {
	panic(ErrNotImplemented)
}

// Func adapts a function to the Step interface.
type Func struct {
	Metric string
	Fn     func(ctx context.Context, args Args) (*Result, error)
}

// NewFunc returns a *Func. Use the pointer: it is the Step's identity.
func NewFunc(metric string, fn func(ctx context.Context, args Args) (*Result, error)) *Func {
	return &Func{Metric: metric, Fn: fn}
}

// Run implements Step.
func (f *Func) Run(ctx context.Context, args Args) (*Result, error) {
	return f.Fn(ctx, args)
}

// MetricName implements Step.
func (f *Func) MetricName() string {
	return f.Metric
}

// Assert that we implement the Step interface.
var _ Step = (*Func)(nil)
var _ Step = Unimplemented{}
