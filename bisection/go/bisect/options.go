package bisect

import (
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"go.skia.org/perfbisect/bisection/go/sample"
)

// DefaultTimeout bounds how long the endpoints of a range, or the three
// commits of a narrowing step, are re-run before giving up.
const DefaultTimeout = 2 * time.Hour

// Options control a bisection.
type Options struct {
	// SignificanceLevel is the p-value at or below which two Samples differ.
	SignificanceLevel float64

	// Timeout is applied independently to confirming the endpoints differ
	// and to every narrowing step. At least one round always runs, so a zero
	// Timeout runs every search node exactly once.
	Timeout time.Duration

	// Parallel bisects both halves of a range concurrently when both differ.
	Parallel bool

	// Metrics is optional.
	Metrics *Metrics
}

// DefaultOptions returns the Options used in production.
func DefaultOptions() Options {
	return Options{
		SignificanceLevel: sample.DefaultSignificanceLevel,
		Timeout:           DefaultTimeout,
	}
}

// Validate returns every problem with the Options.
func (o Options) Validate() error {
	var result error
	if o.SignificanceLevel <= 0 || o.SignificanceLevel >= 1 {
		result = multierror.Append(result, errors.Errorf("significance level must be in (0, 1), got %g", o.SignificanceLevel))
	}
	if o.Timeout < 0 {
		result = multierror.Append(result, errors.Errorf("timeout must not be negative, got %s", o.Timeout))
	}
	return result
}
