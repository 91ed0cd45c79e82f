package step

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"go.skia.org/perfbisect/go/sklog"
)

const retryInterval = time.Second

// retrying re-runs a Step whose Run returns an error.
type retrying struct {
	Step
	attempts int
	interval time.Duration
}

// WithRetry returns a Step that runs s up to attempts times in total until
// Run succeeds. Only errors are retried; a Fatal Result is a measurement and
// is returned as-is. Cancellation of ctx is never retried.
func WithRetry(s Step, attempts int) Step {
	if attempts < 1 {
		attempts = 1
	}
	return &retrying{Step: s, attempts: attempts, interval: retryInterval}
}

func (r *retrying) Run(ctx context.Context, args Args) (*Result, error) {
	var res *Result
	op := func() error {
		var err error
		res, err = r.Step.Run(ctx, args)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(r.interval), uint64(r.attempts-1)), ctx)
	notify := func(err error, wait time.Duration) {
		sklog.Warningf("Step %q failed, retrying in %s: %s", r.Step.MetricName(), wait, err)
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, err
	}
	return res, nil
}
