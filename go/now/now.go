// Package now provides a function to return the current time that is
// also easily overridden for testing.
package now

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type contextKeyType string

// ContextKey is used by tests to make the time deterministic.
//
// A time.Time stored under ContextKey is returned as-is by Now:
//
//	ctx = context.WithValue(ctx, now.ContextKey, time.Unix(0, 12).UTC())
//
// A NowProvider is evaluated on every call instead.
const ContextKey contextKeyType = "overwriteNow"

// NowProvider is the type of function that can also be passed as a context
// value. It must be threadsafe if the context is shared across goroutines.
type NowProvider func() time.Time

// Now returns the current time or the time from the context.
func Now(ctx context.Context) time.Time {
	if ts := ctx.Value(ContextKey); ts != nil {
		switch v := ts.(type) {
		case NowProvider:
			return v()
		case time.Time:
			return v
		default:
			panic(fmt.Sprintf("Unknown value for ContextKey: %v", v))
		}
	}
	return time.Now()
}

// Since returns the time elapsed since t, as seen by Now(ctx).
func Since(ctx context.Context, t time.Time) time.Duration {
	return Now(ctx).Sub(t)
}

// TimeTravelCtx is a context whose apparent time only moves when the test
// says so:
//
//	ctx := now.TimeTravelingContext(start)
//	runSomething(ctx)
//	ctx.SetTime(start.Add(3 * time.Hour))
type TimeTravelCtx struct {
	context.Context

	mutex sync.RWMutex
	ts    time.Time
	step  time.Duration
}

// TimeTravelingContext returns a *TimeTravelCtx, using the given time and the
// background context.
func TimeTravelingContext(start time.Time) *TimeTravelCtx {
	t := &TimeTravelCtx{
		ts: start,
	}
	t.Context = context.WithValue(context.Background(), ContextKey, NowProvider(t.now))
	return t
}

// TickingContext is like TimeTravelingContext, except that every call to Now
// advances the apparent time by step after reading it. Loops bounded by a
// wall-clock timeout therefore run a predictable number of times.
func TickingContext(start time.Time, step time.Duration) *TimeTravelCtx {
	t := TimeTravelingContext(start)
	t.step = step
	return t
}

func (t *TimeTravelCtx) now() time.Time {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	ts := t.ts
	t.ts = t.ts.Add(t.step)
	return ts
}

// SetTime updates the time returned by the embedded context's NowProvider.
func (t *TimeTravelCtx) SetTime(newTime time.Time) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.ts = newTime
}

// WithContext replaces the embedded context with one derived from ctx.
func (t *TimeTravelCtx) WithContext(ctx context.Context) *TimeTravelCtx {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.Context = context.WithValue(ctx, ContextKey, NowProvider(t.now))
	return t
}
