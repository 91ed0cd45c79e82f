// Package bisect finds the commits responsible for a change in a metric.
//
// The endpoints of the range are run until they differ. The range is then
// split at its midpoint and whichever half differs is searched recursively
// until only adjacent commits remain. Every comparison is a Mann-Whitney U
// test, so the Steps may be noisy or flaky.
package bisect

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"go.skia.org/perfbisect/bisection/go/commit"
	"go.skia.org/perfbisect/bisection/go/diff"
	"go.skia.org/perfbisect/bisection/go/step"
	"go.skia.org/perfbisect/go/now"
	"go.skia.org/perfbisect/go/sklog"
)

const (
	phaseEndpoints = "endpoints"
	phaseNarrow    = "narrow"
)

// CommitLister returns the commits between two git hashes, oldest first.
// *commit.Resolver implements it.
type CommitLister interface {
	Commits(ctx context.Context, first, last string, includeFirst bool) ([]*commit.Commit, error)
}

// Run bisects the commits from first to last, both included, and returns one
// Diff per change found, oldest first. Each Diff holds two adjacent commits.
//
// If there are several changes, at least one is found, and possibly more.
//
// Errors are:
//   - *commit.InvalidRangeError if the range has fewer than 2 commits or
//     spans repositories. No Step runs in that case.
//   - *NoChangeError if the search ran out of time. It carries a Diff.
//   - any error returned by a Step, wrapped.
func Run(ctx context.Context, lister CommitLister, first, last string, steps []step.Step, opts Options) ([]*diff.Diff, error) {
	diffs, err := run(ctx, lister, first, last, steps, opts)
	var noChange *NoChangeError
	switch {
	case err == nil:
		opts.Metrics.finished(OutcomeFound)
	case errors.As(err, &noChange):
		opts.Metrics.finished(OutcomeNoChange)
	default:
		opts.Metrics.finished(OutcomeError)
	}
	return diffs, err
}

func run(ctx context.Context, lister CommitLister, first, last string, steps []step.Step, opts Options) ([]*diff.Diff, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}
	if len(steps) == 0 {
		return nil, errors.New("no steps to run")
	}

	commits, err := lister.Commits(ctx, first, last, true)
	if err != nil {
		return nil, err
	}
	if len(commits) < 2 {
		return nil, &commit.InvalidRangeError{
			First:  first,
			Last:   last,
			Reason: fmt.Sprintf("only %d commits in range", len(commits)),
		}
	}
	opts.Metrics.rangeSize(len(commits))
	sklog.Infof("Bisecting on %d commits.", len(commits))

	b := &bisector{steps: steps, opts: opts}
	if err := b.confirm(ctx, commits[0], commits[len(commits)-1]); err != nil {
		return nil, err
	}
	return b.narrow(ctx, commits)
}

type bisector struct {
	steps []step.Step
	opts  Options
}

func (b *bisector) runCommit(ctx context.Context, c *commit.Commit) error {
	b.opts.Metrics.commitRun()
	return c.Run(ctx, b.steps)
}

func (b *bisector) differs(x, y *commit.Commit) bool {
	return len(x.DifferingSteps(y, b.opts.SignificanceLevel)) > 0
}

func (b *bisector) diff(commits ...*commit.Commit) *diff.Diff {
	// Never fails, there are always at least 2 commits.
	d, _ := diff.New(b.opts.SignificanceLevel, commits...)
	return d
}

// confirm runs both endpoints until they differ.
func (b *bisector) confirm(ctx context.Context, first, last *commit.Commit) error {
	start := now.Now(ctx)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.opts.Metrics.round(phaseEndpoints)
		if err := b.runCommit(ctx, first); err != nil {
			return err
		}
		if err := b.runCommit(ctx, last); err != nil {
			return err
		}
		if b.differs(first, last) {
			return nil
		}
		if now.Since(ctx, start) >= b.opts.Timeout {
			return &NoChangeError{
				Message: "No change detected between the first and last commits.",
				Diff:    b.diff(first, last),
			}
		}
	}
}

// narrow searches commits, whose endpoints are known to differ.
func (b *bisector) narrow(ctx context.Context, commits []*commit.Commit) ([]*diff.Diff, error) {
	first, last := commits[0], commits[len(commits)-1]
	if len(commits) == 2 {
		return []*diff.Diff{b.diff(first, last)}, nil
	}

	midIdx := len(commits) / 2
	mid := commits[midIdx]
	sklog.Infof("Testing %s -- %s -- %s.", first, mid, last)

	start := now.Now(ctx)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b.opts.Metrics.round(phaseNarrow)

		target := first
		for _, c := range []*commit.Commit{last, mid} {
			if c.RunCount() < target.RunCount() {
				target = c
			}
		}
		if err := b.runCommit(ctx, target); err != nil {
			return nil, err
		}

		left := b.differs(first, mid)
		right := b.differs(mid, last)
		if left || right {
			return b.descend(ctx, commits[:midIdx+1], commits[midIdx:], left, right)
		}
		if now.Since(ctx, start) >= b.opts.Timeout {
			return nil, &NoChangeError{
				Message: fmt.Sprintf("%s and %s are different from each other, but %s is the same as both %s and %s.", first, last, mid, first, last),
				Diff:    b.diff(first, mid, last),
			}
		}
	}
}

// descend narrows the halves that differ. Results of the left half come
// first.
func (b *bisector) descend(ctx context.Context, leftCommits, rightCommits []*commit.Commit, left, right bool) ([]*diff.Diff, error) {
	if !(left && right) || !b.opts.Parallel {
		var rv []*diff.Diff
		if left {
			d, err := b.narrow(ctx, leftCommits)
			if err != nil {
				return nil, err
			}
			rv = append(rv, d...)
		}
		if right {
			d, err := b.narrow(ctx, rightCommits)
			if err != nil {
				return nil, err
			}
			rv = append(rv, d...)
		}
		return rv, nil
	}

	var leftDiffs, rightDiffs []*diff.Diff
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leftDiffs, err = b.narrow(gCtx, leftCommits)
		return err
	})
	g.Go(func() error {
		var err error
		rightDiffs, err = b.narrow(gCtx, rightCommits)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return append(leftDiffs, rightDiffs...), nil
}
