// Package commit holds a single point of the bisection search space and the
// resolver that turns two endpoints into the ordered list of points between
// them.
package commit

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"go.skia.org/perfbisect/bisection/go/crrev"
	"go.skia.org/perfbisect/bisection/go/sample"
	"go.skia.org/perfbisect/bisection/go/step"
	"go.skia.org/perfbisect/go/sklog"
)

// shortHashLength is how much of the git hash is shown when a commit has no
// position.
const shortHashLength = 7

// PositionLookup returns the commit position of a git hash.
type PositionLookup interface {
	CommitPosition(ctx context.Context, gitHash string) (int, error)
}

// Commit is one commit of the bisected range along with the Samples that
// every Step produced on it.
//
// A Commit is safe for concurrent use. Concurrent calls to Run are
// serialized.
type Commit struct {
	repository string
	gitHash    string
	author     string
	message    string
	positions  PositionLookup

	// runMu serializes Run.
	runMu sync.Mutex

	// mu protects the fields below.
	mu       sync.Mutex
	results  map[step.Step]sample.Sample
	order    []step.Step
	runCount int

	// positionMu protects the cached commit position.
	positionMu  sync.Mutex
	positionSet bool
	position    int
	positionErr error
}

// NewCommit returns a Commit that has not been run yet. positions may be nil,
// in which case the commit has no position.
func NewCommit(repository, gitHash, author, message string, positions PositionLookup) *Commit {
	return &Commit{
		repository: repository,
		gitHash:    gitHash,
		author:     author,
		message:    message,
		positions:  positions,
		results:    map[step.Step]sample.Sample{},
	}
}

// Run runs steps in order on this commit. The first Step receives the
// repository and git hash, every following Step receives the Next args of
// the previous one. Each Step's Sample is merged into what that Step produced
// in earlier runs. A Fatal result skips the remaining steps.
//
// An error from a Step is returned as is, wrapped with the commit and step.
func (c *Commit) Run(ctx context.Context, steps []step.Step) error {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	c.mu.Lock()
	c.runCount++
	iteration := c.runCount
	c.mu.Unlock()
	sklog.Debugf("Running commit %s, iteration %d.", c, iteration)

	args := step.Args{c.repository, c.gitHash}
	for i, s := range steps {
		res, err := s.Run(ctx, args)
		if err != nil {
			return errors.Wrapf(err, "step %d failed on %s", i, c)
		}
		if res == nil {
			return errors.Errorf("step %d returned no result on %s", i, c)
		}
		c.record(s, res.Sample)
		if res.Fatal {
			sklog.Debugf("Step %d (%s) was fatal on %s, skipping %d remaining steps.", i, s.MetricName(), c, len(steps)-i-1)
			break
		}
		args = res.Next
	}
	return nil
}

func (c *Commit) record(s step.Step, smp sample.Sample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, ok := c.results[s]
	if !ok {
		c.order = append(c.order, s)
		c.results[s] = smp
		return
	}
	c.results[s] = prev.Merge(smp)
}

// snapshot returns a copy of the results and their order.
func (c *Commit) snapshot() (map[step.Step]sample.Sample, []step.Step) {
	c.mu.Lock()
	defer c.mu.Unlock()
	results := make(map[step.Step]sample.Sample, len(c.results))
	for s, smp := range c.results {
		results[s] = smp
	}
	order := make([]step.Step, len(c.order))
	copy(order, c.order)
	return results, order
}

// DifferingSteps returns the Steps that ran on both commits and whose Samples
// differ at significance level alpha. Steps that ran on only one of the
// commits are not included. The Steps are in the order they first ran on c.
func (c *Commit) DifferingSteps(other *Commit, alpha float64) []step.Step {
	mine, order := c.snapshot()
	theirs, _ := other.snapshot()
	var rv []step.Step
	for _, s := range order {
		o, ok := theirs[s]
		if !ok {
			continue
		}
		if mine[s].DiffersFrom(o, alpha) {
			rv = append(rv, s)
		}
	}
	return rv
}

// Results returns a copy of the Samples recorded so far, by Step.
func (c *Commit) Results() map[step.Step]sample.Sample {
	rv, _ := c.snapshot()
	return rv
}

// Sample returns the Sample recorded for s, if s ever ran on this commit.
func (c *Commit) Sample(s step.Step) (sample.Sample, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	smp, ok := c.results[s]
	return smp, ok
}

// Steps returns the Steps that ran on this commit in the order they first
// ran.
func (c *Commit) Steps() []step.Step {
	_, rv := c.snapshot()
	return rv
}

// RunCount is the number of times Run was called.
func (c *Commit) RunCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runCount
}

func (c *Commit) Repository() string { return c.repository }

func (c *Commit) GitHash() string { return c.gitHash }

func (c *Commit) Author() string { return c.author }

func (c *Commit) Message() string { return c.message }

// Subject is the first line of the commit message.
func (c *Commit) Subject() string {
	subject, _, _ := strings.Cut(c.message, "\n")
	return subject
}

// CommitPosition returns the commit position, looking it up the first time.
// A repository without commit positions gives an error wrapping
// crrev.ErrNoCommitPosition, an unknown git hash one wrapping
// crrev.ErrNotFound. Both answers are cached too.
func (c *Commit) CommitPosition(ctx context.Context) (int, error) {
	c.positionMu.Lock()
	defer c.positionMu.Unlock()
	if c.positionSet {
		return c.position, c.positionErr
	}
	if c.positions == nil {
		return 0, errors.Wrapf(crrev.ErrNoCommitPosition, "no position lookup for %s", c.gitHash)
	}
	pos, err := c.positions.CommitPosition(ctx, c.gitHash)
	if err != nil && !errors.Is(err, crrev.ErrNoCommitPosition) && !errors.Is(err, crrev.ErrNotFound) {
		return 0, err
	}
	c.positionSet = true
	c.position, c.positionErr = pos, err
	return pos, err
}

// String returns "r<position>", or a short git hash if the position can't be
// found.
func (c *Commit) String() string {
	pos, err := c.CommitPosition(context.Background())
	if err == nil {
		return fmt.Sprintf("r%d", pos)
	}
	if len(c.gitHash) > shortHashLength {
		return c.gitHash[:shortHashLength]
	}
	return c.gitHash
}
