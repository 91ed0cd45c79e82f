package commit

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"go.skia.org/perfbisect/bisection/go/crrev"
	"go.skia.org/perfbisect/bisection/go/gitiles"
	"go.skia.org/perfbisect/go/sklog"
)

// RepositoryLookup returns the repository that a git hash belongs to.
type RepositoryLookup interface {
	Repository(ctx context.Context, gitHash string) (string, error)
}

// LogFetcher reads commits from a source browsing service.
type LogFetcher interface {
	// CommitRange returns the commits after first up to and including last,
	// newest first.
	CommitRange(ctx context.Context, repository, first, last string) ([]*gitiles.Commit, error)

	// CommitInfo returns a single commit.
	CommitInfo(ctx context.Context, repository, gitHash string) (*gitiles.Commit, error)
}

// InvalidRangeError is returned when two git hashes do not describe a range
// that can be bisected.
type InvalidRangeError struct {
	First  string
	Last   string
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range %s..%s: %s", e.First, e.Last, e.Reason)
}

// Resolver builds lists of Commits.
type Resolver struct {
	Repos     RepositoryLookup
	Log       LogFetcher
	Positions PositionLookup
}

// repository looks up the repository of gitHash, one of the endpoints of
// first..last. An unknown git hash makes the range invalid.
func (r *Resolver) repository(ctx context.Context, first, last, gitHash string) (string, error) {
	repo, err := r.Repos.Repository(ctx, gitHash)
	if errors.Is(err, crrev.ErrNotFound) {
		return "", &InvalidRangeError{
			First:  first,
			Last:   last,
			Reason: fmt.Sprintf("no commit with git hash %s", gitHash),
		}
	}
	if err != nil {
		return "", errors.Wrapf(err, "looking up repository of %s", gitHash)
	}
	return repo, nil
}

// Commits returns the Commits between first and last, oldest first. last is
// always included and first only if includeFirst is true.
//
// Both git hashes must be known and in the same repository, otherwise an
// *InvalidRangeError is returned without fetching the log.
func (r *Resolver) Commits(ctx context.Context, first, last string, includeFirst bool) ([]*Commit, error) {
	firstRepo, err := r.repository(ctx, first, last, first)
	if err != nil {
		return nil, err
	}
	lastRepo, err := r.repository(ctx, first, last, last)
	if err != nil {
		return nil, err
	}
	if firstRepo != lastRepo {
		return nil, &InvalidRangeError{
			First:  first,
			Last:   last,
			Reason: fmt.Sprintf("bisecting across repositories: %s/%s and %s/%s", firstRepo, first, lastRepo, last),
		}
	}

	log, err := r.Log.CommitRange(ctx, firstRepo, first, last)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching log %s..%s", first, last)
	}
	if includeFirst {
		info, err := r.Log.CommitInfo(ctx, firstRepo, first)
		if err != nil {
			return nil, errors.Wrapf(err, "fetching commit %s", first)
		}
		log = append(log, info)
	}

	rv := make([]*Commit, 0, len(log))
	seen := make(map[string]bool, len(log))
	for i := len(log) - 1; i >= 0; i-- {
		gc := log[i]
		if seen[gc.Commit] {
			continue
		}
		seen[gc.Commit] = true
		rv = append(rv, NewCommit(firstRepo, gc.Commit, gc.AuthorEmail(), gc.Message, r.Positions))
	}
	sklog.Debugf("Resolved %d commits in %s between %s and %s.", len(rv), firstRepo, first, last)
	return rv, nil
}
