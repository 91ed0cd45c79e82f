// Package crrev looks up commit information from crrev.com.
package crrev

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"go.skia.org/perfbisect/go/httputils"
)

const DEFAULT_BASE_URL = "https://cr-rev.appspot.com/_ah/api/crrev/v1/commit"

var (
	// ErrNotFound is returned when no commit has the requested git hash.
	ErrNotFound = errors.New("crrev: commit not found")

	// ErrNoCommitPosition is returned for commits in repositories which do not
	// have commit positions, e.g. catapult.
	ErrNoCommitPosition = errors.New("crrev: repository has no commit positions")
)

// Numbering is one of the numberings crrev knows for a commit.
type Numbering struct {
	Number     json.Number `json:"number"`
	Type       string      `json:"numbering_type"`
	Identifier string      `json:"numbering_identifier"`
}

// CommitInfo is the crrev description of a commit. For example:
//
//	{
//	  "git_sha": "0d30216f14e3f5620de722412d76cbdb7759ec42",
//	  "repo": "chromium/src",
//	  "numberings": [{"number": "347565", "numbering_type": "COMMIT_POSITION", ...}],
//	  "number": "347565",
//	  "project": "chromium",
//	  "redirect_url": "https://chromium.googlesource.com/chromium/src/+/0d30.."
//	}
type CommitInfo struct {
	GitHash     string      `json:"git_sha"`
	Repo        string      `json:"repo"`
	Project     string      `json:"project"`
	Number      json.Number `json:"number"`
	Numberings  []Numbering `json:"numberings"`
	RedirectURL string      `json:"redirect_url"`
}

// Client talks to crrev.
type Client struct {
	BaseURL string
	c       *http.Client
}

// New returns a Client for the public crrev instance. If c is nil, requests
// are tried twice before failing.
func New(c *http.Client) *Client {
	if c == nil {
		c = httputils.DefaultClientConfig().WithMaxAttempts(httputils.DEFAULT_MAX_ATTEMPTS).Client()
	}
	return &Client{
		BaseURL: DEFAULT_BASE_URL,
		c:       c,
	}
}

// CommitInfo returns information about the commit with the given full git
// hash.
func (c *Client) CommitInfo(ctx context.Context, gitHash string) (*CommitInfo, error) {
	url := fmt.Sprintf("%s/%s", c.BaseURL, gitHash)
	resp, err := httputils.GetWithContext(ctx, c.c, url)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to look up %s", gitHash)
	}
	if resp.StatusCode == http.StatusNotFound {
		_ = httputils.ReadAndClose(resp.Body)
		return nil, errors.Wrapf(ErrNotFound, "There's no commit with git hash %s", gitHash)
	}
	if resp.StatusCode != http.StatusOK {
		body := httputils.ReadAndClose(resp.Body)
		return nil, errors.Errorf("Looking up %s got status %q: %s", gitHash, resp.Status, body)
	}
	defer func() { _ = resp.Body.Close() }()
	var info CommitInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.Wrapf(err, "Failed to decode crrev response for %s", gitHash)
	}
	return &info, nil
}

// Repository returns the repository containing gitHash, e.g. "chromium/src",
// without the ".git" suffix.
func (c *Client) Repository(ctx context.Context, gitHash string) (string, error) {
	info, err := c.CommitInfo(ctx, gitHash)
	if err != nil {
		return "", err
	}
	return info.Repo, nil
}

// CommitPosition converts a git hash to a commit position. Only repositories
// with commit positions (e.g. chromium/src) have them.
func (c *Client) CommitPosition(ctx context.Context, gitHash string) (int, error) {
	info, err := c.CommitInfo(ctx, gitHash)
	if err != nil {
		return 0, err
	}
	if info.Number == "" {
		return 0, errors.Wrapf(ErrNoCommitPosition, "%s is in %s", gitHash, info.Repo)
	}
	n, err := strconv.Atoi(info.Number.String())
	if err != nil {
		return 0, errors.Wrapf(err, "Invalid commit position %q for %s", info.Number, gitHash)
	}
	return n, nil
}
