// Package gitiles fetches commit information from a Gitiles server.
package gitiles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"go.skia.org/perfbisect/go/httputils"
)

const (
	DEFAULT_BASE_URL = "https://chromium.googlesource.com"

	COMMIT_URL = "%s/%s/+/%s?format=JSON"
	LOG_URL    = "%s/%s/+log/%s..%s?format=JSON"

	// Gitiles prefixes JSON responses to defeat XSSI.
	jsonPadding = ")]}'\n"
)

type Author struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Time  string `json:"time"`
}

type TreeDiff struct {
	Type    string `json:"type"`
	OldID   string `json:"old_id"`
	OldMode int    `json:"old_mode"`
	OldPath string `json:"old_path"`
	NewID   string `json:"new_id"`
	NewMode int    `json:"new_mode"`
	NewPath string `json:"new_path"`
}

type Commit struct {
	Commit    string      `json:"commit"`
	Tree      string      `json:"tree"`
	Parents   []string    `json:"parents"`
	Author    *Author     `json:"author"`
	Committer *Author     `json:"committer"`
	Message   string      `json:"message"`
	TreeDiff  []*TreeDiff `json:"tree_diff,omitempty"`
}

// AuthorEmail returns the author's email, or "" if the author is unknown.
func (c *Commit) AuthorEmail() string {
	if c.Author == nil {
		return ""
	}
	return c.Author.Email
}

// Log is one page of a log response.
type Log struct {
	Log  []*Commit `json:"log"`
	Next string    `json:"next,omitempty"`
}

// Client is used for reading commit information from one Gitiles host.
type Client struct {
	BaseURL string
	c       *http.Client
}

// New returns a Client for chromium.googlesource.com. If c is nil, requests
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

// CommitInfo returns the author, message, file changes and other information
// about one commit.
func (c *Client) CommitInfo(ctx context.Context, repository, gitHash string) (*Commit, error) {
	var rv Commit
	if err := c.get(ctx, fmt.Sprintf(COMMIT_URL, c.BaseURL, repository, gitHash), &rv); err != nil {
		return nil, errors.Wrapf(err, "Failed to get commit %s in %s", gitHash, repository)
	}
	return &rv, nil
}

// CommitRange returns the commits after first up to and including last, newest
// first. Paginated responses are followed until the server stops returning a
// continuation.
func (c *Client) CommitRange(ctx context.Context, repository, first, last string) ([]*Commit, error) {
	var rv []*Commit
	for last != "" {
		var page Log
		if err := c.get(ctx, fmt.Sprintf(LOG_URL, c.BaseURL, repository, first, last), &page); err != nil {
			return nil, errors.Wrapf(err, "Failed to get log %s..%s in %s", first, last, repository)
		}
		rv = append(rv, page.Log...)
		last = page.Next
	}
	return rv, nil
}

func (c *Client) get(ctx context.Context, url string, dst interface{}) error {
	resp, err := httputils.GetWithContext(ctx, c.c, url)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("Request got status %q: %s", resp.Status, httputils.ReadAndClose(resp.Body))
	}
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "Failed to read response")
	}
	b = bytes.TrimPrefix(b, []byte(jsonPadding))
	if err := json.Unmarshal(b, dst); err != nil {
		return errors.Wrap(err, "Failed to decode response")
	}
	return nil
}
