// Package diff records which Steps differed across a set of Commits, along
// with the raw values needed to present them.
package diff

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"go.skia.org/perfbisect/bisection/go/commit"
	"go.skia.org/perfbisect/bisection/go/sample"
	"go.skia.org/perfbisect/bisection/go/step"
)

// Diff compares two or more Commits. If any pair of Commits has differing
// Steps, only those Steps are of interest. Otherwise every Step that ran on
// any of the Commits is.
//
// The Steps of interest are computed once, when the Diff is created.
type Diff struct {
	commits []*commit.Commit
	steps   []step.Step
}

// New returns a Diff of commits, using alpha as the significance level.
// At least two commits are required.
func New(alpha float64, commits ...*commit.Commit) (*Diff, error) {
	if len(commits) < 2 {
		return nil, errors.Errorf("a Diff needs at least 2 commits, got %d", len(commits))
	}

	var steps []step.Step
	seen := map[step.Step]bool{}
	add := func(s step.Step) {
		if !seen[s] {
			seen[s] = true
			steps = append(steps, s)
		}
	}
	for i := range commits {
		for j := i + 1; j < len(commits); j++ {
			for _, s := range commits[i].DifferingSteps(commits[j], alpha) {
				add(s)
			}
		}
	}
	if len(steps) == 0 {
		for _, c := range commits {
			for _, s := range c.Steps() {
				add(s)
			}
		}
	}

	return &Diff{
		commits: append([]*commit.Commit(nil), commits...),
		steps:   steps,
	}, nil
}

// Commits returns the commits of the Diff, in the order they were given.
func (d *Diff) Commits() []*commit.Commit {
	return append([]*commit.Commit(nil), d.commits...)
}

// Steps returns the Steps of interest.
func (d *Diff) Steps() []step.Step {
	return append([]step.Step(nil), d.steps...)
}

// Values returns the raw values recorded for s on every commit, in commit
// order. The entry is nil for a commit on which s never ran.
func (d *Diff) Values(s step.Step) [][]float64 {
	rv := make([][]float64, len(d.commits))
	for i, c := range d.commits {
		if smp, ok := c.Sample(s); ok {
			rv[i] = smp.Values()
		}
	}
	return rv
}

// CommitReport describes one commit of a Report.
type CommitReport struct {
	Repository string `json:"repository"`
	GitHash    string `json:"git_hash"`
	Position   int    `json:"position,omitempty"`
	Author     string `json:"author"`
	Subject    string `json:"subject"`
	RunCount   int    `json:"run_count"`
}

// StepReport describes one Step of interest of a Report. Values and Summaries
// are indexed like Report.Commits; a commit on which the step never ran has a
// nil entry.
type StepReport struct {
	Metric    string            `json:"metric"`
	Values    [][]float64       `json:"values"`
	Summaries []*sample.Summary `json:"summaries"`
}

// Report is a serializable snapshot of a Diff.
type Report struct {
	Commits []CommitReport `json:"commits"`
	Steps   []StepReport   `json:"steps"`
}

// Report returns a snapshot of the Diff suitable for encoding as JSON.
func (d *Diff) Report(ctx context.Context) *Report {
	rv := &Report{}
	for _, c := range d.commits {
		cr := CommitReport{
			Repository: c.Repository(),
			GitHash:    c.GitHash(),
			Author:     c.Author(),
			Subject:    c.Subject(),
			RunCount:   c.RunCount(),
		}
		if pos, err := c.CommitPosition(ctx); err == nil {
			cr.Position = pos
		}
		rv.Commits = append(rv.Commits, cr)
	}
	for _, s := range d.steps {
		sr := StepReport{
			Metric:    s.MetricName(),
			Values:    d.Values(s),
			Summaries: make([]*sample.Summary, len(d.commits)),
		}
		for i, c := range d.commits {
			if smp, ok := c.Sample(s); ok {
				summary := smp.Summary()
				sr.Summaries[i] = &summary
			}
		}
		rv.Steps = append(rv.Steps, sr)
	}
	return rv
}

// WriteTable writes a table with one row per Step of interest and commit.
func (d *Diff) WriteTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Commit", "N", "Median", "P5", "P95"})
	table.SetAutoMergeCells(true)
	table.SetRowLine(true)
	for _, s := range d.steps {
		for _, c := range d.commits {
			smp, ok := c.Sample(s)
			summary := smp.Summary()
			if !ok || summary.N == 0 {
				table.Append([]string{s.MetricName(), c.String(), "0", "-", "-", "-"})
				continue
			}
			table.Append([]string{
				s.MetricName(),
				c.String(),
				strconv.Itoa(summary.N),
				formatFloat(summary.Median),
				formatFloat(summary.Percentiles[1]),
				formatFloat(summary.Percentiles[5]),
			})
		}
	}
	table.Render()
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.4g", f)
}
