package diff

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.skia.org/perfbisect/bisection/go/commit"
	"go.skia.org/perfbisect/bisection/go/sample"
	"go.skia.org/perfbisect/bisection/go/step"
)

// valuesStep returns the values configured for the git hash it runs on.
func valuesStep(metric string, byHash map[string][]float64) *step.Func {
	return step.NewFunc(metric, func(ctx context.Context, args step.Args) (*step.Result, error) {
		hash, err := args.String(1)
		if err != nil {
			return nil, err
		}
		return &step.Result{Next: args, Sample: sample.New(byHash[hash]...)}, nil
	})
}

func newCommit(t *testing.T, hash string, steps ...step.Step) *commit.Commit {
	c := commit.NewCommit("repository", hash, "author@chromium.org", "Subject "+hash+".\n\nBody.", nil)
	require.NoError(t, c.Run(context.Background(), steps))
	return c
}

var (
	zeros = []float64{0, 0, 0, 0, 0, 0}
	ones  = []float64{1, 1, 1, 1, 1, 1}
)

func TestNew_FewerThanTwoCommits_Error(t *testing.T) {
	_, err := New(sample.DefaultSignificanceLevel)
	require.Error(t, err)

	_, err = New(sample.DefaultSignificanceLevel, newCommit(t, "a"))
	require.Error(t, err)
}

func TestNew_TwoCommits_Succeeds(t *testing.T) {
	a, b := newCommit(t, "a"), newCommit(t, "b")
	d, err := New(sample.DefaultSignificanceLevel, a, b)
	require.NoError(t, err)
	assert.Equal(t, []*commit.Commit{a, b}, d.Commits())
	assert.Empty(t, d.Steps())
}

func TestNew_DifferingSteps_OnlyThose(t *testing.T) {
	differs := valuesStep("differs", map[string][]float64{"a": zeros, "b": ones})
	same := valuesStep("same", map[string][]float64{"a": ones, "b": ones})
	steps := []step.Step{differs, same}

	d, err := New(sample.DefaultSignificanceLevel, newCommit(t, "a", steps...), newCommit(t, "b", steps...))
	require.NoError(t, err)
	assert.Equal(t, []step.Step{differs}, d.Steps())
}

func TestNew_NonAdjacentPairDiffers_Included(t *testing.T) {
	s := valuesStep("metric", map[string][]float64{
		"a": zeros,
		"b": {0, 0, 0, 1, 1, 1},
		"c": ones,
	})

	d, err := New(sample.DefaultSignificanceLevel, newCommit(t, "a", s), newCommit(t, "b", s), newCommit(t, "c", s))
	require.NoError(t, err)
	assert.Equal(t, []step.Step{s}, d.Steps())
}

func TestNew_NoDifferingSteps_AllStepsThatRan(t *testing.T) {
	s1 := valuesStep("one", map[string][]float64{"a": ones, "b": ones})
	s2 := valuesStep("two", map[string][]float64{"b": ones})

	d, err := New(sample.DefaultSignificanceLevel, newCommit(t, "a", s1), newCommit(t, "b", s1, s2))
	require.NoError(t, err)
	assert.Equal(t, []step.Step{s1, s2}, d.Steps())
}

func TestValues_NilWhereStepDidNotRun(t *testing.T) {
	s1 := valuesStep("one", map[string][]float64{"a": {1, 2}, "b": {3}})
	s2 := valuesStep("two", map[string][]float64{"b": {4}})

	d, err := New(sample.DefaultSignificanceLevel, newCommit(t, "a", s1), newCommit(t, "b", s1, s2))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {3}}, d.Values(s1))
	assert.Equal(t, [][]float64{nil, {4}}, d.Values(s2))
}

func TestReport_EncodesCommitsAndSteps(t *testing.T) {
	s := valuesStep("score", map[string][]float64{"a": zeros, "b": ones})

	d, err := New(sample.DefaultSignificanceLevel, newCommit(t, "a", s), newCommit(t, "b", s))
	require.NoError(t, err)
	r := d.Report(context.Background())

	require.Len(t, r.Commits, 2)
	assert.Equal(t, CommitReport{
		Repository: "repository",
		GitHash:    "a",
		Author:     "author@chromium.org",
		Subject:    "Subject a.",
		RunCount:   1,
	}, r.Commits[0])
	require.Len(t, r.Steps, 1)
	assert.Equal(t, "score", r.Steps[0].Metric)
	assert.Equal(t, [][]float64{zeros, ones}, r.Steps[0].Values)
	assert.Equal(t, 6, r.Steps[0].Summaries[1].N)
	assert.Equal(t, 1.0, r.Steps[0].Summaries[1].Median)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"git_hash":"a"`)
	assert.Contains(t, string(b), `"metric":"score"`)
}

func TestWriteTable_OneRowPerStepAndCommit(t *testing.T) {
	s := valuesStep("score", map[string][]float64{"abcdefghij": zeros, "b": ones})

	d, err := New(sample.DefaultSignificanceLevel, newCommit(t, "abcdefghij", s), newCommit(t, "b", s))
	require.NoError(t, err)
	var buf bytes.Buffer
	d.WriteTable(&buf)

	out := buf.String()
	assert.Contains(t, out, "METRIC")
	assert.Contains(t, out, "score")
	assert.Contains(t, out, "abcdefg")
	assert.NotContains(t, out, "abcdefgh")
}
