// Package sample holds the measurements taken on one commit for one step, and
// decides whether two sets of measurements likely come from different
// populations.
package sample

import (
	"fmt"

	"github.com/aclements/go-moremath/stats"
	"github.com/pkg/errors"

	"go.skia.org/perfbisect/go/sklog"
)

// DefaultSignificanceLevel is the p-value at or below which two Samples are
// declared different.
//
// In testing, a significance level of 0.05 was too high: there was a high rate
// of incorrect bisects. Napkin math: if each bisect compares about 6 commits,
// and we expect a false positive in 1% of null comparisons, then about 6% of
// bisects are incorrect.
const DefaultSignificanceLevel = 0.01

// Sample is a statistical sample taken from one population, e.g. the exit
// codes of every run of a test on one commit. It is immutable.
//
// Samples have no notion of equality; the slice field keeps == from compiling.
// Use DiffersFrom.
type Sample struct {
	values []float64
}

// New returns a Sample holding a copy of values.
func New(values ...float64) Sample {
	return Sample{values: append([]float64(nil), values...)}
}

// FromBools returns a Sample where false is recorded as 0 and true as 1.
func FromBools(values ...bool) Sample {
	s := Sample{values: make([]float64, len(values))}
	for i, v := range values {
		if v {
			s.values[i] = 1
		}
	}
	return s
}

// Merge returns a new Sample with the values of s followed by the values of
// other. Neither input is modified.
//
// It is incorrect to merge Samples that came from different populations.
func (s Sample) Merge(other Sample) Sample {
	rv := make([]float64, 0, len(s.values)+len(other.values))
	rv = append(rv, s.values...)
	rv = append(rv, other.values...)
	return Sample{values: rv}
}

// Values returns a copy of the observations, in insertion order.
func (s Sample) Values() []float64 {
	return append([]float64(nil), s.values...)
}

// Len returns the number of observations.
func (s Sample) Len() int {
	return len(s.values)
}

func (s Sample) String() string {
	return fmt.Sprintf("Sample(%v)", s.values)
}

// DiffersFrom returns true if the Samples likely came from different
// populations.
//
// It runs a two-sided Mann-Whitney U test of the null hypothesis that both
// samples came from the same distribution, and returns false whenever there
// is not enough confidence to reject it, including when either sample is
// empty or when every value in both samples is identical.
func (s Sample) DiffersFrom(other Sample, alpha float64) bool {
	if len(s.values) == 0 || len(other.values) == 0 {
		return false
	}
	if !hasVariance(s.values, other.values) {
		return false
	}
	p, err := PValue(s, other)
	if err != nil {
		sklog.Warningf("Unable to compare %s and %s: %s", s, other, err)
		return false
	}
	sklog.Debugf("n1: %d, n2: %d, p-value: %f", s.Len(), other.Len(), p)
	return p <= alpha
}

// PValue returns the two-sided Mann-Whitney U p-value for a and b.
//
// Small samples use the exact U distribution, ties included; large ones use
// the normal approximation.
func PValue(a, b Sample) (float64, error) {
	res, err := stats.MannWhitneyUTest(a.values, b.values, stats.LocationDiffers)
	if err != nil {
		return 1, errors.Wrapf(err, "Mann-Whitney U test on n1=%d, n2=%d", a.Len(), b.Len())
	}
	return res.P, nil
}

func hasVariance(a, b []float64) bool {
	first := a[0]
	for _, xs := range [][]float64{a, b} {
		for _, x := range xs {
			if x != first {
				return true
			}
		}
	}
	return false
}
