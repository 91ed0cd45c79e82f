package sample

import (
	"github.com/aclements/go-moremath/stats"
)

// Percentiles reported by Summary, as fractions.
var Percentiles = []float64{0, 0.05, 0.25, 0.5, 0.75, 0.95, 1}

// Summary describes the distribution of a Sample.
type Summary struct {
	N      int     `json:"n"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	// Percentiles[i] is the value at the Percentiles[i] fraction.
	Percentiles []float64 `json:"percentiles"`
}

// Summary computes descriptive statistics. An empty Sample yields the zero
// Summary.
func (s Sample) Summary() Summary {
	if s.Len() == 0 {
		return Summary{}
	}
	ss := stats.Sample{Xs: s.Values()}
	ss.Sort()
	rv := Summary{
		N:           s.Len(),
		Mean:        ss.Mean(),
		Median:      ss.Quantile(0.5),
		Percentiles: make([]float64, len(Percentiles)),
	}
	rv.Min, rv.Max = ss.Bounds()
	for i, p := range Percentiles {
		rv.Percentiles[i] = ss.Quantile(p)
	}
	return rv
}
