// Package annotate computes display-layer derivations over series: top-N
// extremum marking, adaptive smoothing windows, and rolling aggregates of the
// decomposition residual.
package annotate

import (
	"math"
	"sort"
)

// Extremum is one marked point: the position on the grid and its value.
type Extremum struct {
	Position int     `json:"position"`
	Value    float64 `json:"value"`
}

// TopN returns the n largest and n smallest values with their positions.
// Ties are broken by encounter order (stable sort). NaN values are ignored.
// n = 0 returns empty sets; it is not an error.
func TopN(values []float64, n int) (highs, lows []Extremum) {
	if n <= 0 {
		return nil, nil
	}

	candidates := make([]Extremum, 0, len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			candidates = append(candidates, Extremum{Position: i, Value: v})
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	desc := make([]Extremum, len(candidates))
	copy(desc, candidates)
	sort.SliceStable(desc, func(i, j int) bool { return desc[i].Value > desc[j].Value })

	asc := make([]Extremum, len(candidates))
	copy(asc, candidates)
	sort.SliceStable(asc, func(i, j int) bool { return asc[i].Value < asc[j].Value })

	if n > len(candidates) {
		n = len(candidates)
	}
	highs = append(highs, desc[:n]...)
	lows = append(lows, asc[:n]...)
	return highs, lows
}

// SmoothingWindow derives the display moving-average window from the series
// length: clamp(n/20, 3, 24). Recomputed whenever the series changes; not
// user-configurable.
func SmoothingWindow(n int) int {
	w := n / 20
	if w < 3 {
		w = 3
	}
	if w > 24 {
		w = 24
	}
	return w
}

// MovingAverage computes a trailing mean over the window with min-periods-1
// semantics: positions before a full window average whatever is available.
// NaN inputs are skipped; a window with no valid values yields NaN.
func MovingAverage(values []float64, window int) []float64 {
	n := len(values)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		sum := 0.0
		count := 0
		for j := start; j <= i; j++ {
			if !math.IsNaN(values[j]) {
				sum += values[j]
				count++
			}
		}
		if count == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = sum / float64(count)
		}
	}
	return out
}
