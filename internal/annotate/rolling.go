package annotate

import (
	"fmt"
	"math"
)

// RollStat selects the rolling aggregate over the residual.
type RollStat string

const (
	RollMean RollStat = "mean"
	RollSum  RollStat = "sum"
	RollStd  RollStat = "std"
	// RollAbsSum is sum(|x|) over the window — a distinct aggregator, not the
	// absolute value of the windowed sum.
	RollAbsSum RollStat = "abs_sum"
)

// Valid reports whether the stat is a supported aggregate.
func (s RollStat) Valid() bool {
	switch s {
	case RollMean, RollSum, RollStd, RollAbsSum:
		return true
	}
	return false
}

// MaxRollingWindow caps the user-selectable residual window at 7 days of
// hourly buckets.
const MaxRollingWindow = 168

// ClampRollingWindow bounds a requested window to [3, min(168, n)].
func ClampRollingWindow(window, n int) int {
	maxWin := MaxRollingWindow
	if n < maxWin {
		maxWin = n
	}
	if window > maxWin {
		window = maxWin
	}
	if window < 3 {
		window = 3
	}
	return window
}

// Rolling computes the trailing aggregate over the window with min-periods-1
// semantics. NaN inputs are skipped within the window.
func Rolling(values []float64, window int, stat RollStat) ([]float64, error) {
	if !stat.Valid() {
		return nil, fmt.Errorf("unknown rolling aggregate %q", stat)
	}

	n := len(values)
	out := make([]float64, n)
	buf := make([]float64, 0, window)

	for i := 0; i < n; i++ {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		buf = buf[:0]
		for j := start; j <= i; j++ {
			if !math.IsNaN(values[j]) {
				buf = append(buf, values[j])
			}
		}
		if len(buf) == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = aggregate(buf, stat)
	}
	return out, nil
}

func aggregate(window []float64, stat RollStat) float64 {
	switch stat {
	case RollMean:
		return sum(window) / float64(len(window))
	case RollSum:
		return sum(window)
	case RollAbsSum:
		total := 0.0
		for _, v := range window {
			total += math.Abs(v)
		}
		return total
	case RollStd:
		n := len(window)
		if n < 2 {
			return math.NaN()
		}
		mean := sum(window) / float64(n)
		sumSq := 0.0
		for _, v := range window {
			d := v - mean
			sumSq += d * d
		}
		return math.Sqrt(sumSq / float64(n-1))
	}
	return math.NaN()
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
