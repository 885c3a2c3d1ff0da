// Package decompose splits a gap-free fixed-frequency series into additive
// trend, seasonal, and residual components. Two algorithms are supported: a
// robust iterative method with adaptive windows and outlier downweighting,
// and a classical fixed-period method with a centered moving-average trend.
package decompose

import (
	"fmt"
	"math"
	"sort"
	"time"

	"traffic-analytics/internal/domain"
)

// robustIterations is the number of outer fitting passes for the robust
// method; weights are re-derived from residuals between passes.
const robustIterations = 3

// Decompose runs the selected method on a forward-filled series. values must
// have no gaps. Returns an InsufficientDataError when len(values) < 2*period;
// no result object is produced in that case.
func Decompose(index []time.Time, values []float64, period int, method string) (*domain.DecompositionResult, error) {
	n := len(values)
	if n < 2*period {
		return nil, &InsufficientDataError{N: n, Period: period}
	}

	switch method {
	case domain.MethodClassical:
		return classical(index, values, period), nil
	case domain.MethodRobust:
		return robust(index, values, period), nil
	}
	return nil, fmt.Errorf("unknown decomposition method %q", method)
}

// robust is an iterative decomposition in the STL family: cycle-subseries
// smoothing for the seasonal, a weighted moving average of the deseasonalized
// series for the trend, and bisquare robustness weights derived from the
// residual MAD between iterations. The trend window shrinks at the edges, so
// the trend is defined over the full domain.
func robust(index []time.Time, values []float64, period int) *domain.DecompositionResult {
	n := len(values)
	params := RobustParams(n, period)

	trend := make([]float64, n)
	seasonal := make([]float64, n)
	residual := make([]float64, n)
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0
	}

	// Cycle-subseries smoothing span in whole cycles.
	cycleWindow := MakeOdd(params.SeasonalWindow / period)

	for iter := 0; iter < robustIterations; iter++ {
		// Detrend, then estimate the seasonal from cycle subseries.
		detrended := make([]float64, n)
		for i := range detrended {
			detrended[i] = values[i] - trend[i]
		}
		smoothCycleSubseries(detrended, weights, period, cycleWindow, seasonal)
		centerSeasonal(seasonal)

		// Deseasonalize and smooth for the trend.
		deseasonalized := make([]float64, n)
		for i := range deseasonalized {
			deseasonalized[i] = values[i] - seasonal[i]
		}
		weightedMovingAverage(deseasonalized, weights, params.TrendWindow, trend)

		for i := range residual {
			residual[i] = values[i] - trend[i] - seasonal[i]
		}

		if iter < robustIterations-1 {
			updateRobustnessWeights(residual, weights)
		}
	}

	observed := make([]float64, n)
	copy(observed, values)
	idx := make([]time.Time, len(index))
	copy(idx, index)

	return &domain.DecompositionResult{
		Index:    idx,
		Observed: observed,
		Trend:    trend,
		Seasonal: seasonal,
		Residual: residual,
		Method:   domain.MethodRobust,
		Params:   params,
	}
}

// smoothCycleSubseries estimates one seasonal value per position by a
// triangular-weighted average over the cycle subseries: for position i, the
// values at the same phase in the cycleWindow nearest cycles.
func smoothCycleSubseries(detrended, weights []float64, period, cycleWindow int, out []float64) {
	n := len(detrended)
	halfCycles := cycleWindow / 2

	for i := 0; i < n; i++ {
		sum := 0.0
		weightSum := 0.0
		for c := -halfCycles; c <= halfCycles; c++ {
			j := i + c*period
			if j < 0 || j >= n {
				continue
			}
			w := weights[j] * (1 - math.Abs(float64(c))/float64(halfCycles+1))
			sum += detrended[j] * w
			weightSum += w
		}
		if weightSum > 0 {
			out[i] = sum / weightSum
		} else {
			out[i] = 0
		}
	}
}

// centerSeasonal removes the overall mean so the seasonal sums to ~zero and
// the trend absorbs the level.
func centerSeasonal(seasonal []float64) {
	mean := 0.0
	for _, v := range seasonal {
		mean += v
	}
	mean /= float64(len(seasonal))
	for i := range seasonal {
		seasonal[i] -= mean
	}
}

// weightedMovingAverage smooths with a triangular kernel of the given odd
// width. The window is clamped at the series edges rather than leaving gaps.
func weightedMovingAverage(values, weights []float64, window int, out []float64) {
	n := len(values)
	half := window / 2

	for i := 0; i < n; i++ {
		sum := 0.0
		weightSum := 0.0
		for j := -half; j <= half; j++ {
			idx := i + j
			if idx < 0 || idx >= n {
				continue
			}
			w := weights[idx] * (1 - math.Abs(float64(j))/float64(half+1))
			sum += values[idx] * w
			weightSum += w
		}
		if weightSum > 0 {
			out[i] = sum / weightSum
		}
	}
}

// updateRobustnessWeights derives bisquare weights from the residual MAD,
// driving outlier influence toward zero on the next pass.
func updateRobustnessWeights(residual, weights []float64) {
	n := len(residual)
	absResiduals := make([]float64, n)
	for i, r := range residual {
		absResiduals[i] = math.Abs(r)
	}
	h := 6 * median(absResiduals)
	if h <= 0 {
		return
	}
	for i := range weights {
		u := math.Abs(residual[i]) / h
		if u < 1 {
			weights[i] = (1 - u*u) * (1 - u*u)
		} else {
			weights[i] = 0
		}
	}
}

// classical is the fixed-period additive decomposition: centered moving
// average trend (NaN at the edges), phase-mean seasonal with a fixed shape
// across the whole series, residual defined wherever trend is.
func classical(index []time.Time, values []float64, period int) *domain.DecompositionResult {
	n := len(values)

	trend := centeredMovingAverage(values, period)

	// Seasonal pattern from phase means of the detrended series.
	pattern := make([]float64, period)
	counts := make([]int, period)
	for i := 0; i < n; i++ {
		if math.IsNaN(trend[i]) {
			continue
		}
		phase := i % period
		pattern[phase] += values[i] - trend[i]
		counts[phase]++
	}
	for p := 0; p < period; p++ {
		if counts[p] > 0 {
			pattern[p] /= float64(counts[p])
		}
	}

	// Center so the pattern sums to zero over one period.
	mean := 0.0
	for _, v := range pattern {
		mean += v
	}
	mean /= float64(period)
	for p := range pattern {
		pattern[p] -= mean
	}

	seasonal := make([]float64, n)
	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonal[i] = pattern[i%period]
		if math.IsNaN(trend[i]) {
			residual[i] = math.NaN()
		} else {
			residual[i] = values[i] - trend[i] - seasonal[i]
		}
	}

	observed := make([]float64, n)
	copy(observed, values)
	idx := make([]time.Time, len(index))
	copy(idx, index)

	return &domain.DecompositionResult{
		Index:    idx,
		Observed: observed,
		Trend:    trend,
		Seasonal: seasonal,
		Residual: residual,
		Method:   domain.MethodClassical,
		Params:   domain.DecompositionParams{Period: period},
	}
}

// centeredMovingAverage computes the classical trend estimate. Even periods
// use the 2x-period centered average with half weight on the end points.
// Positions within half a window of either edge are NaN.
func centeredMovingAverage(values []float64, period int) []float64 {
	n := len(values)
	trend := domain.NaNSeries(n)
	half := period / 2

	if period%2 == 0 {
		for i := half; i < n-half; i++ {
			sum := values[i-half]*0.5 + values[i+half]*0.5
			for j := i - half + 1; j < i+half; j++ {
				sum += values[j]
			}
			trend[i] = sum / float64(period)
		}
	} else {
		for i := half; i < n-half; i++ {
			sum := 0.0
			for j := i - half; j <= i+half; j++ {
				sum += values[j]
			}
			trend[i] = sum / float64(period)
		}
	}
	return trend
}

func median(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
