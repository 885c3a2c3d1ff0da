package correlate

import (
	"fmt"
	"math"
	"sort"

	"traffic-analytics/internal/domain"
)

// Correlation methods.
const (
	MethodPearson  = "pearson"
	MethodSpearman = "spearman"
)

// ValidMethod reports whether the correlation method is supported.
func ValidMethod(method string) bool {
	return method == MethodPearson || method == MethodSpearman
}

// FeatureCorrelation is one external feature's correlation against a target.
type FeatureCorrelation struct {
	Feature     string  `json:"feature"`
	Correlation float64 `json:"correlation"`
}

// Against correlates every external feature column of the joined frame with
// the named target column. Pairs where either side is NaN are excluded.
// Features with fewer than two valid pairs, or zero variance, yield NaN.
func Against(joined *domain.Frame, target, method string, exclude []string) ([]FeatureCorrelation, error) {
	if !ValidMethod(method) {
		return nil, fmt.Errorf("unknown correlation method %q", method)
	}

	excluded := make(map[string]bool, len(exclude)+1)
	for _, name := range exclude {
		excluded[name] = true
	}
	excluded[target] = true

	targetValues := joined.Column(target)
	if targetValues == nil {
		return nil, fmt.Errorf("target column %q not in joined frame", target)
	}

	var out []FeatureCorrelation
	for _, name := range joined.Columns() {
		if excluded[name] {
			continue
		}
		out = append(out, FeatureCorrelation{
			Feature:     name,
			Correlation: correlate(joined.Column(name), targetValues, method),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Correlation < out[j].Correlation })
	return out, nil
}

func correlate(x, y []float64, method string) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if method == MethodSpearman {
		xs = ranks(xs)
		ys = ranks(ys)
	}
	return pearson(xs, ys)
}

// pearson computes the sample correlation coefficient.
func pearson(x, y []float64) float64 {
	n := float64(len(x))
	meanX, meanY := 0.0, 0.0
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= n
	meanY /= n

	cov, varX, varY := 0.0, 0.0, 0.0
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varX*varY)
}

// ranks assigns 1-based ranks with ties receiving the average rank.
func ranks(values []float64) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	ranked := make([]float64, n)
	i := 0
	for i < n {
		j := i
		for j+1 < n && values[order[j+1]] == values[order[i]] {
			j++
		}
		// Average rank across the tie run [i, j].
		avg := (float64(i) + float64(j)) / 2.0
		for k := i; k <= j; k++ {
			ranked[order[k]] = avg + 1
		}
		i = j + 1
	}
	return ranked
}
