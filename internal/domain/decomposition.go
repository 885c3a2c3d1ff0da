package domain

import "time"

// Decomposition method identifiers.
const (
	MethodRobust    = "robust"
	MethodClassical = "classical"
)

// DecompositionParams holds the windowing configuration for one run.
// SeasonalWindow and TrendWindow are always odd and >= 3 after derivation.
type DecompositionParams struct {
	Period         int  `json:"period"`
	SeasonalWindow int  `json:"seasonal_window"`
	TrendWindow    int  `json:"trend_window"`
	Robust         bool `json:"robust"`
}

// DecompositionResult holds four aligned component series of identical length
// and index. Additive invariant: observed ≈ trend + seasonal + residual
// wherever trend is defined. The classical method leaves NaN trend at the
// series edges; the robust method covers the full domain.
type DecompositionResult struct {
	Index    []time.Time
	Observed []float64
	Trend    []float64
	Seasonal []float64
	Residual []float64
	Method   string
	Params   DecompositionParams
}

// Len returns the common length of the component series.
func (r *DecompositionResult) Len() int {
	return len(r.Observed)
}
