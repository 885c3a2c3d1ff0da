package viewport

import (
	"fmt"
	"time"

	"traffic-analytics/internal/domain"
)

// BottomMode selects what the bottom panel renders.
type BottomMode string

const (
	BottomSeasonal            BottomMode = "seasonal"
	BottomResidual            BottomMode = "residual"
	BottomSeasonalAndResidual BottomMode = "seasonal_and_residual"
)

// Valid reports whether the mode is one of the three selector states.
func (m BottomMode) Valid() bool {
	switch m {
	case BottomSeasonal, BottomResidual, BottomSeasonalAndResidual:
		return true
	}
	return false
}

// ShowSeasonal reports whether the seasonal series is visible.
func (m BottomMode) ShowSeasonal() bool {
	return m == BottomSeasonal || m == BottomSeasonalAndResidual
}

// ShowResidual reports whether the residual series is visible.
func (m BottomMode) ShowResidual() bool {
	return m == BottomResidual || m == BottomSeasonalAndResidual
}

// Series is one named line within a panel.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Panel is one stacked view. All panels of a Stack share the Stack's index
// and viewport; a panel holds only its visible series.
type Panel struct {
	Title  string   `json:"title"`
	Series []Series `json:"series"`
}

// Stack is the three-panel decomposition layout: observed+trend on top, the
// rolling-residual navigator in the middle, and the seasonal/residual panel
// at the bottom.
type Stack struct {
	Index      []time.Time `json:"index"`
	Viewport   Viewport    `json:"viewport"`
	Panels     [3]Panel    `json:"panels"`
	BottomMode BottomMode  `json:"bottom_mode"`

	result *domain.DecompositionResult
}

// NewStack lays out a decomposition result and its rolling navigator series
// across the three panels, with the viewport spanning the full index.
func NewStack(result *domain.DecompositionResult, rolling []float64, rollingTitle string, mode BottomMode) (*Stack, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown bottom panel mode %q", mode)
	}

	s := &Stack{
		Index:      result.Index,
		Viewport:   FromIndex(result.Index),
		BottomMode: mode,
		result:     result,
	}

	s.Panels[0] = Panel{
		Title: "Observed & Trend",
		Series: []Series{
			{Name: "observed", Values: result.Observed},
			{Name: "trend", Values: result.Trend},
		},
	}
	s.Panels[1] = Panel{
		Title:  rollingTitle,
		Series: []Series{{Name: "residual_rolling", Values: rolling}},
	}
	s.Panels[2] = s.bottomPanel(mode)

	return s, nil
}

// SetBottomMode re-renders only the bottom panel; the other two panels and
// the viewport are untouched.
func (s *Stack) SetBottomMode(mode BottomMode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown bottom panel mode %q", mode)
	}
	s.BottomMode = mode
	s.Panels[2] = s.bottomPanel(mode)
	return nil
}

// Pan shifts the shared viewport; every panel reads the same interval.
func (s *Stack) Pan(d time.Duration) {
	s.Viewport = s.Viewport.Pan(d)
}

// ZoomTo replaces the shared viewport.
func (s *Stack) ZoomTo(start, end time.Time) {
	s.Viewport = s.Viewport.ZoomTo(start, end)
}

func (s *Stack) bottomPanel(mode BottomMode) Panel {
	p := Panel{Title: "Seasonal / Residual"}
	if mode.ShowSeasonal() {
		p.Series = append(p.Series, Series{Name: "seasonal", Values: s.result.Seasonal})
	}
	if mode.ShowResidual() {
		p.Series = append(p.Series, Series{Name: "residual", Values: s.result.Residual})
	}
	return p
}
