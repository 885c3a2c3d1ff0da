// Package viewport models the shared time axis of the stacked decomposition
// panels. All panels are bound to one viewport value; panning or zooming
// replaces that value, so the x-domain can never drift between panels.
package viewport

import "time"

// Viewport is the visible time-domain interval shared by every panel.
type Viewport struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FromIndex returns the full-extent viewport for a grid index.
func FromIndex(index []time.Time) Viewport {
	if len(index) == 0 {
		return Viewport{}
	}
	return Viewport{Start: index[0], End: index[len(index)-1]}
}

// Pan shifts the interval by d, preserving its width.
func (v Viewport) Pan(d time.Duration) Viewport {
	return Viewport{Start: v.Start.Add(d), End: v.End.Add(d)}
}

// ZoomTo replaces the interval. An inverted range collapses to its start.
func (v Viewport) ZoomTo(start, end time.Time) Viewport {
	if end.Before(start) {
		end = start
	}
	return Viewport{Start: start, End: end}
}

// Contains reports whether t falls inside the interval, inclusive.
func (v Viewport) Contains(t time.Time) bool {
	return !t.Before(v.Start) && !t.After(v.End)
}

// Clip returns the positions of index entries inside the viewport.
func (v Viewport) Clip(index []time.Time) (first, last int) {
	first, last = -1, -1
	for i, ts := range index {
		if !v.Contains(ts) {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	return first, last
}
