package domain

import (
	"math"
	"time"
)

// Granularity selects the fixed-frequency grid step.
type Granularity string

const (
	GranularityHourly Granularity = "hourly"
	GranularityDaily  Granularity = "daily"
)

// Step returns the bucket width for the granularity.
func (g Granularity) Step() time.Duration {
	if g == GranularityDaily {
		return 24 * time.Hour
	}
	return time.Hour
}

// Valid reports whether the granularity is a supported grid frequency.
func (g Granularity) Valid() bool {
	return g == GranularityHourly || g == GranularityDaily
}

// Frame is a set of named series on one fixed-frequency time grid.
// Missing values are NaN. Column order is stable and matters for exports.
type Frame struct {
	Index   []time.Time
	names   []string
	columns map[string][]float64
}

// NewFrame creates an empty frame over the given grid index.
func NewFrame(index []time.Time) *Frame {
	return &Frame{
		Index:   index,
		columns: make(map[string][]float64),
	}
}

// Len returns the number of grid buckets.
func (f *Frame) Len() int {
	return len(f.Index)
}

// AddColumn attaches a series to the frame. The series length must equal the
// index length. Re-adding a name replaces the values but keeps its position.
func (f *Frame) AddColumn(name string, values []float64) {
	if _, ok := f.columns[name]; !ok {
		f.names = append(f.names, name)
	}
	f.columns[name] = values
}

// Column returns the named series, or nil if absent.
func (f *Frame) Column(name string) []float64 {
	return f.columns[name]
}

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Empty reports whether the frame has no buckets.
func (f *Frame) Empty() bool {
	return f == nil || len(f.Index) == 0
}

// NaNSeries returns a series of n missing values.
func NaNSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
