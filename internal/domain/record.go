package domain

import (
	"math"
	"time"
)

// RawRecord is a flat document as returned by the upstream store, before
// standardization. Field names and value types vary between datasets.
type RawRecord map[string]any

// Record is a standardized traffic-sensor observation. Numeric fields that
// could not be coerced are NaN; they are treated as missing, never as errors.
type Record struct {
	Timestamp  time.Time
	Region     string
	Volume     float64 // vehicles/hour
	Speed      float64 // km/h
	Incidents  float64
	Latitude   float64
	Longitude  float64

	// Derived time fields, populated during standardization.
	Hour    int
	Weekday time.Weekday
	Weekend bool
	Month   time.Month
	Year    int
}

// HasCoordinates reports whether the record carries a usable geo position.
func (r *Record) HasCoordinates() bool {
	return !math.IsNaN(r.Latitude) && !math.IsNaN(r.Longitude)
}

// Metric names shared across views and exports.
const (
	MetricVolume    = "traffic_volume"
	MetricSpeed     = "average_speed"
	MetricIncidents = "incidents"
)

// Value returns the named metric from the record.
func (r *Record) Value(metric string) float64 {
	switch metric {
	case MetricVolume:
		return r.Volume
	case MetricSpeed:
		return r.Speed
	case MetricIncidents:
		return r.Incidents
	default:
		return math.NaN()
	}
}
