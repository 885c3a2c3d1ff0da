package reporting

import (
	"time"

	"traffic-analytics/internal/spatial"
)

// Report summarizes one month of one dataset.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Dataset     string
	Month       string

	// Data Summary
	DataSummary DataSummary

	// Regional breakdown (sorted by total volume, descending)
	Regions []spatial.RegionSummary
}

// DataSummary contains headline figures for the loaded records.
type DataSummary struct {
	RecordCount     int
	RegionCount     int
	CoordinateCount int
	TotalVolume     float64
	MeanSpeed       float64
	IncidentCount   float64
	CoverageDays    int
	DateRangeStart  time.Time
	DateRangeEnd    time.Time
}
