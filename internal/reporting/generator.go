package reporting

import (
	"context"
	"math"
	"time"

	"traffic-analytics/internal/domain"
	"traffic-analytics/internal/spatial"
)

// Loader supplies standardized records for a month of a dataset.
type Loader interface {
	LoadMonth(ctx context.Context, dataset, month string) ([]domain.Record, error)
}

// Generator produces reports from loaded records.
type Generator struct {
	loader Loader
	now    func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(loader Loader) *Generator {
	return &Generator{
		loader: loader,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a report for one month of one dataset.
func (g *Generator) Generate(ctx context.Context, dataset, month string) (*Report, error) {
	records, err := g.loader.LoadMonth(ctx, dataset, month)
	if err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt: g.now(),
		Dataset:     dataset,
		Month:       month,
		DataSummary: Summarize(records),
		Regions:     spatial.Summarize(records),
	}, nil
}

// Summarize computes the headline figures for a set of records.
func Summarize(records []domain.Record) DataSummary {
	summary := DataSummary{RecordCount: len(records)}
	if len(records) == 0 {
		return summary
	}

	coverage := spatial.Coverage(records)
	summary.RegionCount = coverage.RegionCount
	summary.CoordinateCount = coverage.CoordinateCount

	var speedSum float64
	var speedCount int

	// Records with an unparseable datetime carry a zero timestamp; they are
	// excluded from the observed range.
	for _, r := range records {
		if !r.Timestamp.IsZero() {
			if summary.DateRangeStart.IsZero() || r.Timestamp.Before(summary.DateRangeStart) {
				summary.DateRangeStart = r.Timestamp
			}
			if r.Timestamp.After(summary.DateRangeEnd) {
				summary.DateRangeEnd = r.Timestamp
			}
		}
		if !math.IsNaN(r.Volume) {
			summary.TotalVolume += r.Volume
		}
		if !math.IsNaN(r.Speed) {
			speedSum += r.Speed
			speedCount++
		}
		if !math.IsNaN(r.Incidents) {
			summary.IncidentCount += r.Incidents
		}
	}

	// Span of the observed range in whole days, inclusive. No timestamped
	// records means no coverage.
	if !summary.DateRangeStart.IsZero() {
		summary.CoverageDays = int(summary.DateRangeEnd.Sub(summary.DateRangeStart).Hours()/24) + 1
	}
	if speedCount > 0 {
		summary.MeanSpeed = speedSum / float64(speedCount)
	} else {
		summary.MeanSpeed = math.NaN()
	}
	return summary
}
