package analytics

import (
	"context"
	"errors"
	"fmt"

	"traffic-analytics/internal/correlate"
	"traffic-analytics/internal/domain"
	"traffic-analytics/internal/observability"
	"traffic-analytics/internal/resample"
)

// ErrNoOverlap signals that the external table shares no buckets with the
// traffic grid.
var ErrNoOverlap = errors.New("no overlapping buckets with external factors")

// ErrNoFeatures signals that the external table carries no numeric feature
// columns after alignment.
var ErrNoFeatures = errors.New("no numeric external features")

// CorrelationResult holds the correlation view: per-feature correlations
// against traffic volume and average speed, plus the merged grid.
type CorrelationResult struct {
	VolumeCorrelations []correlate.FeatureCorrelation `json:"volume_correlations"`
	SpeedCorrelations  []correlate.FeatureCorrelation `json:"speed_correlations"`
	Merged             *domain.Frame                  `json:"-"`
}

// Correlate aligns an uploaded external-factors table with the traffic grid
// at the given granularity and correlates each external feature against
// traffic volume and average speed.
func (s *Service) Correlate(ctx context.Context, q Query, gran domain.Granularity, table *correlate.ExternalTable, method string) (*CorrelationResult, error) {
	if !correlate.ValidMethod(method) {
		return nil, fmt.Errorf("unknown correlation method %q", method)
	}

	records, err := s.PreparedMonth(ctx, q)
	if err != nil {
		return nil, err
	}

	base := resample.Resample(records, gran, resample.CorrelationFields())
	if base.Empty() {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoData, q.Dataset, q.Month)
	}

	external := correlate.Resample(table, gran)
	joined := correlate.InnerJoin(base, external)
	if joined.Len() == 0 {
		return nil, ErrNoOverlap
	}

	// Everything beyond the traffic metrics is an external feature.
	exclude := []string{domain.MetricVolume, domain.MetricSpeed, domain.MetricIncidents}
	if len(joined.Columns()) <= len(exclude) {
		return nil, ErrNoFeatures
	}

	volume, err := correlate.Against(joined, domain.MetricVolume, method, exclude)
	if err != nil {
		return nil, err
	}
	speed, err := correlate.Against(joined, domain.MetricSpeed, method, exclude)
	if err != nil {
		return nil, err
	}

	observability.RecordCorrelation(method)
	return &CorrelationResult{
		VolumeCorrelations: volume,
		SpeedCorrelations:  speed,
		Merged:             joined,
	}, nil
}
