// Package resample aggregates irregular per-record timestamps onto a
// fixed-frequency grid.
package resample

import (
	"math"
	"time"

	"traffic-analytics/internal/domain"
)

// Aggregation selects how source values inside a bucket are combined.
type Aggregation int

const (
	// Mean averages the valid values in the bucket.
	Mean Aggregation = iota
	// Sum totals the valid values in the bucket.
	Sum
)

// FieldAgg binds a metric to its bucket aggregation.
type FieldAgg struct {
	Metric string
	Agg    Aggregation
}

// BaseFields is the standard aggregation set for the time view: mean volume
// and mean speed.
func BaseFields() []FieldAgg {
	return []FieldAgg{
		{Metric: domain.MetricVolume, Agg: Mean},
		{Metric: domain.MetricSpeed, Agg: Mean},
	}
}

// CorrelationFields extends BaseFields with summed incidents, the base frame
// for external-factor joins.
func CorrelationFields() []FieldAgg {
	return append(BaseFields(), FieldAgg{Metric: domain.MetricIncidents, Agg: Sum})
}

// Resample buckets records onto the grid spanning [min(ts), max(ts)] at the
// given granularity. Buckets with no source records hold NaN, not zero.
// Records without a valid timestamp are ignored; if none remain the result is
// an empty frame, which callers treat as "no data for this period".
func Resample(records []domain.Record, gran domain.Granularity, fields []FieldAgg) *domain.Frame {
	var minB, maxB time.Time
	valid := 0
	for i := range records {
		if records[i].Timestamp.IsZero() {
			continue
		}
		b := bucketStart(records[i].Timestamp, gran)
		if valid == 0 || b.Before(minB) {
			minB = b
		}
		if valid == 0 || b.After(maxB) {
			maxB = b
		}
		valid++
	}
	if valid == 0 {
		return domain.NewFrame(nil)
	}

	step := gran.Step()
	n := int(maxB.Sub(minB)/step) + 1
	index := make([]time.Time, n)
	for i := range index {
		index[i] = minB.Add(time.Duration(i) * step)
	}

	frame := domain.NewFrame(index)
	for _, f := range fields {
		sums := make([]float64, n)
		counts := make([]int, n)
		occupied := make([]bool, n)

		for i := range records {
			if records[i].Timestamp.IsZero() {
				continue
			}
			idx := int(bucketStart(records[i].Timestamp, gran).Sub(minB) / step)
			occupied[idx] = true
			v := records[i].Value(f.Metric)
			if math.IsNaN(v) {
				continue
			}
			sums[idx] += v
			counts[idx]++
		}

		values := make([]float64, n)
		for i := range values {
			switch {
			case !occupied[i]:
				values[i] = math.NaN()
			case f.Agg == Sum:
				values[i] = sums[i]
			case counts[i] == 0:
				values[i] = math.NaN()
			default:
				values[i] = sums[i] / float64(counts[i])
			}
		}
		frame.AddColumn(f.Metric, values)
	}

	return frame
}

// bucketStart truncates a timestamp to its grid bucket in UTC.
func bucketStart(ts time.Time, gran domain.Granularity) time.Time {
	ts = ts.UTC()
	if gran == domain.GranularityDaily {
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	}
	return ts.Truncate(time.Hour)
}

// ForwardFill returns a copy with NaN gaps filled by the last observed value.
// Leading gaps take the first observed value so the result has no holes.
// Used only to prepare decomposition input; display series keep their gaps.
func ForwardFill(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)

	last := math.NaN()
	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = last
		} else {
			last = v
		}
	}
	if len(out) > 0 && math.IsNaN(out[0]) {
		first := math.NaN()
		for _, v := range out {
			if !math.IsNaN(v) {
				first = v
				break
			}
		}
		for i := range out {
			if math.IsNaN(out[i]) {
				out[i] = first
			} else {
				break
			}
		}
	}
	return out
}

// DecompositionInput resamples records hourly by mean for the metric and
// forward-fills so the series is gap-free.
func DecompositionInput(records []domain.Record, metric string) ([]time.Time, []float64) {
	frame := Resample(records, domain.GranularityHourly, []FieldAgg{{Metric: metric, Agg: Mean}})
	if frame.Empty() {
		return nil, nil
	}
	return frame.Index, ForwardFill(frame.Column(metric))
}
