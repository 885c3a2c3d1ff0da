package resample

import (
	"math"
	"testing"
	"time"

	"traffic-analytics/internal/domain"
)

func record(ts time.Time, volume, speed, incidents float64) domain.Record {
	return domain.Record{
		Timestamp: ts,
		Volume:    volume,
		Speed:     speed,
		Incidents: incidents,
		Latitude:  math.NaN(),
		Longitude: math.NaN(),
	}
}

func TestResample_SinglePointIdentity(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	frame := Resample([]domain.Record{record(ts, 120, 60, 0)}, domain.GranularityHourly, BaseFields())

	if frame.Len() != 1 {
		t.Fatalf("Expected 1 bucket, got %d", frame.Len())
	}
	if !frame.Index[0].Equal(time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)) {
		t.Errorf("Bucket start not truncated to the hour: %v", frame.Index[0])
	}
	if got := frame.Column(domain.MetricVolume)[0]; got != 120 {
		t.Errorf("Mean of a single point must be the point: got %f", got)
	}
}

func TestResample_EmptyBucketsAreMissing(t *testing.T) {
	base := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	records := []domain.Record{
		record(base, 100, 50, 0),
		record(base.Add(3*time.Hour), 200, 40, 1),
	}

	frame := Resample(records, domain.GranularityHourly, BaseFields())
	if frame.Len() != 4 {
		t.Fatalf("Expected 4 buckets spanning the range, got %d", frame.Len())
	}

	volume := frame.Column(domain.MetricVolume)
	if !math.IsNaN(volume[1]) || !math.IsNaN(volume[2]) {
		t.Errorf("Empty buckets must be NaN, got %v", volume)
	}
	if volume[0] != 100 || volume[3] != 200 {
		t.Errorf("Occupied buckets wrong: %v", volume)
	}
}

func TestResample_MeanAndSumAggregation(t *testing.T) {
	base := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)
	records := []domain.Record{
		record(base.Add(5*time.Minute), 100, 60, 1),
		record(base.Add(25*time.Minute), 200, 40, 2),
	}

	frame := Resample(records, domain.GranularityHourly, CorrelationFields())
	if got := frame.Column(domain.MetricVolume)[0]; got != 150 {
		t.Errorf("Expected mean volume 150, got %f", got)
	}
	if got := frame.Column(domain.MetricIncidents)[0]; got != 3 {
		t.Errorf("Expected summed incidents 3, got %f", got)
	}
}

func TestResample_OccupiedBucketAllNaN(t *testing.T) {
	base := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)
	records := []domain.Record{
		record(base, math.NaN(), math.NaN(), math.NaN()),
	}

	frame := Resample(records, domain.GranularityHourly, CorrelationFields())
	if !math.IsNaN(frame.Column(domain.MetricVolume)[0]) {
		t.Error("Mean over no valid values must be NaN")
	}
	// A sum over an occupied bucket with no valid values is 0, matching the
	// conventional count-style aggregation.
	if got := frame.Column(domain.MetricIncidents)[0]; got != 0 {
		t.Errorf("Expected occupied sum bucket 0, got %f", got)
	}
}

func TestResample_NoValidTimestamps(t *testing.T) {
	records := []domain.Record{record(time.Time{}, 100, 50, 0)}
	frame := Resample(records, domain.GranularityHourly, BaseFields())
	if !frame.Empty() {
		t.Errorf("Expected empty frame for zero valid timestamps, got %d buckets", frame.Len())
	}
}

func TestResample_DailyBuckets(t *testing.T) {
	records := []domain.Record{
		record(time.Date(2024, 3, 5, 23, 45, 0, 0, time.UTC), 100, 50, 0),
		record(time.Date(2024, 3, 7, 0, 15, 0, 0, time.UTC), 300, 30, 2),
	}

	frame := Resample(records, domain.GranularityDaily, BaseFields())
	if frame.Len() != 3 {
		t.Fatalf("Expected 3 daily buckets, got %d", frame.Len())
	}
	if !frame.Index[0].Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Daily bucket not aligned to midnight: %v", frame.Index[0])
	}
}

func TestForwardFill(t *testing.T) {
	nan := math.NaN()
	got := ForwardFill([]float64{nan, nan, 5, nan, 7, nan})
	want := []float64{5, 5, 5, 5, 7, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ForwardFill[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestForwardFill_AllNaN(t *testing.T) {
	got := ForwardFill([]float64{math.NaN(), math.NaN()})
	for i := range got {
		if !math.IsNaN(got[i]) {
			t.Errorf("Expected NaN at %d when nothing is observed, got %f", i, got[i])
		}
	}
}

func TestDecompositionInput_GapFree(t *testing.T) {
	base := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	records := []domain.Record{
		record(base, 100, 50, 0),
		record(base.Add(4*time.Hour), 200, 40, 0),
	}

	index, values := DecompositionInput(records, domain.MetricVolume)
	if len(index) != 5 || len(values) != 5 {
		t.Fatalf("Expected 5 hourly points, got %d/%d", len(index), len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) {
			t.Errorf("Decomposition input must be gap-free, NaN at %d", i)
		}
	}
	if values[1] != 100 || values[2] != 100 || values[3] != 100 {
		t.Errorf("Gaps must carry the last observed value forward: %v", values)
	}
}

func TestDecompositionInput_Empty(t *testing.T) {
	index, values := DecompositionInput(nil, domain.MetricVolume)
	if index != nil || values != nil {
		t.Error("Expected nil input to yield nil series")
	}
}
