// Package trend computes weekly and hourly pattern aggregates: the
// weekday-vs-weekend per-hour median profile and the day-of-week by hour
// median matrix.
package trend

import (
	"math"
	"sort"
	"time"

	"traffic-analytics/internal/domain"
)

// Peak-hour markers rendered on the daily profile.
const (
	AMPeakHour = 8
	PMPeakHour = 17
)

// HourlyProfile is the per-hour median of a metric for one day type.
type HourlyProfile struct {
	DayType string    `json:"day_type"` // "weekday" or "weekend"
	Medians []float64 `json:"medians"`  // 24 entries, NaN where no data
}

// DailyPattern groups records by weekday/weekend and hour and returns the
// median metric value per hour for both day types. Records without a valid
// timestamp or with a missing metric value are skipped.
func DailyPattern(records []domain.Record, metric string) (weekday, weekend HourlyProfile) {
	weekdayBuckets := make([][]float64, 24)
	weekendBuckets := make([][]float64, 24)

	for i := range records {
		r := &records[i]
		if r.Timestamp.IsZero() {
			continue
		}
		v := r.Value(metric)
		if math.IsNaN(v) {
			continue
		}
		if r.Weekend {
			weekendBuckets[r.Hour] = append(weekendBuckets[r.Hour], v)
		} else {
			weekdayBuckets[r.Hour] = append(weekdayBuckets[r.Hour], v)
		}
	}

	weekday = HourlyProfile{DayType: "weekday", Medians: medianPerHour(weekdayBuckets)}
	weekend = HourlyProfile{DayType: "weekend", Medians: medianPerHour(weekendBuckets)}
	return weekday, weekend
}

// Heatmap is the 7x24 median matrix for a metric. Rows are days of week
// starting Monday, columns are hours. Cells without data are NaN.
type Heatmap struct {
	Days   []string    `json:"days"`
	Values [][]float64 `json:"values"`
}

var dayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekHourHeatmap pivots records into a day-of-week by hour median matrix.
func WeekHourHeatmap(records []domain.Record, metric string) Heatmap {
	buckets := make([][][]float64, 7)
	for d := range buckets {
		buckets[d] = make([][]float64, 24)
	}

	for i := range records {
		r := &records[i]
		if r.Timestamp.IsZero() {
			continue
		}
		v := r.Value(metric)
		if math.IsNaN(v) {
			continue
		}
		buckets[mondayIndex(r.Weekday)][r.Hour] = append(buckets[mondayIndex(r.Weekday)][r.Hour], v)
	}

	values := make([][]float64, 7)
	for d := range values {
		values[d] = medianPerHour(buckets[d])
	}

	return Heatmap{Days: dayLabels, Values: values}
}

// mondayIndex maps time.Weekday (Sunday=0) to a Monday-first row index.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func medianPerHour(buckets [][]float64) []float64 {
	medians := make([]float64, 24)
	for h, vals := range buckets {
		medians[h] = median(vals)
	}
	return medians
}

func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
