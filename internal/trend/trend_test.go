package trend

import (
	"math"
	"testing"
	"time"

	"traffic-analytics/internal/domain"
)

// makeRecord builds a record with the derived time fields populated the way
// standardization does.
func makeRecord(ts time.Time, volume, speed float64) domain.Record {
	return domain.Record{
		Timestamp: ts,
		Volume:    volume,
		Speed:     speed,
		Incidents: 0,
		Hour:      ts.Hour(),
		Weekday:   ts.Weekday(),
		Weekend:   ts.Weekday() == time.Saturday || ts.Weekday() == time.Sunday,
		Month:     ts.Month(),
		Year:      ts.Year(),
	}
}

func TestDailyPattern_SeparatesDayTypes(t *testing.T) {
	// 2024-03-04 is a Monday, 2024-03-09 a Saturday.
	records := []domain.Record{
		makeRecord(time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), 100, 50),
		makeRecord(time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC), 300, 50),
		makeRecord(time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC), 40, 70),
	}

	weekday, weekend := DailyPattern(records, domain.MetricVolume)
	if weekday.DayType != "weekday" || weekend.DayType != "weekend" {
		t.Fatalf("Day types wrong: %q/%q", weekday.DayType, weekend.DayType)
	}
	if got := weekday.Medians[8]; got != 200 {
		t.Errorf("Weekday hour-8 median = %f, want 200", got)
	}
	if got := weekend.Medians[8]; got != 40 {
		t.Errorf("Weekend hour-8 median = %f, want 40", got)
	}
	if !math.IsNaN(weekday.Medians[9]) {
		t.Errorf("Hour without data must be NaN, got %f", weekday.Medians[9])
	}
}

func TestDailyPattern_SkipsMissingValues(t *testing.T) {
	records := []domain.Record{
		makeRecord(time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), math.NaN(), 50),
	}
	weekday, _ := DailyPattern(records, domain.MetricVolume)
	if !math.IsNaN(weekday.Medians[8]) {
		t.Errorf("Missing metric must not contribute, got %f", weekday.Medians[8])
	}
}

func TestWeekHourHeatmap_MondayFirstRows(t *testing.T) {
	// Sunday must land on the last row.
	records := []domain.Record{
		makeRecord(time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC), 100, 55), // Monday
		makeRecord(time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC), 100, 35), // Sunday
	}

	heatmap := WeekHourHeatmap(records, domain.MetricSpeed)
	if len(heatmap.Days) != 7 || heatmap.Days[0] != "Mon" || heatmap.Days[6] != "Sun" {
		t.Fatalf("Day labels wrong: %v", heatmap.Days)
	}
	if got := heatmap.Values[0][7]; got != 55 {
		t.Errorf("Monday 07:00 = %f, want 55", got)
	}
	if got := heatmap.Values[6][7]; got != 35 {
		t.Errorf("Sunday 07:00 = %f, want 35", got)
	}
	if !math.IsNaN(heatmap.Values[2][7]) {
		t.Errorf("Cell without data must be NaN")
	}
}

func TestWeekHourHeatmap_MedianOfEvenCount(t *testing.T) {
	records := []domain.Record{
		makeRecord(time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC), 0, 40),
		makeRecord(time.Date(2024, 3, 4, 7, 30, 0, 0, time.UTC), 0, 60),
	}
	heatmap := WeekHourHeatmap(records, domain.MetricSpeed)
	if got := heatmap.Values[0][7]; got != 50 {
		t.Errorf("Even-count median = %f, want 50", got)
	}
}
