package spatial

import (
	"math"
	"testing"

	"traffic-analytics/internal/domain"
)

func TestSummarize_GroupsAndSorts(t *testing.T) {
	records := []domain.Record{
		{Region: "Downtown", Volume: 300, Speed: 40, Incidents: 1},
		{Region: "Downtown", Volume: 500, Speed: 60, Incidents: 0},
		{Region: "Riverside", Volume: 200, Speed: 80, Incidents: 2},
	}

	summaries := Summarize(records)
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 regions, got %d", len(summaries))
	}
	// Sorted by total volume descending.
	if summaries[0].Region != "Downtown" {
		t.Errorf("Expected Downtown first, got %s", summaries[0].Region)
	}
	d := summaries[0]
	if d.TotalVolume != 800 || d.AvgSpeed != 50 || d.IncidentCount != 1 || d.RecordCount != 2 {
		t.Errorf("Downtown summary wrong: %+v", d)
	}
}

func TestSummarize_SkipsMissingValuesAndRegions(t *testing.T) {
	records := []domain.Record{
		{Region: "", Volume: 100},
		{Region: "Downtown", Volume: math.NaN(), Speed: 50},
	}

	summaries := Summarize(records)
	if len(summaries) != 1 {
		t.Fatalf("Records without a region must be skipped: %d rows", len(summaries))
	}
	if summaries[0].RecordCount != 0 {
		t.Errorf("Record count counts volume readings only, got %d", summaries[0].RecordCount)
	}
	if summaries[0].AvgSpeed != 50 {
		t.Errorf("AvgSpeed = %f, want 50", summaries[0].AvgSpeed)
	}
}

func TestSummarize_TieBrokenByRegionName(t *testing.T) {
	records := []domain.Record{
		{Region: "B", Volume: 100},
		{Region: "A", Volume: 100},
	}
	summaries := Summarize(records)
	if summaries[0].Region != "A" {
		t.Errorf("Equal volumes must sort by region name: got %s first", summaries[0].Region)
	}
}

func TestCoverage(t *testing.T) {
	records := []domain.Record{
		{Region: "Downtown", Latitude: 25.0, Longitude: 121.0},
		{Region: "Riverside", Latitude: 27.0, Longitude: 123.0},
		{Region: "Downtown", Latitude: math.NaN(), Longitude: math.NaN()},
	}

	stats := Coverage(records)
	if stats.RegionCount != 2 {
		t.Errorf("RegionCount = %d, want 2", stats.RegionCount)
	}
	if stats.CoordinateCount != 2 {
		t.Errorf("CoordinateCount = %d, want 2", stats.CoordinateCount)
	}
	if stats.CenterLatitude != 26 || stats.CenterLongitude != 122 {
		t.Errorf("Center = (%f, %f), want (26, 122)", stats.CenterLatitude, stats.CenterLongitude)
	}
}

func TestCoverage_NoCoordinates(t *testing.T) {
	stats := Coverage([]domain.Record{{Region: "Downtown", Latitude: math.NaN(), Longitude: math.NaN()}})
	if !math.IsNaN(stats.CenterLatitude) {
		t.Errorf("Center without coordinates must be NaN, got %f", stats.CenterLatitude)
	}
}
