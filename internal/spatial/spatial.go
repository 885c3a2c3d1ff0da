// Package spatial aggregates records by region and summarizes geographic
// coverage for the map view.
package spatial

import (
	"math"
	"sort"

	"traffic-analytics/internal/domain"
)

// RegionSummary is one row of the regional aggregation table. Column set
// matches the regional summary CSV export.
type RegionSummary struct {
	Region        string  `json:"region"`
	TotalVolume   float64 `json:"total_volume"`
	AvgSpeed      float64 `json:"avg_speed"`
	IncidentCount float64 `json:"incident_count"`
	RecordCount   int     `json:"record_count"`
}

// Summarize groups records by region: summed volume and incidents, mean
// speed, and the count of records carrying a volume reading. Rows are sorted
// by total volume descending. Records without a region are skipped.
func Summarize(records []domain.Record) []RegionSummary {
	type acc struct {
		volume      float64
		speedSum    float64
		speedCount  int
		incidents   float64
		recordCount int
	}

	byRegion := make(map[string]*acc)
	for i := range records {
		r := &records[i]
		if r.Region == "" {
			continue
		}
		a, ok := byRegion[r.Region]
		if !ok {
			a = &acc{}
			byRegion[r.Region] = a
		}
		if !math.IsNaN(r.Volume) {
			a.volume += r.Volume
			a.recordCount++
		}
		if !math.IsNaN(r.Speed) {
			a.speedSum += r.Speed
			a.speedCount++
		}
		if !math.IsNaN(r.Incidents) {
			a.incidents += r.Incidents
		}
	}

	summaries := make([]RegionSummary, 0, len(byRegion))
	for region, a := range byRegion {
		avgSpeed := math.NaN()
		if a.speedCount > 0 {
			avgSpeed = a.speedSum / float64(a.speedCount)
		}
		summaries = append(summaries, RegionSummary{
			Region:        region,
			TotalVolume:   a.volume,
			AvgSpeed:      avgSpeed,
			IncidentCount: a.incidents,
			RecordCount:   a.recordCount,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TotalVolume != summaries[j].TotalVolume {
			return summaries[i].TotalVolume > summaries[j].TotalVolume
		}
		return summaries[i].Region < summaries[j].Region
	})

	return summaries
}

// CoverageStats describes the geographic spread of a dataset.
type CoverageStats struct {
	RegionCount     int     `json:"region_count"`
	CoordinateCount int     `json:"coordinate_count"`
	CenterLatitude  float64 `json:"center_latitude"`
	CenterLongitude float64 `json:"center_longitude"`
}

// Coverage computes region and coordinate counts plus the mean center used
// as the initial map position.
func Coverage(records []domain.Record) CoverageStats {
	regions := make(map[string]bool)
	latSum, lonSum := 0.0, 0.0
	coords := 0

	for i := range records {
		r := &records[i]
		if r.Region != "" {
			regions[r.Region] = true
		}
		if r.HasCoordinates() {
			latSum += r.Latitude
			lonSum += r.Longitude
			coords++
		}
	}

	stats := CoverageStats{
		RegionCount:     len(regions),
		CoordinateCount: coords,
		CenterLatitude:  math.NaN(),
		CenterLongitude: math.NaN(),
	}
	if coords > 0 {
		stats.CenterLatitude = latSum / float64(coords)
		stats.CenterLongitude = lonSum / float64(coords)
	}
	return stats
}
