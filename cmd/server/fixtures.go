package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"traffic-analytics/internal/domain"
	"traffic-analytics/internal/storage/memory"
)

// Demo regions with approximate sensor positions.
var demoRegions = []struct {
	name     string
	lat, lon float64
	scale    float64
}{
	{"Downtown", 25.0478, 121.5319, 1.0},
	{"Harbor District", 25.1276, 121.7392, 0.7},
	{"North Hills", 25.0918, 121.5245, 0.5},
	{"Riverside", 24.9937, 121.4550, 0.6},
}

// seedDemoData loads three months of synthetic hourly records into the
// in-memory store. Generation is deterministic.
func seedDemoData(store *memory.RecordStore) {
	rng := rand.New(rand.NewSource(42))
	year := time.Now().UTC().Year() - 1

	for monthIdx, month := range domain.MonthNames[:3] {
		var raws []domain.RawRecord
		start := time.Date(year, time.Month(monthIdx+1), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)

		for ts := start; ts.Before(end); ts = ts.Add(time.Hour) {
			for _, region := range demoRegions {
				raws = append(raws, demoRecord(rng, ts, region.name, region.lat, region.lon, region.scale))
			}
		}
		store.Seed("historical_metro_demo", month, raws)
	}
}

// demoRecord builds one raw document with a diurnal traffic curve: morning
// and evening rush peaks, quieter weekends, occasional incidents.
func demoRecord(rng *rand.Rand, ts time.Time, region string, lat, lon, scale float64) domain.RawRecord {
	hour := float64(ts.Hour())
	weekend := ts.Weekday() == time.Saturday || ts.Weekday() == time.Sunday

	rush := 600*bump(hour, 8) + 550*bump(hour, 17)
	base := 250 + 150*math.Sin((hour-4)*math.Pi/12)
	volume := (base + rush) * scale
	if weekend {
		volume *= 0.6
	}
	volume += rng.NormFloat64() * 40 * scale
	if volume < 0 {
		volume = 0
	}

	speed := 85 - volume/40 + rng.NormFloat64()*5
	if speed < 10 {
		speed = 10
	}

	incidents := 0
	if rng.Float64() < volume/20000 {
		incidents = 1 + rng.Intn(2)
	}

	return domain.RawRecord{
		"datetime":       ts.Format("2006-01-02 15:04:05"),
		"region_name":    region,
		"traffic_volume": volume,
		"average_speed":  speed,
		"incidents":      incidents,
		"latitude":       lat + rng.NormFloat64()*0.01,
		"longitude":      lon + rng.NormFloat64()*0.01,
		"traffic_id":     fmt.Sprintf("%s-%d", region, ts.Unix()),
	}
}

// bump is a gaussian bell centered on the given hour, width ~1.5h.
func bump(hour, center float64) float64 {
	d := hour - center
	return math.Exp(-d * d / 4.5)
}
