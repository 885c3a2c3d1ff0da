// Package standardize normalizes heterogeneous upstream documents into
// canonical Records. Coercion failures become missing values (NaN), never
// errors; the datasets are too messy for anything stricter.
package standardize

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"traffic-analytics/internal/domain"
)

// Column aliases seen across the regional datasets.
var renameMap = map[string]string{
	"traffic_volume (vehicles/hour)": "traffic_volume",
	"average_speed (km/h)":           "average_speed",
	"Date_Time":                      "datetime",
	"Date_time":                      "datetime",
	"date_time":                      "datetime",
}

// Identifier columns dropped from analysis.
var droppedColumns = map[string]bool{
	"_id":        true,
	"traffic_id": true,
	"region_id":  true,
	"city":       true,
}

// Timestamp layouts tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
}

// Standardize converts raw documents into canonical records: renames aliased
// columns, coerces numerics (failures -> NaN), parses timestamps, defaults a
// missing incidents column to 0, derives time fields, and de-duplicates.
// When the dataset carries coordinate columns, records without a usable
// position are dropped, matching the upstream data contract.
func Standardize(raws []domain.RawRecord) []domain.Record {
	if len(raws) == 0 {
		return nil
	}

	hasCoords := false
	for _, raw := range raws {
		if _, ok := lookup(raw, "latitude"); ok {
			if _, ok := lookup(raw, "longitude"); ok {
				hasCoords = true
				break
			}
		}
	}

	records := make([]domain.Record, 0, len(raws))
	seen := make(map[string]bool, len(raws))

	for _, raw := range raws {
		rec := domain.Record{
			Volume:    coerceFloat(rawValue(raw, "traffic_volume")),
			Speed:     coerceFloat(rawValue(raw, "average_speed")),
			Incidents: coerceFloat(rawValue(raw, "incidents")),
			Latitude:  coerceFloat(rawValue(raw, "latitude")),
			Longitude: coerceFloat(rawValue(raw, "longitude")),
		}

		if _, ok := lookup(raw, "incidents"); !ok {
			rec.Incidents = 0
		}

		if v, ok := lookup(raw, "region_name"); ok {
			if s, ok := v.(string); ok {
				rec.Region = s
			}
		}

		if ts, ok := coerceTime(rawValue(raw, "datetime")); ok {
			rec.Timestamp = ts
			rec.Hour = ts.Hour()
			rec.Weekday = ts.Weekday()
			rec.Weekend = ts.Weekday() == time.Saturday || ts.Weekday() == time.Sunday
			rec.Month = ts.Month()
			rec.Year = ts.Year()
		}

		if hasCoords && !rec.HasCoordinates() {
			continue
		}

		key := dedupeKey(&rec)
		if seen[key] {
			continue
		}
		seen[key] = true
		records = append(records, rec)
	}

	return records
}

// rawValue resolves a canonical column through the rename map.
func rawValue(raw domain.RawRecord, canonical string) any {
	if v, ok := raw[canonical]; ok {
		return v
	}
	for alias, target := range renameMap {
		if target != canonical {
			continue
		}
		if v, ok := raw[alias]; ok {
			return v
		}
	}
	return nil
}

// lookup reports whether the canonical column is present under any alias.
func lookup(raw domain.RawRecord, canonical string) (any, bool) {
	if v, ok := raw[canonical]; ok {
		return v, true
	}
	for alias, target := range renameMap {
		if target == canonical {
			if v, ok := raw[alias]; ok {
				return v, true
			}
		}
	}
	return nil, false
}

// coerceFloat converts mixed numeric representations. Anything else is NaN.
func coerceFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// coerceTime converts time.Time values and common string layouts.
func coerceTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), true
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		return time.Time{}, false
	case int64:
		// Epoch seconds; the upstream collector writes these for some regions.
		return time.Unix(x, 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

func dedupeKey(r *domain.Record) string {
	return fmt.Sprintf("%d|%s|%.6f|%.6f|%.6f|%.6f|%.6f",
		r.Timestamp.UnixNano(), r.Region, r.Volume, r.Speed, r.Incidents, r.Latitude, r.Longitude)
}

// ApplyGuards replaces implausible readings with missing values: speed above
// maxSpeed and volume above maxVolume become NaN.
func ApplyGuards(records []domain.Record, maxSpeed, maxVolume float64) {
	for i := range records {
		if records[i].Speed > maxSpeed {
			records[i].Speed = math.NaN()
		}
		if records[i].Volume > maxVolume {
			records[i].Volume = math.NaN()
		}
	}
}

// Winsorize clips volume and speed to the [lo, hi] quantile range in place.
// Extremes are clipped, not discarded.
func Winsorize(records []domain.Record, lo, hi float64) {
	clip := func(get func(*domain.Record) *float64) {
		values := make([]float64, 0, len(records))
		for i := range records {
			v := *get(&records[i])
			if !math.IsNaN(v) {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return
		}
		sort.Float64s(values)
		low := Quantile(values, lo)
		high := Quantile(values, hi)
		for i := range records {
			p := get(&records[i])
			if math.IsNaN(*p) {
				continue
			}
			if *p < low {
				*p = low
			} else if *p > high {
				*p = high
			}
		}
	}

	clip(func(r *domain.Record) *float64 { return &r.Volume })
	clip(func(r *domain.Record) *float64 { return &r.Speed })
}

// Quantile returns the q-th quantile of sorted using linear interpolation.
// sorted must be pre-sorted ASC and non-empty.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	idx := q * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
