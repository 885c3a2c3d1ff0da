// Package correlate joins user-supplied external factors against the
// resampled traffic base frame and measures their association with volume
// and speed.
package correlate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"traffic-analytics/internal/domain"
)

// Upload faults are the caller's to fix, never server errors.
var (
	// ErrBadUpload wraps structural faults in the uploaded table: an
	// unreadable CSV or a timestamp column that is not present.
	ErrBadUpload = errors.New("malformed external factors upload")

	// ErrNoTimestamps is returned when the chosen timestamp column yields no
	// parseable values; no partial correlation is computed in that case.
	ErrNoTimestamps = errors.New("no parseable timestamps in selected column")
)

// Timestamp layouts accepted in uploads.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04",
	"2006-01-02",
}

// ExternalRow is one upload row with its parsed timestamp and numeric values.
type ExternalRow struct {
	Timestamp time.Time
	Values    []float64 // aligned with ExternalTable.Columns, NaN if malformed
}

// ExternalTable is a parsed external-factors upload.
type ExternalTable struct {
	Columns []string // numeric columns, upload order
	Rows    []ExternalRow
}

// ParseCSV reads an external-factors upload. timestampColumn names the column
// to parse as time; every other column is treated as numeric with malformed
// cells becoming NaN. Rows whose timestamp does not parse are dropped; if
// none survive, ErrNoTimestamps is returned.
func ParseCSV(r io.Reader, timestampColumn string) (*ExternalTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read csv header: %v", ErrBadUpload, err)
	}

	tsIdx := -1
	var columns []string
	var colIdx []int
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == timestampColumn {
			tsIdx = i
			continue
		}
		columns = append(columns, name)
		colIdx = append(colIdx, i)
	}
	if tsIdx < 0 {
		return nil, fmt.Errorf("%w: timestamp column %q not found", ErrBadUpload, timestampColumn)
	}

	table := &ExternalTable{Columns: columns}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read csv row: %v", ErrBadUpload, err)
		}
		if tsIdx >= len(record) {
			continue
		}
		ts, ok := parseTime(record[tsIdx])
		if !ok {
			continue
		}
		row := ExternalRow{Timestamp: ts, Values: make([]float64, len(columns))}
		for j, idx := range colIdx {
			if idx >= len(record) {
				row.Values[j] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
			if err != nil {
				row.Values[j] = math.NaN()
			} else {
				row.Values[j] = v
			}
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		return nil, ErrNoTimestamps
	}
	return table, nil
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Resample buckets the external table onto the fixed grid by mean, the same
// contract as the traffic resampler: empty buckets are NaN.
func Resample(table *ExternalTable, gran domain.Granularity) *domain.Frame {
	if table == nil || len(table.Rows) == 0 {
		return domain.NewFrame(nil)
	}

	step := gran.Step()
	minB := bucketStart(table.Rows[0].Timestamp, gran)
	maxB := minB
	for _, row := range table.Rows[1:] {
		b := bucketStart(row.Timestamp, gran)
		if b.Before(minB) {
			minB = b
		}
		if b.After(maxB) {
			maxB = b
		}
	}

	n := int(maxB.Sub(minB)/step) + 1
	index := make([]time.Time, n)
	for i := range index {
		index[i] = minB.Add(time.Duration(i) * step)
	}

	frame := domain.NewFrame(index)
	for c, name := range table.Columns {
		sums := make([]float64, n)
		counts := make([]int, n)
		for _, row := range table.Rows {
			v := row.Values[c]
			if math.IsNaN(v) {
				continue
			}
			idx := int(bucketStart(row.Timestamp, gran).Sub(minB) / step)
			sums[idx] += v
			counts[idx]++
		}
		values := make([]float64, n)
		for i := range values {
			if counts[i] == 0 {
				values[i] = math.NaN()
			} else {
				values[i] = sums[i] / float64(counts[i])
			}
		}
		frame.AddColumn(name, values)
	}
	return frame
}

func bucketStart(ts time.Time, gran domain.Granularity) time.Time {
	ts = ts.UTC()
	if gran == domain.GranularityDaily {
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	}
	return ts.Truncate(time.Hour)
}

// InnerJoin aligns two frames on equal bucket timestamps. Only buckets
// present in both survive; there is no extrapolation.
func InnerJoin(base, ext *domain.Frame) *domain.Frame {
	if base.Empty() || ext.Empty() {
		return domain.NewFrame(nil)
	}

	extPos := make(map[int64]int, ext.Len())
	for i, ts := range ext.Index {
		extPos[ts.UnixNano()] = i
	}

	var index []time.Time
	var basePos, joinExtPos []int
	for i, ts := range base.Index {
		if j, ok := extPos[ts.UnixNano()]; ok {
			index = append(index, ts)
			basePos = append(basePos, i)
			joinExtPos = append(joinExtPos, j)
		}
	}

	joined := domain.NewFrame(index)
	for _, name := range base.Columns() {
		src := base.Column(name)
		values := make([]float64, len(index))
		for k, i := range basePos {
			values[k] = src[i]
		}
		joined.AddColumn(name, values)
	}
	for _, name := range ext.Columns() {
		src := ext.Column(name)
		values := make([]float64, len(index))
		for k, j := range joinExtPos {
			values[k] = src[j]
		}
		joined.AddColumn(name, values)
	}
	return joined
}
