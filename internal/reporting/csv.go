package reporting

import (
	"fmt"
	"math"
	"strings"
	"time"

	"traffic-analytics/internal/domain"
	"traffic-analytics/internal/spatial"
)

// RenderRegionalCSV renders regional summaries as a CSV string.
func RenderRegionalCSV(regions []spatial.RegionSummary) string {
	var sb strings.Builder

	sb.WriteString("region,total_volume,avg_speed,incident_count,record_count\n")
	for _, r := range regions {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%d\n",
			csvField(r.Region),
			formatValue(r.TotalVolume),
			formatValue(r.AvgSpeed),
			formatValue(r.IncidentCount),
			r.RecordCount,
		))
	}

	return sb.String()
}

// RenderFrameCSV renders a resampled frame as a CSV string with a leading
// timestamp column. Missing values render as empty cells.
func RenderFrameCSV(frame *domain.Frame) string {
	var sb strings.Builder

	columns := frame.Columns()
	sb.WriteString("timestamp")
	for _, name := range columns {
		sb.WriteString(",")
		sb.WriteString(csvField(name))
	}
	sb.WriteString("\n")

	for i, ts := range frame.Index {
		sb.WriteString(ts.UTC().Format(time.RFC3339))
		for _, name := range columns {
			sb.WriteString(",")
			sb.WriteString(formatValue(frame.Column(name)[i]))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.6f", v)
}

// csvField quotes a field if it contains a separator or quote.
func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
