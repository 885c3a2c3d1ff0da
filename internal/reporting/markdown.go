package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders a report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Traffic Report: %s / %s\n\n", r.Dataset, r.Month))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Records | %d |\n", r.DataSummary.RecordCount))
	sb.WriteString(fmt.Sprintf("| Regions | %d |\n", r.DataSummary.RegionCount))
	sb.WriteString(fmt.Sprintf("| Records with Coordinates | %d |\n", r.DataSummary.CoordinateCount))
	sb.WriteString(fmt.Sprintf("| Total Volume | %.0f |\n", r.DataSummary.TotalVolume))
	sb.WriteString(fmt.Sprintf("| Mean Speed | %.2f |\n", r.DataSummary.MeanSpeed))
	sb.WriteString(fmt.Sprintf("| Incidents | %.0f |\n", r.DataSummary.IncidentCount))
	sb.WriteString(fmt.Sprintf("| Coverage Days | %d |\n", r.DataSummary.CoverageDays))
	if !r.DataSummary.DateRangeStart.IsZero() {
		sb.WriteString(fmt.Sprintf("| Date Range | %s to %s |\n",
			r.DataSummary.DateRangeStart.Format(time.RFC3339),
			r.DataSummary.DateRangeEnd.Format(time.RFC3339)))
	}
	sb.WriteString("\n")

	// Regional breakdown
	sb.WriteString("## Regions\n\n")
	if len(r.Regions) == 0 {
		sb.WriteString("No regional data.\n")
		return sb.String()
	}
	sb.WriteString("| Region | Total Volume | Avg Speed | Incidents | Records |\n")
	sb.WriteString("|--------|--------------|-----------|-----------|----------|\n")
	for _, region := range r.Regions {
		sb.WriteString(fmt.Sprintf("| %s | %.0f | %.2f | %.0f | %d |\n",
			region.Region,
			region.TotalVolume,
			region.AvgSpeed,
			region.IncidentCount,
			region.RecordCount,
		))
	}

	return sb.String()
}
