package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"traffic-analytics/internal/annotate"
	"traffic-analytics/internal/correlate"
	"traffic-analytics/internal/domain"
	"traffic-analytics/internal/observability"
	"traffic-analytics/internal/reporting"
	"traffic-analytics/internal/spatial"
	"traffic-analytics/internal/trend"
	"traffic-analytics/internal/viewport"
)

const (
	listTimeout = 10 * time.Second
	viewTimeout = 30 * time.Second

	defaultExtremes      = 3
	defaultRollingWindow = 24
)

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), listTimeout)
	defer cancel()

	if err := s.svc.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleDatasets(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), listTimeout)
	defer cancel()

	datasets, err := s.svc.Datasets(ctx)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"datasets": datasets})
}

func (s *Server) handleMonths(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), listTimeout)
	defer cancel()

	months, err := s.svc.Months(ctx, c.Param("dataset"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": months})
}

func (s *Server) handleRegions(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), viewTimeout)
	defer cancel()

	regions, err := s.svc.Regions(ctx, c.Param("dataset"), c.Param("month"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"regions": regions})
}

func (s *Server) handleYears(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), viewTimeout)
	defer cancel()

	years, err := s.svc.Years(ctx, c.Param("dataset"), c.Param("month"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"years": years})
}

func (s *Server) handleSummary(c *gin.Context) {
	q, err := s.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), viewTimeout)
	defer cancel()

	records, err := s.svc.PreparedMonth(ctx, q)
	if err != nil {
		renderError(c, err)
		return
	}

	summary := reporting.Summarize(records)
	c.JSON(http.StatusOK, gin.H{
		"records":          summary.RecordCount,
		"regions":          summary.RegionCount,
		"coordinate_count": summary.CoordinateCount,
		"total_volume":     summary.TotalVolume,
		"mean_speed":       jsonValue(summary.MeanSpeed),
		"incidents":        summary.IncidentCount,
		"coverage_days":    summary.CoverageDays,
		"range_start":      summary.DateRangeStart.UTC().Format(time.RFC3339),
		"range_end":        summary.DateRangeEnd.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleTimeSeries(c *gin.Context) {
	q, err := s.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	gran, err := parseGranularity(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	extremes := defaultExtremes
	if nStr := c.Query("extremes"); nStr != "" {
		n, err := strconv.Atoi(nStr)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid extremes"})
			return
		}
		extremes = n
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), viewTimeout)
	defer cancel()

	frame, err := s.svc.TimeSeries(ctx, q, gran)
	if err != nil {
		renderError(c, err)
		return
	}

	window := annotate.SmoothingWindow(frame.Len())
	smoothed := make(gin.H, len(frame.Columns()))
	marks := make(gin.H, len(frame.Columns()))
	for _, metric := range frame.Columns() {
		values := frame.Column(metric)
		smoothed[metric] = jsonSeries(annotate.MovingAverage(values, window))
		highs, lows := annotate.TopN(values, extremes)
		marks[metric] = gin.H{
			"highs": extremaJSON(frame.Index, highs),
			"lows":  extremaJSON(frame.Index, lows),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"granularity":      gran,
		"index":            jsonIndex(frame.Index),
		"series":           frameJSON(frame)["columns"],
		"smoothing_window": window,
		"smoothed":         smoothed,
		"extremes":         marks,
	})
}

func extremaJSON(index []time.Time, points []annotate.Extremum) []gin.H {
	out := make([]gin.H, len(points))
	for i, p := range points {
		out[i] = gin.H{
			"timestamp": index[p.Position].UTC().Format(time.RFC3339),
			"value":     p.Value,
		}
	}
	return out
}

func (s *Server) handleDecomposition(c *gin.Context) {
	q, err := s.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	metric, err := parseMetric(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	method := c.DefaultQuery("method", domain.MethodRobust)
	if method != domain.MethodRobust && method != domain.MethodClassical {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid method: want robust or classical"})
		return
	}

	stat := annotate.RollStat(c.DefaultQuery("rolling_stat", string(annotate.RollMean)))
	if !stat.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rolling_stat"})
		return
	}

	window := defaultRollingWindow
	if wStr := c.Query("rolling_window"); wStr != "" {
		w, err := strconv.Atoi(wStr)
		if err != nil || w <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rolling_window"})
			return
		}
		window = w
	}

	mode := viewport.BottomMode(c.DefaultQuery("bottom", string(viewport.BottomSeasonalAndResidual)))
	if !mode.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bottom panel mode"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), viewTimeout)
	defer cancel()

	result, err := s.svc.Decomposition(ctx, q, metric, method)
	if err != nil {
		renderError(c, err)
		return
	}

	window = annotate.ClampRollingWindow(window, result.Len())
	rolling, err := annotate.Rolling(result.Residual, window, stat)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title := fmt.Sprintf("Residual (rolling %s, %dh)", stat, window)
	stack, err := viewport.NewStack(result, rolling, title, mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metric":         metric,
		"method":         result.Method,
		"params":         result.Params,
		"rolling_stat":   stat,
		"rolling_window": window,
		"stack":          stackJSON(stack),
	})
}

func (s *Server) handleTrends(c *gin.Context) {
	q, err := s.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	metric, err := parseMetric(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), viewTimeout)
	defer cancel()

	records, err := s.svc.PreparedMonth(ctx, q)
	if err != nil {
		renderError(c, err)
		return
	}

	weekday, weekend := trend.DailyPattern(records, metric)
	heatmap := trend.WeekHourHeatmap(records, domain.MetricSpeed)

	heatmapRows := make([][]*float64, len(heatmap.Values))
	for i, row := range heatmap.Values {
		heatmapRows[i] = jsonSeries(row)
	}

	c.JSON(http.StatusOK, gin.H{
		"metric": metric,
		"daily_pattern": gin.H{
			"weekday":      jsonSeries(weekday.Medians),
			"weekend":      jsonSeries(weekend.Medians),
			"am_peak_hour": trend.AMPeakHour,
			"pm_peak_hour": trend.PMPeakHour,
		},
		"speed_heatmap": gin.H{
			"days":   heatmap.Days,
			"values": heatmapRows,
		},
	})
}

func (s *Server) handleSpatial(c *gin.Context) {
	q, err := s.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), viewTimeout)
	defer cancel()

	records, err := s.svc.PreparedMonth(ctx, q)
	if err != nil {
		renderError(c, err)
		return
	}

	summaries := spatial.Summarize(records)
	coverage := spatial.Coverage(records)

	rows := make([]gin.H, len(summaries))
	for i, r := range summaries {
		rows[i] = gin.H{
			"region":         r.Region,
			"total_volume":   r.TotalVolume,
			"avg_speed":      jsonValue(r.AvgSpeed),
			"incident_count": r.IncidentCount,
			"record_count":   r.RecordCount,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"regions": rows,
		"coverage": gin.H{
			"region_count":     coverage.RegionCount,
			"coordinate_count": coverage.CoordinateCount,
			"center_latitude":  jsonValue(coverage.CenterLatitude),
			"center_longitude": jsonValue(coverage.CenterLongitude),
		},
	})
}

func (s *Server) handleCorrelation(c *gin.Context) {
	q, err := s.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	gran, err := parseGranularity(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	method := c.DefaultQuery("method", correlate.MethodPearson)
	tsColumn := c.Query("timestamp_column")
	if tsColumn == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timestamp_column is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "external factors CSV upload is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	table, err := correlate.ParseCSV(file, tsColumn)
	if err != nil {
		renderError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), viewTimeout)
	defer cancel()

	result, err := s.svc.Correlate(ctx, q, gran, table, method)
	if err != nil {
		renderError(c, err)
		return
	}

	if c.Query("format") == "csv" {
		observability.RecordExport("merged")
		filename := fmt.Sprintf("merged_%s_external.csv", gran)
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, "text/csv", []byte(reporting.RenderFrameCSV(result.Merged)))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"granularity":         gran,
		"method":              method,
		"volume_correlations": correlationsJSON(result.VolumeCorrelations),
		"speed_correlations":  correlationsJSON(result.SpeedCorrelations),
		"merged":              frameJSON(result.Merged),
	})
}

func correlationsJSON(features []correlate.FeatureCorrelation) []gin.H {
	out := make([]gin.H, len(features))
	for i, f := range features {
		out[i] = gin.H{"feature": f.Feature, "correlation": jsonValue(f.Correlation)}
	}
	return out
}

func (s *Server) handleExportTimeSeries(c *gin.Context) {
	q, err := s.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	gran, err := parseGranularity(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), viewTimeout)
	defer cancel()

	frame, err := s.svc.TimeSeries(ctx, q, gran)
	if err != nil {
		renderError(c, err)
		return
	}

	observability.RecordExport("timeseries")
	filename := fmt.Sprintf("timeseries_%s_%s_%s.csv", q.Dataset, q.Month, gran)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", []byte(reporting.RenderFrameCSV(frame)))
}

func (s *Server) handleExportRegions(c *gin.Context) {
	q, err := s.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), viewTimeout)
	defer cancel()

	records, err := s.svc.PreparedMonth(ctx, q)
	if err != nil {
		renderError(c, err)
		return
	}

	observability.RecordExport("regions")
	filename := fmt.Sprintf("regional_summary_%s_%s.csv", q.Dataset, q.Month)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", []byte(reporting.RenderRegionalCSV(spatial.Summarize(records))))
}

func (s *Server) handleReport(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), viewTimeout)
	defer cancel()

	report, err := reporting.NewGenerator(s.svc).Generate(ctx, c.Param("dataset"), c.Param("month"))
	if err != nil {
		renderError(c, err)
		return
	}

	observability.RecordExport("report")
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(reporting.RenderMarkdown(report)))
}
