package httpapi

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"traffic-analytics/internal/analytics"
	"traffic-analytics/internal/correlate"
	"traffic-analytics/internal/decompose"
	"traffic-analytics/internal/domain"
	"traffic-analytics/internal/storage"
	"traffic-analytics/internal/viewport"
)

// renderError maps service errors onto HTTP statuses. Missing data is a
// client-resolvable condition, never a 500.
func renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, analytics.ErrNoData):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, correlate.ErrBadUpload), errors.Is(err, correlate.ErrNoTimestamps):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, decompose.ErrInsufficientData),
		errors.Is(err, analytics.ErrNoOverlap),
		errors.Is(err, analytics.ErrNoFeatures):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// jsonSeries converts a float series to a JSON-safe form: NaN becomes null.
func jsonSeries(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		if !math.IsNaN(values[i]) {
			v := values[i]
			out[i] = &v
		}
	}
	return out
}

// jsonValue converts one float to a JSON-safe pointer.
func jsonValue(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func jsonIndex(index []time.Time) []string {
	out := make([]string, len(index))
	for i, ts := range index {
		out[i] = ts.UTC().Format(time.RFC3339)
	}
	return out
}

func frameJSON(frame *domain.Frame) gin.H {
	columns := make(gin.H, len(frame.Columns()))
	for _, name := range frame.Columns() {
		columns[name] = jsonSeries(frame.Column(name))
	}
	return gin.H{
		"index":   jsonIndex(frame.Index),
		"columns": columns,
	}
}

func panelJSON(p viewport.Panel) gin.H {
	series := make([]gin.H, len(p.Series))
	for i, s := range p.Series {
		series[i] = gin.H{"name": s.Name, "values": jsonSeries(s.Values)}
	}
	return gin.H{"title": p.Title, "series": series}
}

func stackJSON(s *viewport.Stack) gin.H {
	panels := make([]gin.H, len(s.Panels))
	for i := range s.Panels {
		panels[i] = panelJSON(s.Panels[i])
	}
	return gin.H{
		"index": jsonIndex(s.Index),
		"viewport": gin.H{
			"start": s.Viewport.Start.UTC().Format(time.RFC3339),
			"end":   s.Viewport.End.UTC().Format(time.RFC3339),
		},
		"panels":      panels,
		"bottom_mode": s.BottomMode,
	}
}

// parseQuery builds the month selection from path and query parameters, with
// guard defaults taken from configuration.
func (s *Server) parseQuery(c *gin.Context) (analytics.Query, error) {
	q := analytics.Query{
		Dataset: c.Param("dataset"),
		Month:   c.Param("month"),
		Guards: analytics.GuardOptions{
			MaxSpeed:  s.cfg.MaxSpeed,
			MaxVolume: s.cfg.MaxVolume,
			Winsorize: s.cfg.Winsorize,
		},
	}

	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil || year < 0 {
			return q, errors.New("invalid year")
		}
		q.Year = year
	}

	if regionsStr := c.Query("regions"); regionsStr != "" {
		for _, region := range strings.Split(regionsStr, ",") {
			if region = strings.TrimSpace(region); region != "" {
				q.Regions = append(q.Regions, region)
			}
		}
	}

	if speedStr := c.Query("max_speed"); speedStr != "" {
		speed, err := strconv.ParseFloat(speedStr, 64)
		if err != nil || speed <= 0 {
			return q, errors.New("invalid max_speed")
		}
		q.Guards.MaxSpeed = speed
	}

	if volumeStr := c.Query("max_volume"); volumeStr != "" {
		volume, err := strconv.ParseFloat(volumeStr, 64)
		if err != nil || volume <= 0 {
			return q, errors.New("invalid max_volume")
		}
		q.Guards.MaxVolume = volume
	}

	if winStr := c.Query("winsorize"); winStr != "" {
		win, err := strconv.ParseBool(winStr)
		if err != nil {
			return q, errors.New("invalid winsorize")
		}
		q.Guards.Winsorize = win
	}

	return q, nil
}

func parseGranularity(c *gin.Context) (domain.Granularity, error) {
	gran := domain.Granularity(c.DefaultQuery("granularity", string(domain.GranularityHourly)))
	if !gran.Valid() {
		return "", errors.New("invalid granularity: want hourly or daily")
	}
	return gran, nil
}

func parseMetric(c *gin.Context) (string, error) {
	metric := c.DefaultQuery("metric", domain.MetricVolume)
	switch metric {
	case domain.MetricVolume, domain.MetricSpeed, domain.MetricIncidents:
		return metric, nil
	}
	return "", errors.New("invalid metric")
}
