// Package httpapi exposes the analytics views as a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"traffic-analytics/internal/analytics"
	"traffic-analytics/internal/config"
	"traffic-analytics/internal/observability"
)

// Server bundles router and dependencies for the REST API.
type Server struct {
	cfg    config.Config
	svc    *analytics.Service
	engine *gin.Engine
}

// New constructs a server with routes and middleware.
func New(cfg config.Config, svc *analytics.Service) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.Use(corsMiddleware())
	engine.Use(latencyMiddleware())

	server := &Server{cfg: cfg, svc: svc, engine: engine}
	server.registerRoutes()
	return server
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(observability.Handler()))

	v1 := s.engine.Group("/api/v1")
	v1.GET("/datasets", s.handleDatasets)
	v1.GET("/datasets/:dataset/months", s.handleMonths)

	month := v1.Group("/datasets/:dataset/months/:month")
	month.GET("/regions", s.handleRegions)
	month.GET("/years", s.handleYears)
	month.GET("/summary", s.handleSummary)
	month.GET("/timeseries", s.handleTimeSeries)
	month.GET("/decomposition", s.handleDecomposition)
	month.GET("/trends", s.handleTrends)
	month.GET("/spatial", s.handleSpatial)
	month.POST("/correlation", s.handleCorrelation)
	month.GET("/export/timeseries", s.handleExportTimeSeries)
	month.GET("/export/regions", s.handleExportRegions)
	month.GET("/report", s.handleReport)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func latencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		observability.DefaultMetrics.RequestDuration.WithLabelValues(route, status).Observe(time.Since(start).Seconds())
	}
}
