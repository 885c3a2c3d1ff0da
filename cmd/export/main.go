// Package main generates offline exports for one month of one dataset: a
// Markdown report, the regional summary CSV, and the resampled time-series
// CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"traffic-analytics/internal/analytics"
	"traffic-analytics/internal/cache"
	"traffic-analytics/internal/config"
	"traffic-analytics/internal/domain"
	"traffic-analytics/internal/reporting"
	"traffic-analytics/internal/spatial"
	"traffic-analytics/internal/storage"
	"traffic-analytics/internal/storage/memory"
	mongostore "traffic-analytics/internal/storage/mongo"
	pgstore "traffic-analytics/internal/storage/postgres"
)

func main() {
	// Parse flags; store connection settings come from the environment.
	dataset := flag.String("dataset", "", "Dataset name (e.g., historical_metro)")
	month := flag.String("month", "", "Month collection name (e.g., January)")
	granStr := flag.String("granularity", string(domain.GranularityHourly), "Resample granularity: hourly or daily")
	outputDir := flag.String("output-dir", "exports", "Output directory for generated files")
	year := flag.Int("year", 0, "Restrict to one year (0 = all years in the month)")
	flag.Parse()

	if *dataset == "" || *month == "" {
		fmt.Fprintln(os.Stderr, "Error: --dataset and --month are required")
		os.Exit(1)
	}
	gran := domain.Granularity(*granStr)
	if !gran.Valid() {
		fmt.Fprintln(os.Stderr, "Error: --granularity must be hourly or daily")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to %s store: %v\n", cfg.Backend, err)
		os.Exit(1)
	}
	defer store.Close()

	svc := analytics.NewService(store, cache.New(cfg.CacheTTL), cfg.Backend)
	q := analytics.Query{
		Dataset: *dataset,
		Month:   *month,
		Year:    *year,
		Guards: analytics.GuardOptions{
			MaxSpeed:  cfg.MaxSpeed,
			MaxVolume: cfg.MaxVolume,
			Winsorize: cfg.Winsorize,
		},
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	records, err := svc.PreparedMonth(ctx, q)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s/%s: %v\n", *dataset, *month, err)
		os.Exit(1)
	}

	report, err := reporting.NewGenerator(svc).Generate(ctx, *dataset, *month)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	frame, err := svc.TimeSeries(ctx, q, gran)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resampling: %v\n", err)
		os.Exit(1)
	}

	outputs := []struct {
		name    string
		content string
	}{
		{fmt.Sprintf("REPORT_%s_%s.md", *dataset, *month), reporting.RenderMarkdown(report)},
		{fmt.Sprintf("regional_summary_%s_%s.csv", *dataset, *month), reporting.RenderRegionalCSV(spatial.Summarize(records))},
		{fmt.Sprintf("timeseries_%s_%s_%s.csv", *dataset, *month, gran), reporting.RenderFrameCSV(frame)},
	}

	fmt.Println("Exports generated successfully:")
	for _, out := range outputs {
		path := filepath.Join(*outputDir, out.name)
		if err := os.WriteFile(path, []byte(out.content), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("  - %s\n", path)
	}
}

func openStore(ctx context.Context, cfg config.Config) (storage.RecordStore, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		return pgstore.NewRecordStore(ctx, cfg.PostgresDSN)
	case config.BackendMemory:
		return memory.NewRecordStore(), nil
	default:
		return mongostore.NewRecordStore(ctx, cfg.MongoURI)
	}
}
