// Package analytics orchestrates the record store, standardization, and the
// analysis views. It is the single entry point used by the HTTP API and the
// export command.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"traffic-analytics/internal/cache"
	"traffic-analytics/internal/decompose"
	"traffic-analytics/internal/domain"
	"traffic-analytics/internal/observability"
	"traffic-analytics/internal/resample"
	"traffic-analytics/internal/standardize"
	"traffic-analytics/internal/storage"
)

// ErrNoData signals that the selected month holds no usable records.
var ErrNoData = errors.New("no records for the selected month")

// Winsorization bounds applied under the robust view.
const (
	winsorizeLow  = 0.01
	winsorizeHigh = 0.99
)

// GuardOptions are the per-request data-quality settings.
type GuardOptions struct {
	MaxSpeed  float64
	MaxVolume float64
	Winsorize bool
}

// Query selects and filters one month of one dataset.
type Query struct {
	Dataset string
	Month   string
	Year    int      // 0 means all years present in the month collection
	Regions []string // empty means all regions
	Guards  GuardOptions
}

// Service loads, standardizes, and caches month records.
type Service struct {
	store   storage.RecordStore
	cache   *cache.MonthCache
	backend string
}

// NewService creates a service over the given record store. The backend name
// labels store metrics.
func NewService(store storage.RecordStore, monthCache *cache.MonthCache, backend string) *Service {
	return &Service{
		store:   store,
		cache:   monthCache,
		backend: backend,
	}
}

// Datasets lists the available historical datasets.
func (s *Service) Datasets(ctx context.Context) ([]string, error) {
	start := time.Now()
	datasets, err := s.store.ListDatasets(ctx)
	observability.RecordStoreQuery(s.backend, "list_datasets", time.Since(start).Seconds())
	return datasets, err
}

// Months lists the month collections present for a dataset in calendar order.
func (s *Service) Months(ctx context.Context, dataset string) ([]string, error) {
	start := time.Now()
	months, err := s.store.ListMonths(ctx, dataset)
	observability.RecordStoreQuery(s.backend, "list_months", time.Since(start).Seconds())
	return months, err
}

// Ping verifies the record store connection.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// LoadMonth returns standardized records for (dataset, month), without
// data-quality guards applied. Results are cached; guards vary per request
// and are applied on top by PreparedMonth.
func (s *Service) LoadMonth(ctx context.Context, dataset, month string) ([]domain.Record, error) {
	if domain.MonthNumber(month) == 0 {
		return nil, fmt.Errorf("%w: unknown month %q", storage.ErrNotFound, month)
	}

	key := cache.Key{Dataset: dataset, Month: month}
	if records, ok := s.cache.Get(key); ok {
		observability.RecordCacheHit()
		return records, nil
	}
	observability.RecordCacheMiss()

	start := time.Now()
	raws, err := s.store.FetchMonth(ctx, dataset, month)
	observability.RecordStoreQuery(s.backend, "fetch_month", time.Since(start).Seconds())
	if err != nil {
		observability.RecordLoadError(s.backend)
		return nil, err
	}

	records := standardize.Standardize(raws)
	observability.RecordDropped("standardize", len(raws)-len(records))
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoData, dataset, month)
	}

	s.cache.Put(key, records)
	observability.RecordLoad(s.backend, len(records))
	observability.DefaultMetrics.LastSuccessfulLoad.Set(float64(time.Now().Unix()))
	log.Printf("[analytics] loaded %s/%s: %d records", dataset, month, len(records))
	return records, nil
}

// PreparedMonth loads a month and applies the query's data-quality guards and
// filters to a copy of the cached records. Guards and winsorization run over
// the whole month before any filtering, so a region-focused view clips
// against the same quantile bounds as the full view.
func (s *Service) PreparedMonth(ctx context.Context, q Query) ([]domain.Record, error) {
	loaded, err := s.LoadMonth(ctx, q.Dataset, q.Month)
	if err != nil {
		return nil, err
	}

	records := make([]domain.Record, len(loaded))
	copy(records, loaded)

	standardize.ApplyGuards(records, q.Guards.MaxSpeed, q.Guards.MaxVolume)
	if q.Guards.Winsorize {
		standardize.Winsorize(records, winsorizeLow, winsorizeHigh)
	}

	records = filterRegions(records, q.Regions)
	if q.Year != 0 {
		records = filterYear(records, q.Year)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoData, q.Dataset, q.Month)
	}
	return records, nil
}

// Regions lists the distinct region names present in a month, sorted.
func (s *Service) Regions(ctx context.Context, dataset, month string) ([]string, error) {
	records, err := s.LoadMonth(ctx, dataset, month)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for i := range records {
		if records[i].Region != "" {
			seen[records[i].Region] = struct{}{}
		}
	}
	regions := make([]string, 0, len(seen))
	for region := range seen {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions, nil
}

// TimeSeries resamples the prepared records onto a regular grid.
func (s *Service) TimeSeries(ctx context.Context, q Query, gran domain.Granularity) (*domain.Frame, error) {
	records, err := s.PreparedMonth(ctx, q)
	if err != nil {
		return nil, err
	}

	frame := resample.Resample(records, gran, resample.BaseFields())
	if frame.Empty() {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoData, q.Dataset, q.Month)
	}
	return frame, nil
}

// Decomposition resamples the metric hourly, forward-fills gaps, and
// decomposes it into trend, seasonal, and residual components.
func (s *Service) Decomposition(ctx context.Context, q Query, metric, method string) (*domain.DecompositionResult, error) {
	records, err := s.PreparedMonth(ctx, q)
	if err != nil {
		return nil, err
	}

	index, values := resample.DecompositionInput(records, metric)
	result, err := decompose.Decompose(index, values, decompose.DefaultPeriod, method)
	if err != nil {
		if errors.Is(err, decompose.ErrInsufficientData) {
			observability.RecordInsufficientData()
		}
		return nil, err
	}

	observability.RecordDecomposition(result.Method)
	return result, nil
}

// filterRegions restricts records to the given regions when the list is
// non-empty.
func filterRegions(records []domain.Record, regions []string) []domain.Record {
	if len(regions) == 0 {
		return records
	}

	allowed := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		allowed[r] = struct{}{}
	}

	var out []domain.Record
	for i := range records {
		if _, ok := allowed[records[i].Region]; ok {
			out = append(out, records[i])
		}
	}
	return out
}

func filterYear(records []domain.Record, year int) []domain.Record {
	var out []domain.Record
	for i := range records {
		if records[i].Year == year {
			out = append(out, records[i])
		}
	}
	return out
}

// Years lists the distinct years present in a month collection, ascending.
func (s *Service) Years(ctx context.Context, dataset, month string) ([]int, error) {
	records, err := s.LoadMonth(ctx, dataset, month)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{})
	for i := range records {
		seen[records[i].Year] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}
