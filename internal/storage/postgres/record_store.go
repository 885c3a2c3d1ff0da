// Package postgres implements the RecordStore over a relational mirror of
// the document store: one schema per regional dataset, one table per month
// of flat records. Used by deployments that archive the raw collections
// into Postgres.
package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"traffic-analytics/internal/domain"
	"traffic-analytics/internal/storage"
)

// RecordStore is a Postgres implementation of storage.RecordStore.
type RecordStore struct {
	pool *pgxpool.Pool
}

// NewRecordStore creates a connection pool and verifies the connection.
func NewRecordStore(ctx context.Context, dsn string) (*RecordStore, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}

	return &RecordStore{pool: pool}, nil
}

// ListDatasets returns the dataset schemas, sorted.
func (s *RecordStore) ListDatasets(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT schema_name FROM information_schema.schemata
		 WHERE schema_name LIKE 'historical\_%'`)
	if err != nil {
		return nil, fmt.Errorf("%w: list schemas: %v", storage.ErrUnavailable, err)
	}
	defer rows.Close()

	var datasets []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan schema name: %w", err)
		}
		datasets = append(datasets, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list schemas: %v", storage.ErrUnavailable, err)
	}
	sort.Strings(datasets)
	return datasets, nil
}

// ListMonths returns the month tables present in the dataset schema in
// calendar order.
func (s *RecordStore) ListMonths(ctx context.Context, dataset string) ([]string, error) {
	if err := s.datasetExists(ctx, dataset); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT table_name FROM information_schema.tables WHERE table_schema = $1`, dataset)
	if err != nil {
		return nil, fmt.Errorf("%w: list tables: %v", storage.ErrUnavailable, err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list tables: %v", storage.ErrUnavailable, err)
	}

	var months []string
	for _, m := range domain.MonthNames {
		if present[m] {
			months = append(months, m)
		}
	}
	return months, nil
}

// FetchMonth reads every row of the month table as a raw record. A missing
// table yields an empty result, mirroring a missing collection in the
// document store.
func (s *RecordStore) FetchMonth(ctx context.Context, dataset, month string) ([]domain.RawRecord, error) {
	months, err := s.ListMonths(ctx, dataset)
	if err != nil {
		return nil, err
	}
	found := false
	for _, m := range months {
		if m == month {
			found = true
			break
		}
	}
	if !found {
		return nil, nil
	}

	// Identifiers cannot be bound as parameters; both names were validated
	// against catalog listings above.
	query := fmt.Sprintf(`SELECT * FROM %q.%q`, dataset, month)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s/%s: %v", storage.ErrUnavailable, dataset, month, err)
	}
	defer rows.Close()

	descs := rows.FieldDescriptions()
	columns := make([]string, len(descs))
	for i, d := range descs {
		columns[i] = d.Name
	}

	var records []domain.RawRecord
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		raw := make(domain.RawRecord, len(columns))
		for i, col := range columns {
			raw[col] = values[i]
		}
		records = append(records, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s/%s: %v", storage.ErrUnavailable, dataset, month, err)
	}
	return records, nil
}

// Ping verifies the connection.
func (s *RecordStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *RecordStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *RecordStore) datasetExists(ctx context.Context, dataset string) error {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)`,
		dataset).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%w: check schema: %v", storage.ErrUnavailable, err)
	}
	if !exists {
		return storage.ErrNotFound
	}
	return nil
}

var _ storage.RecordStore = (*RecordStore)(nil)
