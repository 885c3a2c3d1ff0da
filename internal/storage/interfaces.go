package storage

import (
	"context"

	"traffic-analytics/internal/domain"
)

// RecordStore provides access to the upstream per-month record collections.
// A dataset is one region's historical database; each month of data is a
// distinct named collection of flat records.
type RecordStore interface {
	// ListDatasets returns the dataset names this store can serve.
	ListDatasets(ctx context.Context) ([]string, error)

	// ListMonths returns the month collections present for a dataset.
	// Returns ErrNotFound if the dataset does not exist.
	ListMonths(ctx context.Context, dataset string) ([]string, error)

	// FetchMonth retrieves all raw records for (dataset, month).
	// Returns ErrNotFound if the dataset does not exist. A missing or empty
	// month collection yields an empty slice and no error; callers surface
	// that as a "no data" state.
	FetchMonth(ctx context.Context, dataset, month string) ([]domain.RawRecord, error)

	// Ping verifies the backing connection.
	Ping(ctx context.Context) error

	// Close releases the backing connection.
	Close() error
}
