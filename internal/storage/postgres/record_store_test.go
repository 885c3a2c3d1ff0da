package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"traffic-analytics/internal/storage"
)

// setupTestStore starts a Postgres container, seeds the relational mirror,
// and returns a connected store. The cleanup function must be called after
// tests complete.
func setupTestStore(t *testing.T) (*RecordStore, func()) {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("traffic_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	store, err := NewRecordStore(ctx, dsn)
	require.NoError(t, err, "failed to create record store")
	seedTestData(t, ctx, store)

	cleanup := func() {
		store.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return store, cleanup
}

func seedTestData(t *testing.T, ctx context.Context, store *RecordStore) {
	t.Helper()

	statements := []string{
		`CREATE SCHEMA historical_metro`,
		`CREATE TABLE historical_metro."January" (
			datetime timestamptz,
			region_name text,
			traffic_volume double precision,
			average_speed double precision,
			incidents integer
		)`,
		`INSERT INTO historical_metro."January" VALUES
			('2024-01-05 08:00:00+00', 'Downtown', 250, 61.5, 1),
			('2024-01-05 09:00:00+00', 'Riverside', 180, 72.3, 0)`,
		`CREATE TABLE historical_metro."March" (
			datetime timestamptz,
			traffic_volume double precision
		)`,
		// A non-month table that listings must ignore.
		`CREATE TABLE historical_metro.metadata (v integer)`,
		// A schema outside the historical_ prefix that listings must ignore.
		`CREATE SCHEMA scratch`,
	}
	for _, stmt := range statements {
		_, err := store.pool.Exec(ctx, stmt)
		require.NoError(t, err, "seed statement failed: %s", stmt)
	}
}

func TestRecordStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("ListDatasets", func(t *testing.T) {
		datasets, err := store.ListDatasets(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"historical_metro"}, datasets)
	})

	t.Run("ListMonthsCalendarOrder", func(t *testing.T) {
		months, err := store.ListMonths(ctx, "historical_metro")
		require.NoError(t, err)
		require.Equal(t, []string{"January", "March"}, months)
	})

	t.Run("ListMonthsUnknownDataset", func(t *testing.T) {
		_, err := store.ListMonths(ctx, "historical_nowhere")
		require.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)
	})

	t.Run("FetchMonthFlattensRows", func(t *testing.T) {
		records, err := store.FetchMonth(ctx, "historical_metro", "January")
		require.NoError(t, err)
		require.Len(t, records, 2)

		var downtown map[string]any
		for _, r := range records {
			if r["region_name"] == "Downtown" {
				downtown = r
			}
		}
		require.NotNil(t, downtown)

		ts, ok := downtown["datetime"].(time.Time)
		require.True(t, ok, "timestamptz must scan to time.Time, got %T", downtown["datetime"])
		require.True(t, ts.Equal(time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)))
		require.Equal(t, 250.0, downtown["traffic_volume"])
	})

	t.Run("FetchMonthMissingTable", func(t *testing.T) {
		records, err := store.FetchMonth(ctx, "historical_metro", "July")
		require.NoError(t, err)
		require.Empty(t, records)
	})

	t.Run("Ping", func(t *testing.T) {
		require.NoError(t, store.Ping(ctx))
	})
}
