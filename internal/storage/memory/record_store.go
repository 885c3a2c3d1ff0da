// Package memory provides an in-memory RecordStore for tests and demo mode.
package memory

import (
	"context"
	"sort"
	"sync"

	"traffic-analytics/internal/domain"
	"traffic-analytics/internal/storage"
)

// RecordStore is an in-memory implementation of storage.RecordStore.
type RecordStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]domain.RawRecord // dataset -> month -> records
}

// NewRecordStore creates an empty in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		data: make(map[string]map[string][]domain.RawRecord),
	}
}

// Seed loads records for (dataset, month), replacing any existing content.
func (s *RecordStore) Seed(dataset, month string, records []domain.RawRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	months, ok := s.data[dataset]
	if !ok {
		months = make(map[string][]domain.RawRecord)
		s.data[dataset] = months
	}
	copied := make([]domain.RawRecord, len(records))
	copy(copied, records)
	months[month] = copied
}

// ListDatasets returns the seeded dataset names, sorted.
func (s *RecordStore) ListDatasets(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ListMonths returns the month collections present for a dataset in
// calendar order.
func (s *RecordStore) ListMonths(_ context.Context, dataset string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	months, ok := s.data[dataset]
	if !ok {
		return nil, storage.ErrNotFound
	}

	var names []string
	for _, m := range domain.MonthNames {
		if _, ok := months[m]; ok {
			names = append(names, m)
		}
	}
	return names, nil
}

// FetchMonth returns the seeded records for (dataset, month). A month with
// no seed yields an empty result, matching the document store behavior for
// a missing collection.
func (s *RecordStore) FetchMonth(_ context.Context, dataset, month string) ([]domain.RawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	months, ok := s.data[dataset]
	if !ok {
		return nil, storage.ErrNotFound
	}

	records := months[month]
	out := make([]domain.RawRecord, len(records))
	copy(out, records)
	return out, nil
}

// Ping always succeeds for the in-memory store.
func (s *RecordStore) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *RecordStore) Close() error {
	return nil
}

var _ storage.RecordStore = (*RecordStore)(nil)
