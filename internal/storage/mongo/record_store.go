// Package mongo implements the RecordStore over the upstream document store:
// one database per regional dataset, one collection per month of records.
package mongo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"traffic-analytics/internal/domain"
	"traffic-analytics/internal/storage"
)

// System databases excluded from dataset listings.
var systemDatabases = map[string]bool{
	"admin":  true,
	"config": true,
	"local":  true,
}

// RecordStore is a document-store implementation of storage.RecordStore.
type RecordStore struct {
	client *mongo.Client
}

// NewRecordStore connects to the document store and verifies the connection.
func NewRecordStore(ctx context.Context, uri string) (*RecordStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to document store: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return &RecordStore{client: client}, nil
}

// ListDatasets returns the historical dataset databases, sorted.
func (s *RecordStore) ListDatasets(ctx context.Context) ([]string, error) {
	names, err := s.client.ListDatabaseNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("%w: list databases: %v", storage.ErrUnavailable, err)
	}

	var datasets []string
	for _, name := range names {
		if systemDatabases[name] {
			continue
		}
		if strings.HasPrefix(name, "historical_") {
			datasets = append(datasets, name)
		}
	}
	sort.Strings(datasets)
	return datasets, nil
}

// ListMonths returns the month collections present for a dataset in
// calendar order. Non-month collections are ignored.
func (s *RecordStore) ListMonths(ctx context.Context, dataset string) ([]string, error) {
	if err := s.datasetExists(ctx, dataset); err != nil {
		return nil, err
	}

	collections, err := s.client.Database(dataset).ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("%w: list collections: %v", storage.ErrUnavailable, err)
	}

	present := make(map[string]bool, len(collections))
	for _, c := range collections {
		present[c] = true
	}

	var months []string
	for _, m := range domain.MonthNames {
		if present[m] {
			months = append(months, m)
		}
	}
	return months, nil
}

// FetchMonth retrieves all documents from the month collection. A missing
// collection yields an empty result, which callers treat as "no data".
func (s *RecordStore) FetchMonth(ctx context.Context, dataset, month string) ([]domain.RawRecord, error) {
	if err := s.datasetExists(ctx, dataset); err != nil {
		return nil, err
	}

	cursor, err := s.client.Database(dataset).Collection(month).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("%w: find %s/%s: %v", storage.ErrUnavailable, dataset, month, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: read %s/%s: %v", storage.ErrUnavailable, dataset, month, err)
	}

	records := make([]domain.RawRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, toRawRecord(doc))
	}
	return records, nil
}

// Ping verifies the connection.
func (s *RecordStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return nil
}

// Close disconnects from the document store.
func (s *RecordStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *RecordStore) datasetExists(ctx context.Context, dataset string) error {
	names, err := s.client.ListDatabaseNames(ctx, bson.D{{Key: "name", Value: dataset}})
	if err != nil {
		return fmt.Errorf("%w: list databases: %v", storage.ErrUnavailable, err)
	}
	if len(names) == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// toRawRecord flattens a BSON document into driver-neutral Go values so the
// standardizer never sees BSON types.
func toRawRecord(doc bson.M) domain.RawRecord {
	raw := make(domain.RawRecord, len(doc))
	for key, value := range doc {
		switch v := value.(type) {
		case primitive.DateTime:
			raw[key] = v.Time().UTC()
		case primitive.ObjectID:
			raw[key] = v.Hex()
		case primitive.Decimal128:
			raw[key] = v.String()
		case int32:
			raw[key] = int64(v)
		default:
			raw[key] = v
		}
	}
	return raw
}

var _ storage.RecordStore = (*RecordStore)(nil)
