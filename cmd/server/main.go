// Package main runs the unified traffic analytics server: the JSON API,
// Prometheus metrics, and CSV exports over a single record store.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"traffic-analytics/internal/analytics"
	"traffic-analytics/internal/cache"
	"traffic-analytics/internal/config"
	"traffic-analytics/internal/httpapi"
	"traffic-analytics/internal/storage"
	"traffic-analytics/internal/storage/memory"
	mongostore "traffic-analytics/internal/storage/mongo"
	pgstore "traffic-analytics/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[server] config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("[server] open %s store: %v", cfg.Backend, err)
	}
	defer store.Close()

	svc := analytics.NewService(store, cache.New(cfg.CacheTTL), cfg.Backend)
	srv := httpapi.New(cfg, svc)

	log.Printf("[server] listening on %s (backend=%s, cache ttl=%s)", cfg.ListenAddr(), cfg.Backend, cfg.CacheTTL)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("[server] %v", err)
	}
	log.Printf("[server] shutdown complete")
}

func openStore(ctx context.Context, cfg config.Config) (storage.RecordStore, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		return pgstore.NewRecordStore(ctx, cfg.PostgresDSN)
	case config.BackendMemory:
		store := memory.NewRecordStore()
		seedDemoData(store)
		log.Printf("[server] memory backend seeded with demo data")
		return store, nil
	default:
		return mongostore.NewRecordStore(ctx, cfg.MongoURI)
	}
}
