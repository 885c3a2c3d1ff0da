// Package config loads environment-driven settings for the analytics server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Backend names for the record store.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds environment-driven settings.
type Config struct {
	Backend     string
	MongoURI    string
	PostgresDSN string
	Port        int

	CacheTTL time.Duration

	// Data-quality guard defaults, overridable per request.
	MaxSpeed  float64
	MaxVolume float64
	Winsorize bool
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		Backend:   BackendMongo,
		MongoURI:  "mongodb://localhost:27017",
		Port:      8080,
		CacheTTL:  time.Hour,
		MaxSpeed:  160,
		MaxVolume: 10000,
		Winsorize: true,
	}

	if backend := os.Getenv("STORE_BACKEND"); backend != "" {
		switch backend {
		case BackendMongo, BackendPostgres, BackendMemory:
			cfg.Backend = backend
		default:
			return cfg, fmt.Errorf("invalid STORE_BACKEND: %s", backend)
		}
	}

	if uri := os.Getenv("MONGO_URI"); uri != "" {
		cfg.MongoURI = uri
	}

	cfg.PostgresDSN = os.Getenv("POSTGRES_DSN")
	if cfg.Backend == BackendPostgres && cfg.PostgresDSN == "" {
		return cfg, fmt.Errorf("POSTGRES_DSN is required for the postgres backend")
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	}

	if ttlStr := os.Getenv("CACHE_TTL_SECONDS"); ttlStr != "" {
		if ttl, err := strconv.Atoi(ttlStr); err == nil && ttl >= 0 {
			cfg.CacheTTL = time.Duration(ttl) * time.Second
		} else {
			return cfg, fmt.Errorf("invalid CACHE_TTL_SECONDS: %s", ttlStr)
		}
	}

	if speedStr := os.Getenv("MAX_SPEED"); speedStr != "" {
		if speed, err := strconv.ParseFloat(speedStr, 64); err == nil && speed > 0 {
			cfg.MaxSpeed = speed
		} else {
			return cfg, fmt.Errorf("invalid MAX_SPEED: %s", speedStr)
		}
	}

	if volumeStr := os.Getenv("MAX_VOLUME"); volumeStr != "" {
		if volume, err := strconv.ParseFloat(volumeStr, 64); err == nil && volume > 0 {
			cfg.MaxVolume = volume
		} else {
			return cfg, fmt.Errorf("invalid MAX_VOLUME: %s", volumeStr)
		}
	}

	if winStr := os.Getenv("WINSORIZE"); winStr != "" {
		win, err := strconv.ParseBool(winStr)
		if err != nil {
			return cfg, fmt.Errorf("invalid WINSORIZE: %s", winStr)
		}
		cfg.Winsorize = win
	}

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
