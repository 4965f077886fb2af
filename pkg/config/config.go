// Package config loads runtime configuration from environment variables.
// Fail-fast: a malformed value is an error at startup, not at first use.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the poller and query tools.
type Config struct {
	// DatabaseURL is the Postgres DSN of the serving store.
	DatabaseURL string

	// Supabase alternative to a direct Postgres connection.
	SupabaseURL      string
	SupabaseKey      string
	SupabasePassword string

	// RedisURL enables the distributed in-flight poll markers. Empty means
	// single-process mode with no cross-process dedupe.
	RedisURL string

	// MongoURI enables the headline archive. Empty disables replication.
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	PollInterval time.Duration // how often the scheduler pass fires
	CrawlWorkers int           // concurrent feed crawls per pass

	// DecayHalfLife tunes the ranking recency curve: a headline loses half
	// its weight every half-life.
	DecayHalfLife time.Duration
}

// Load reads environment variables and returns a validated Config. Either
// DATABASE_URL or the Supabase variables must be set.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SupabaseURL:      os.Getenv("SUPABASE_URL"),
		SupabaseKey:      os.Getenv("SUPABASE_KEY"),
		SupabasePassword: os.Getenv("SUPABASE_DB_PASSWORD"),
		RedisURL:         os.Getenv("REDIS_URL"),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDatabase:    envDefault("MONGO_DATABASE", "headlines"),
		MongoCollection:  envDefault("MONGO_COLLECTION", "archive"),
	}

	if cfg.DatabaseURL == "" && cfg.SupabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or SUPABASE_URL is required")
	}

	var err error
	if cfg.PollInterval, err = envDuration("POLL_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.DecayHalfLife, err = envDuration("DECAY_HALF_LIFE", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CrawlWorkers, err = envInt("CRAWL_WORKERS", 4); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, s)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, s)
	}
	return v, nil
}
