// The poller daemon: polls due feeds on a schedule and ingests the crawled
// headlines into the serving store.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"headline-search/pkg/config"
	"headline-search/pkg/crawler"
	"headline-search/pkg/db"
	"headline-search/pkg/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeStore()

	marker := openMarker(ctx, cfg)

	runner := scheduler.NewRunner(
		scheduler.New(store),
		crawler.New(store),
		store,
		marker,
		cfg.PollInterval,
		cfg.CrawlWorkers,
	)
	if err := runner.Start(ctx); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	defer runner.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("shutting down")
}

// openStore connects the serving store: direct Postgres when DATABASE_URL
// is set, Supabase otherwise.
func openStore(ctx context.Context, cfg *config.Config) (*db.SQLStore, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var provider db.DBProvider
	var closer func()

	if cfg.DatabaseURL != "" {
		client := db.NewPostgresClient(db.PostgresConfig{DSN: cfg.DatabaseURL})
		if err := client.Connect(connectCtx); err != nil {
			return nil, nil, err
		}
		provider, closer = client, func() { _ = client.Close() }
	} else {
		client := db.NewSupabaseClient(db.SupabaseConfig{
			ProjectURL: cfg.SupabaseURL,
			APIKey:     cfg.SupabaseKey,
			Password:   cfg.SupabasePassword,
		})
		if err := client.Connect(connectCtx); err != nil {
			return nil, nil, err
		}
		provider, closer = client, func() { _ = client.Close() }
	}

	store := db.NewSQLStore(provider)
	if err := store.Init(connectCtx); err != nil {
		closer()
		return nil, nil, err
	}
	return store, closer, nil
}

// openMarker returns the Redis-backed in-flight marker when configured,
// falling back to the no-op marker for single-process runs.
func openMarker(ctx context.Context, cfg *config.Config) scheduler.Marker {
	if cfg.RedisURL == "" {
		return crawler.NoopMarker{}
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis.ParseURL(%q): %v", cfg.RedisURL, err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis ping failed: %v", err)
	}

	return crawler.NewRedisMarker(rdb, 10*time.Minute)
}
