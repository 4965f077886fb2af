// Command search runs one query against the headline store and prints the
// results as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"headline-search/pkg/config"
	"headline-search/pkg/db"
	"headline-search/pkg/headlines"
	"headline-search/pkg/rank"
)

func main() {
	var (
		queryText = flag.String("q", "", "search query, empty lists recent headlines")
		since     = flag.Duration("since", headlines.DefaultSince, "recency window")
		minRank   = flag.Float64("min-rank", headlines.DefaultMinRank, "minimum combined score")
		limit     = flag.Int("limit", headlines.DefaultLimit, "page size")
		offset    = flag.Int("offset", 0, "page offset")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeStore()

	engine := rank.NewEngine(rank.HalfLifeDecay(cfg.DecayHalfLife, time.Now))
	service := headlines.NewService(store, engine)

	results, err := service.Query(ctx, headlines.Params{
		Since:   *since,
		Query:   *queryText,
		MinRank: *minRank,
		Limit:   *limit,
		Offset:  *offset,
	})
	if err != nil {
		log.Fatalf("query: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		log.Fatalf("encode results: %v", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*db.SQLStore, func(), error) {
	var provider db.DBProvider
	var closer func()

	if cfg.DatabaseURL != "" {
		client := db.NewPostgresClient(db.PostgresConfig{DSN: cfg.DatabaseURL})
		if err := client.Connect(ctx); err != nil {
			return nil, nil, err
		}
		provider, closer = client, func() { _ = client.Close() }
	} else {
		client := db.NewSupabaseClient(db.SupabaseConfig{
			ProjectURL: cfg.SupabaseURL,
			APIKey:     cfg.SupabaseKey,
			Password:   cfg.SupabasePassword,
		})
		if err := client.Connect(ctx); err != nil {
			return nil, nil, err
		}
		provider, closer = client, func() { _ = client.Close() }
	}

	return db.NewSQLStore(provider), closer, nil
}
