// Command archive runs one replication pass, copying headlines from the
// serving store into the MongoDB archive.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"headline-search/pkg/config"
	"headline-search/pkg/db"
	"headline-search/pkg/replication"
)

func main() {
	since := flag.Duration("since", 30*24*time.Hour, "archive headlines added within this window")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.MongoURI == "" {
		log.Fatal("MONGO_URI is required for replication")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeStore()

	archive, err := db.NewArchiveClient(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	if err != nil {
		log.Fatalf("archive: %v", err)
	}
	defer archive.Close(ctx)

	replicator, err := replication.New(store, archive)
	if err != nil {
		log.Fatalf("replication: %v", err)
	}

	if err := replicator.Replicate(ctx, time.Now().Add(-*since)); err != nil {
		log.Fatalf("replication failed: %v", err)
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
