// Command enrich backfills stored headlines with data from their article
// pages: extracted text, summary, favicon and teaser image.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"headline-search/pkg/config"
	"headline-search/pkg/content"
	"headline-search/pkg/db"
)

func main() {
	var (
		since = flag.Duration("since", 7*24*time.Hour, "enrich headlines added within this window")
		force = flag.Bool("force", false, "re-enrich headlines that already have content")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeStore()

	headlines, err := store.ListHeadlinesSince(ctx, time.Now().Add(-*since))
	if err != nil {
		log.Fatalf("list headlines: %v", err)
	}

	enricher := content.NewEnricher()
	var enriched, failed int
	for i := range headlines {
		h := &headlines[i]
		if h.Content != "" && !*force {
			continue
		}
		if err := enricher.Enrich(ctx, h); err != nil {
			log.Printf("[enrich] headline %d (%s): %v", h.ID, h.URL.Canonical, err)
			failed++
			continue
		}
		if err := store.UpsertHeadline(ctx, h); err != nil {
			log.Printf("[enrich] save headline %d: %v", h.ID, err)
			failed++
			continue
		}
		enriched++
	}

	log.Printf("[enrich] done — %d enriched, %d failed, %d total in window",
		enriched, failed, len(headlines))
}

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

	return db.NewSQLStore(provider), closer, nil
}
