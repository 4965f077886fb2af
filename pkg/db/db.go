// Package db implements the storage collaborator: persistence of feeds and
// headlines behind the narrow read/write interface the core consumes.
package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"headline-search/pkg/domain"
)

// ErrNotFound is returned when a requested feed or headline does not exist.
var ErrNotFound = errors.New("not found")

// Store is the full storage interface consumed by the scheduler, crawler
// runner and query service. All calls are synchronous; callers own
// cancellation and timeouts through ctx.
type Store interface {
	GetFeed(ctx context.Context, id int64) (*domain.Feed, error)
	ListFeeds(ctx context.Context) ([]domain.Feed, error)
	UpdateFeed(ctx context.Context, id int64, updated time.Time, resumeCursor string) error

	GetHeadline(ctx context.Context, id int64) (*domain.Headline, error)
	// UpsertHeadline inserts a headline or updates the existing record with
	// the same canonical URL. The search index entry is regenerated and
	// written in the same statement as the fields it is derived from, so a
	// read never observes an inconsistent pair.
	UpsertHeadline(ctx context.Context, h *domain.Headline) error
	ListHeadlinesSince(ctx context.Context, since time.Time) ([]domain.Headline, error)
}

// DBProvider is implemented by database clients that expose a sql.DB
// handle. Both the direct Postgres client and the Supabase client qualify,
// so SQLStore works over either.
type DBProvider interface {
	DB() *sql.DB
}
