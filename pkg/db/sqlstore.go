package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"headline-search/pkg/domain"
	"headline-search/pkg/index"
)

// Schema for the feeds and headlines tables. Call SQLStore.Init() or apply
// manually. Headline URLs are canonical (scheme-less) and unique, so the
// http and https variants of one link share a row. Feed deletion is
// restricted while headlines reference it.
const Schema = `
CREATE TABLE IF NOT EXISTS feeds (
	id BIGSERIAL PRIMARY KEY,
	url TEXT NOT NULL UNIQUE,
	entry_selector TEXT NOT NULL DEFAULT '',
	title_selector TEXT NOT NULL DEFAULT '',
	link_selector TEXT NOT NULL DEFAULT '',
	discussion_selector TEXT NOT NULL DEFAULT '',
	label_selector TEXT NOT NULL DEFAULT '',
	exclude_selector TEXT NOT NULL DEFAULT '',
	label TEXT NOT NULL DEFAULT '',
	updated TIMESTAMPTZ NOT NULL DEFAULT to_timestamp(0),
	update_interval_seconds BIGINT NOT NULL CHECK (update_interval_seconds > 0),
	added_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	resume_cursor TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS headlines (
	id BIGSERIAL PRIMARY KEY,
	feed_id BIGINT REFERENCES feeds(id) ON DELETE RESTRICT,
	source TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL UNIQUE,
	secure BOOLEAN NOT NULL DEFAULT false,
	metadata JSONB NOT NULL DEFAULT '{}',
	discussion TEXT NOT NULL DEFAULT '',
	labels JSONB NOT NULL DEFAULT '[]',
	added_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	archived_at TIMESTAMPTZ,
	teaser_image TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	favicon TEXT NOT NULL DEFAULT '',
	search_index JSONB NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_headlines_added_at ON headlines(added_at);
CREATE INDEX IF NOT EXISTS idx_headlines_feed ON headlines(feed_id) WHERE feed_id IS NOT NULL;
`

const headlineColumns = `id, feed_id, source, url, secure, metadata, discussion, labels,
	added_at, archived_at, teaser_image, content, summary, favicon, search_index`

const feedColumns = `id, url, entry_selector, title_selector, link_selector,
	discussion_selector, label_selector, exclude_selector, label,
	updated, update_interval_seconds, added_at, resume_cursor`

// SQLStore implements Store on top of any DBProvider (direct Postgres or
// Supabase).
type SQLStore struct {
	provider DBProvider
}

// NewSQLStore creates a store over the given database client.
func NewSQLStore(provider DBProvider) *SQLStore {
	return &SQLStore{provider: provider}
}

// Init creates the tables if they don't exist.
func (s *SQLStore) Init(ctx context.Context) error {
	if _, err := s.provider.DB().ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// GetFeed loads one feed by ID.
func (s *SQLStore) GetFeed(ctx context.Context, id int64) (*domain.Feed, error) {
	row := s.provider.DB().QueryRowContext(ctx,
		`SELECT `+feedColumns+` FROM feeds WHERE id = $1`, id)
	feed, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("feed %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get feed %d: %w", id, err)
	}
	return feed, nil
}

// ListFeeds returns all feeds ordered by ID.
func (s *SQLStore) ListFeeds(ctx context.Context) ([]domain.Feed, error) {
	rows, err := s.provider.DB().QueryContext(ctx,
		`SELECT `+feedColumns+` FROM feeds ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query feeds: %w", err)
	}
	defer rows.Close()

	var feeds []domain.Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		feeds = append(feeds, *feed)
	}
	return feeds, rows.Err()
}

// UpdateFeed records the outcome of a poll: the new last-updated time and
// the resume cursor for the next crawl.
func (s *SQLStore) UpdateFeed(ctx context.Context, id int64, updated time.Time, resumeCursor string) error {
	res, err := s.provider.DB().ExecContext(ctx,
		`UPDATE feeds SET updated = $2, resume_cursor = $3 WHERE id = $1`,
		id, updated, resumeCursor)
	if err != nil {
		return fmt.Errorf("update feed %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update feed %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("feed %d: %w", id, ErrNotFound)
	}
	return nil
}

// InsertFeed adds a new feed configuration and fills in its assigned ID.
func (s *SQLStore) InsertFeed(ctx context.Context, f *domain.Feed) error {
	err := s.provider.DB().QueryRowContext(ctx,
		`INSERT INTO feeds (url, entry_selector, title_selector, link_selector,
			discussion_selector, label_selector, exclude_selector, label,
			updated, update_interval_seconds, added_at, resume_cursor)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), $11)
		 RETURNING id`,
		f.URL, f.EntrySelector, f.TitleSelector, f.LinkSelector,
		f.DiscussionSelector, f.LabelSelector, f.ExcludeSelector, f.Label,
		f.Updated, int64(f.UpdateInterval/time.Second), f.ResumeCursor,
	).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("insert feed %s: %w", f.URL, err)
	}
	return nil
}

// GetHeadline loads one headline by ID.
func (s *SQLStore) GetHeadline(ctx context.Context, id int64) (*domain.Headline, error) {
	row := s.provider.DB().QueryRowContext(ctx,
		`SELECT `+headlineColumns+` FROM headlines WHERE id = $1`, id)
	h, err := scanHeadline(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("headline %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get headline %d: %w", id, err)
	}
	return h, nil
}

// UpsertHeadline inserts or updates by canonical URL. The index entry is
// regenerated here and written in the same statement as the fields it
// derives from, keeping the consistency invariant without a transaction.
// An update never resets id or added_at; the secure flag is sticky once a
// link has been seen over HTTPS.
func (s *SQLStore) UpsertHeadline(ctx context.Context, h *domain.Headline) error {
	if err := h.Reindex(); err != nil {
		return err
	}

	metadata, labels, entry, err := marshalHeadline(h)
	if err != nil {
		return err
	}

	var feedID sql.NullInt64
	if h.FeedID != 0 {
		feedID = sql.NullInt64{Int64: h.FeedID, Valid: true}
	}
	var archivedAt sql.NullTime
	if !h.ArchivedAt.IsZero() {
		archivedAt = sql.NullTime{Time: h.ArchivedAt, Valid: true}
	}

	err = s.provider.DB().QueryRowContext(ctx,
		`INSERT INTO headlines (feed_id, source, url, secure, metadata, discussion,
			labels, added_at, archived_at, teaser_image, content, summary, favicon, search_index)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (url) DO UPDATE SET
			feed_id = COALESCE(headlines.feed_id, EXCLUDED.feed_id),
			source = EXCLUDED.source,
			secure = headlines.secure OR EXCLUDED.secure,
			metadata = EXCLUDED.metadata,
			discussion = EXCLUDED.discussion,
			labels = EXCLUDED.labels,
			archived_at = COALESCE(EXCLUDED.archived_at, headlines.archived_at),
			teaser_image = EXCLUDED.teaser_image,
			content = EXCLUDED.content,
			summary = EXCLUDED.summary,
			favicon = EXCLUDED.favicon,
			search_index = EXCLUDED.search_index
		 RETURNING id, added_at`,
		feedID, h.Source, h.URL.Canonical, h.URL.Secure, metadata, h.Discussion,
		labels, h.AddedAt, archivedAt, h.TeaserImage, h.Content, h.Summary,
		h.Favicon, entry,
	).Scan(&h.ID, &h.AddedAt)
	if err != nil {
		return fmt.Errorf("upsert headline %s: %w", h.URL.Canonical, err)
	}
	return nil
}

// ListHeadlinesSince returns headlines added after the given time, newest
// identity first.
func (s *SQLStore) ListHeadlinesSince(ctx context.Context, since time.Time) ([]domain.Headline, error) {
	rows, err := s.provider.DB().QueryContext(ctx,
		`SELECT `+headlineColumns+` FROM headlines WHERE added_at > $1 ORDER BY id DESC`,
		since)
	if err != nil {
		return nil, fmt.Errorf("query headlines: %w", err)
	}
	defer rows.Close()

	var headlines []domain.Headline
	for rows.Next() {
		h, err := scanHeadline(rows)
		if err != nil {
			return nil, fmt.Errorf("scan headline: %w", err)
		}
		headlines = append(headlines, *h)
	}
	return headlines, rows.Err()
}

func marshalHeadline(h *domain.Headline) (metadata, labels, entry []byte, err error) {
	meta := h.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	if metadata, err = json.Marshal(meta); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal metadata: %w", err)
	}

	tags := h.Labels
	if tags == nil {
		tags = []string{}
	}
	if labels, err = json.Marshal(tags); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal labels: %w", err)
	}

	if entry, err = h.Index.Encode(); err != nil {
		return nil, nil, nil, fmt.Errorf("encode search index: %w", err)
	}
	return metadata, labels, entry, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFeed(row scanner) (*domain.Feed, error) {
	var f domain.Feed
	var intervalSeconds int64
	if err := row.Scan(
		&f.ID, &f.URL, &f.EntrySelector, &f.TitleSelector, &f.LinkSelector,
		&f.DiscussionSelector, &f.LabelSelector, &f.ExcludeSelector, &f.Label,
		&f.Updated, &intervalSeconds, &f.AddedAt, &f.ResumeCursor,
	); err != nil {
		return nil, err
	}
	f.UpdateInterval = time.Duration(intervalSeconds) * time.Second
	return &f, nil
}

func scanHeadline(row scanner) (*domain.Headline, error) {
	var h domain.Headline
	var feedID sql.NullInt64
	var archivedAt sql.NullTime
	var metadata, labels, entry []byte

	if err := row.Scan(
		&h.ID, &feedID, &h.Source, &h.URL.Canonical, &h.URL.Secure,
		&metadata, &h.Discussion, &labels, &h.AddedAt, &archivedAt,
		&h.TeaserImage, &h.Content, &h.Summary, &h.Favicon, &entry,
	); err != nil {
		return nil, err
	}

	h.FeedID = feedID.Int64
	if archivedAt.Valid {
		h.ArchivedAt = archivedAt.Time
	}
	if err := json.Unmarshal(metadata, &h.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	if err := json.Unmarshal(labels, &h.Labels); err != nil {
		return nil, fmt.Errorf("unmarshal labels: %w", err)
	}
	decoded, err := index.Decode(entry)
	if err != nil {
		return nil, fmt.Errorf("decode search index: %w", err)
	}
	h.Index = &decoded
	return &h, nil
}
