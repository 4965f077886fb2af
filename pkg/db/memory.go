package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"headline-search/pkg/domain"
)

// MemoryStore is an in-memory Store used in tests and for running the
// poller without a database. Safe for concurrent use.
type MemoryStore struct {
	mu             sync.RWMutex
	feeds          map[int64]domain.Feed
	headlines      map[int64]domain.Headline
	byURL          map[string]int64 // canonical URL -> headline ID
	nextFeedID     int64
	nextHeadlineID int64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		feeds:          make(map[int64]domain.Feed),
		headlines:      make(map[int64]domain.Headline),
		byURL:          make(map[string]int64),
		nextFeedID:     1,
		nextHeadlineID: 1,
	}
}

// InsertFeed adds a feed and assigns its ID.
func (s *MemoryStore) InsertFeed(ctx context.Context, f *domain.Feed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.feeds {
		if existing.URL == f.URL {
			return fmt.Errorf("feed URL %s already exists", f.URL)
		}
	}

	f.ID = s.nextFeedID
	s.nextFeedID++
	if f.AddedAt.IsZero() {
		f.AddedAt = time.Now()
	}
	s.feeds[f.ID] = *f
	return nil
}

// GetFeed loads one feed by ID.
func (s *MemoryStore) GetFeed(ctx context.Context, id int64) (*domain.Feed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.feeds[id]
	if !ok {
		return nil, fmt.Errorf("feed %d: %w", id, ErrNotFound)
	}
	return &f, nil
}

// ListFeeds returns all feeds in ID order.
func (s *MemoryStore) ListFeeds(ctx context.Context) ([]domain.Feed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	feeds := make([]domain.Feed, 0, len(s.feeds))
	for id := int64(1); id < s.nextFeedID; id++ {
		if f, ok := s.feeds[id]; ok {
			feeds = append(feeds, f)
		}
	}
	return feeds, nil
}

// UpdateFeed records the outcome of a poll.
func (s *MemoryStore) UpdateFeed(ctx context.Context, id int64, updated time.Time, resumeCursor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.feeds[id]
	if !ok {
		return fmt.Errorf("feed %d: %w", id, ErrNotFound)
	}
	f.Updated = updated
	f.ResumeCursor = resumeCursor
	s.feeds[id] = f
	return nil
}

// GetHeadline loads one headline by ID.
func (s *MemoryStore) GetHeadline(ctx context.Context, id int64) (*domain.Headline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.headlines[id]
	if !ok {
		return nil, fmt.Errorf("headline %d: %w", id, ErrNotFound)
	}
	return &h, nil
}

// UpsertHeadline inserts or updates by canonical URL, regenerating the
// search index entry together with the field update.
func (s *MemoryStore) UpsertHeadline(ctx context.Context, h *domain.Headline) error {
	if err := h.Reindex(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID, ok := s.byURL[h.URL.Canonical]; ok {
		existing := s.headlines[existingID]
		h.ID = existingID
		h.AddedAt = existing.AddedAt
		h.URL.Secure = h.URL.Secure || existing.URL.Secure
		if h.FeedID == 0 {
			h.FeedID = existing.FeedID
		}
		if h.ArchivedAt.IsZero() {
			h.ArchivedAt = existing.ArchivedAt
		}
	} else {
		h.ID = s.nextHeadlineID
		s.nextHeadlineID++
		if h.AddedAt.IsZero() {
			h.AddedAt = time.Now()
		}
		s.byURL[h.URL.Canonical] = h.ID
	}

	s.headlines[h.ID] = *h
	return nil
}

// ListHeadlinesSince returns headlines added after the given time.
func (s *MemoryStore) ListHeadlinesSince(ctx context.Context, since time.Time) ([]domain.Headline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Headline
	for id := s.nextHeadlineID - 1; id >= 1; id-- {
		h, ok := s.headlines[id]
		if !ok {
			continue
		}
		if h.AddedAt.After(since) {
			out = append(out, h)
		}
	}
	return out, nil
}
