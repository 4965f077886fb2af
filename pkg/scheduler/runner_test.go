package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"headline-search/pkg/domain"
)

type mockPoller struct {
	mu      sync.Mutex
	polled  []int64
	results map[int64]*domain.PollResult
}

func (m *mockPoller) Poll(ctx context.Context, req domain.FeedCrawlRequest) (*domain.PollResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.polled = append(m.polled, req.FeedID)
	if r, ok := m.results[req.FeedID]; ok {
		return r, nil
	}
	return &domain.PollResult{FeedID: req.FeedID}, nil
}

type mockWriteStore struct {
	mu       sync.Mutex
	upserted []string
	cursors  map[int64]string
}

func (m *mockWriteStore) UpsertHeadline(ctx context.Context, h *domain.Headline) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserted = append(m.upserted, h.URL.Canonical)
	return nil
}

func (m *mockWriteStore) UpdateFeed(ctx context.Context, id int64, updated time.Time, resumeCursor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cursors == nil {
		m.cursors = make(map[int64]string)
	}
	m.cursors[id] = resumeCursor
	return nil
}

// blockedMarker denies the listed feeds, simulating an overlapping pass.
type blockedMarker struct {
	blocked map[int64]bool
}

func (m *blockedMarker) TryAcquire(ctx context.Context, feedID int64) (bool, error) {
	return !m.blocked[feedID], nil
}

func (m *blockedMarker) Release(ctx context.Context, feedID int64) error { return nil }

func TestRunPassPersistsPollResults(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	feeds := &mockFeedStore{feeds: []domain.Feed{
		{ID: 1, URL: "https://feeds.example.com/a", Updated: now.Add(-2 * time.Hour), UpdateInterval: time.Hour},
	}}

	h := domain.Headline{URL: domain.ParseNewsURL("https://example.com/story")}
	h.SetMeta(domain.MetaTitle, "A Story")
	poller := &mockPoller{results: map[int64]*domain.PollResult{
		1: {FeedID: 1, Headlines: []domain.Headline{h}, NextResumeCursor: "?page=2"},
	}}
	store := &mockWriteStore{}

	runner := NewRunner(New(feeds), poller, store, &blockedMarker{}, time.Minute, 2)
	runner.RunPass(context.Background(), now)

	if len(store.upserted) != 1 || store.upserted[0] != "example.com/story" {
		t.Fatalf("Expected one saved headline, got %v", store.upserted)
	}
	if store.cursors[1] != "?page=2" {
		t.Errorf("Expected cursor '?page=2' recorded, got %q", store.cursors[1])
	}
}

func TestRunPassSkipsMarkedFeeds(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	overdue := now.Add(-2 * time.Hour)
	feeds := &mockFeedStore{feeds: []domain.Feed{
		{ID: 1, URL: "https://feeds.example.com/a", Updated: overdue, UpdateInterval: time.Hour},
		{ID: 2, URL: "https://feeds.example.com/b", Updated: overdue, UpdateInterval: time.Hour},
	}}
	poller := &mockPoller{}
	store := &mockWriteStore{}

	runner := NewRunner(New(feeds), poller, store, &blockedMarker{blocked: map[int64]bool{1: true}}, time.Minute, 1)
	runner.RunPass(context.Background(), now)

	if len(poller.polled) != 1 || poller.polled[0] != 2 {
		t.Fatalf("Expected only feed 2 polled, got %v", poller.polled)
	}
	// A skipped feed keeps its state untouched.
	if _, ok := store.cursors[1]; ok {
		t.Error("Expected no feed update for the skipped feed")
	}
}
