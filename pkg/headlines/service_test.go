package headlines

import (
	"context"
	"fmt"
	"testing"
	"time"

	"headline-search/pkg/db"
	"headline-search/pkg/domain"
	"headline-search/pkg/rank"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

// seedHeadline stores one headline with a fixed age and title. IDs are
// assigned by the store in insertion order.
func seedHeadline(t *testing.T, store *db.MemoryStore, title string, age time.Duration) int64 {
	t.Helper()
	h := domain.Headline{
		Source:  "Test Feed",
		URL:     domain.ParseNewsURL(fmt.Sprintf("https://example.com/%s-%d", title, age)),
		AddedAt: testNow.Add(-age),
	}
	h.SetMeta(domain.MetaTitle, title)
	if err := store.UpsertHeadline(context.Background(), &h); err != nil {
		t.Fatalf("seed headline: %v", err)
	}
	return h.ID
}

func newTestService(store *db.MemoryStore) *Service {
	engine := rank.NewEngine(func(time.Time) float64 { return 1.0 })
	s := NewService(store, engine)
	s.now = func() time.Time { return testNow }
	return s
}

func TestQueryBrowseMode(t *testing.T) {
	store := db.NewMemoryStore()
	for i := 0; i < 12; i++ {
		seedHeadline(t, store, fmt.Sprintf("story-%d", i), time.Duration(i)*time.Hour)
	}
	service := newTestService(store)

	// Empty query selects browse mode: MinRank must play no part.
	results, err := service.Query(context.Background(), Params{
		Since:   DefaultSince,
		MinRank: 999,
		Limit:   10,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if len(results) != 10 {
		t.Fatalf("Expected 10 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Rank != BrowseRank {
			t.Errorf("Expected browse sentinel rank, got %v", r.Rank)
		}
		if i > 0 && results[i-1].ID <= r.ID {
			t.Errorf("Expected IDs descending, got %d before %d", results[i-1].ID, r.ID)
		}
	}
	// Browse order follows identity, not timestamps.
	if results[0].ID != 12 {
		t.Errorf("Expected the highest identity first, got ID %d", results[0].ID)
	}
}

func TestQueryRankedTieBreak(t *testing.T) {
	store := db.NewMemoryStore()
	older := seedHeadline(t, store, "kafka upgrade notes", time.Hour)
	newer := seedHeadline(t, store, "kafka upgrade redux", time.Hour)
	service := newTestService(store)

	results, err := service.Query(context.Background(), Params{
		Since: DefaultSince,
		Query: "kafka",
		Limit: 10,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	first, second := results[0].Ranked(), results[1].Ranked()
	if first.Rank != second.Rank {
		t.Fatalf("Expected equal scores, got %v and %v", first.Rank, second.Rank)
	}
	// Equal scores break toward the newer (higher) identity.
	if first.ID != newer || second.ID != older {
		t.Errorf("Expected order [%d %d], got [%d %d]", newer, older, first.ID, second.ID)
	}
}

func TestQueryRecencyWindow(t *testing.T) {
	store := db.NewMemoryStore()
	seedHeadline(t, store, "ancient news", 10*24*time.Hour)
	recent := seedHeadline(t, store, "fresh news", time.Hour)
	service := newTestService(store)

	results, err := service.Query(context.Background(), Params{
		Since: 7 * 24 * time.Hour,
		Query: "news",
		Limit: 10,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if len(results) != 1 || results[0].ID != recent {
		t.Fatalf("Expected only the recent headline, got %+v", results)
	}
}

func TestQueryMinRankFiltersRankedMode(t *testing.T) {
	store := db.NewMemoryStore()

	strong := domain.Headline{
		URL:     domain.ParseNewsURL("https://example.com/strong"),
		AddedAt: testNow.Add(-time.Hour),
	}
	strong.SetMeta(domain.MetaTitle, "grpc deep dive")

	weak := domain.Headline{
		URL:     domain.ParseNewsURL("https://example.com/weak"),
		AddedAt: testNow.Add(-time.Hour),
		Content: "a single grpc mention buried in text",
	}
	weak.SetMeta(domain.MetaTitle, "unrelated title")

	for _, h := range []*domain.Headline{&strong, &weak} {
		if err := store.UpsertHeadline(context.Background(), h); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	service := newTestService(store)

	results, err := service.Query(context.Background(), Params{
		Since:   DefaultSince,
		Query:   "grpc",
		MinRank: 0.2,
		Limit:   10,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if len(results) != 1 || results[0].ID != strong.ID {
		t.Fatalf("Expected only the strong match, got %+v", results)
	}
}

func TestQueryPaginationIsStable(t *testing.T) {
	store := db.NewMemoryStore()
	for i := 0; i < 9; i++ {
		seedHeadline(t, store, fmt.Sprintf("golang post %d", i), time.Duration(i)*time.Minute)
	}
	service := newTestService(store)

	page := func(offset, limit int) []Result {
		results, err := service.Query(context.Background(), Params{
			Since:  DefaultSince,
			Query:  "golang",
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		return results
	}

	all := page(0, 9)
	if len(all) != 9 {
		t.Fatalf("Expected 9 results, got %d", len(all))
	}

	// Two fixed-size pages concatenate to the head of the full ordering.
	var paged []Result
	paged = append(paged, page(0, 3)...)
	paged = append(paged, page(3, 3)...)
	for i := range paged {
		if paged[i].ID != all[i].ID {
			t.Fatalf("Page drift at %d: got ID %d, want %d", i, paged[i].ID, all[i].ID)
		}
	}

	// Paging past the end yields an empty page, not an error.
	if tail := page(100, 3); len(tail) != 0 {
		t.Errorf("Expected empty page past the end, got %d results", len(tail))
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.Since != 7*24*time.Hour {
		t.Errorf("Expected 7-day window, got %s", p.Since)
	}
	if p.Query != "" {
		t.Errorf("Expected empty default query, got %q", p.Query)
	}
	if p.MinRank != DefaultMinRank || p.Limit != DefaultLimit || p.Offset != 0 {
		t.Errorf("Unexpected defaults: %+v", p)
	}
}

func TestResultShape(t *testing.T) {
	store := db.NewMemoryStore()
	h := domain.Headline{
		Source:  "Test Feed",
		URL:     domain.ParseNewsURL("https://example.com/shape"),
		AddedAt: testNow.Add(-time.Hour),
	}
	h.SetMeta(domain.MetaTitle, "result shape check")
	h.SetMeta(domain.MetaDescription, "short blurb")
	if err := store.UpsertHeadline(context.Background(), &h); err != nil {
		t.Fatalf("seed: %v", err)
	}
	service := newTestService(store)

	results, err := service.Query(context.Background(), Params{Since: DefaultSince, Limit: 10})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	r := results[0]
	if r.Title != "result shape check" {
		t.Errorf("Expected title from metadata, got %q", r.Title)
	}
	if r.URL != "https://example.com/shape" {
		t.Errorf("Expected scheme re-attached, got %q", r.URL)
	}
	if r.Description != "short blurb" {
		t.Errorf("Expected description, got %q", r.Description)
	}
	if r.Tags == nil {
		t.Error("Expected tags to serialize as an empty list, not null")
	}
}
