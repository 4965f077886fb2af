package domain

import (
	"testing"
	"time"

	"headline-search/pkg/index"
)

func TestHeadlineMetadata(t *testing.T) {
	var h Headline
	if h.Meta(MetaTitle) != "" {
		t.Error("Expected empty value from a nil metadata map")
	}

	h.SetMeta(MetaTitle, "First")
	h.SetMeta(MetaTitle, "Second")
	if h.Meta(MetaTitle) != "Second" {
		t.Errorf("Expected overwritten value, got %q", h.Meta(MetaTitle))
	}

	h.SetMeta("custom-key", "kept")
	if h.Meta("custom-key") != "kept" {
		t.Error("Expected arbitrary metadata keys to be preserved")
	}
}

func TestReindex(t *testing.T) {
	h := Headline{
		Source:  "Example Blog",
		URL:     ParseNewsURL("https://example.com/post"),
		Content: "long body text",
	}
	h.SetMeta(MetaTitle, "Indexing Matters")
	h.SetMeta(MetaDescription, "why derived state must follow writes")

	if err := h.Reindex(); err != nil {
		t.Fatalf("Reindex failed: %v", err)
	}
	if h.Index == nil {
		t.Fatal("Expected an index entry after Reindex")
	}
	if !h.Index.Contains(index.FieldTitle, "indexing") {
		t.Error("Expected title tokens in the index")
	}
	if !h.Index.Contains(index.FieldSource, "blog") {
		t.Error("Expected source tokens in the index")
	}
	if !h.Index.Contains(index.FieldContent, "body") {
		t.Error("Expected content tokens in the index")
	}
}

func TestReindexRequiresURL(t *testing.T) {
	h := Headline{ID: 5}
	h.SetMeta(MetaTitle, "No Identity")
	if err := h.Reindex(); err == nil {
		t.Error("Expected an error reindexing a headline without a URL")
	}
}

func TestFeedCrawlURL(t *testing.T) {
	f := Feed{URL: "https://news.example.com/feed?kind=top"}
	if f.CrawlURL() != "https://news.example.com/feed?kind=top" {
		t.Errorf("Expected base URL without cursor, got %q", f.CrawlURL())
	}

	f.ResumeCursor = "&page=3"
	if f.CrawlURL() != "https://news.example.com/feed?kind=top&page=3" {
		t.Errorf("Expected cursor appended verbatim, got %q", f.CrawlURL())
	}
}

func TestFeedDue(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	f := Feed{Updated: now.Add(-time.Hour), UpdateInterval: 30 * time.Minute}
	if !f.Due(now) {
		t.Error("Expected an overdue feed to be due")
	}

	f.Updated = now.Add(-10 * time.Minute)
	if f.Due(now) {
		t.Error("Expected a recently polled feed not to be due")
	}
}
