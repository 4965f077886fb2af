package domain

import (
	"fmt"
	"time"

	"headline-search/pkg/index"
)

// Metadata keys every headline is expected to carry. Arbitrary extra keys
// are allowed and preserved.
const (
	MetaTitle       = "title"
	MetaDescription = "description"
	MetaType        = "type"
	MetaLocale      = "locale"
)

// Headline is one ingested article/link record, the unit of search and
// ranking.
type Headline struct {
	ID     int64
	FeedID int64 // 0 means manually added, no owning feed

	Source   string // human label of the originating feed
	URL      NewsURL
	Metadata map[string]string

	Discussion string // optional comments/discussion link
	Labels     []string

	AddedAt    time.Time
	ArchivedAt time.Time // zero until an archival snapshot exists

	TeaserImage string
	Content     string // full extracted article text, backfilled
	Summary     string
	Favicon     string

	// Index is the derived search entry. It must stay consistent with the
	// indexed fields; stores call Reindex before making a row visible.
	Index *index.Entry
}

// Meta returns the metadata value for key, or "" when absent.
func (h *Headline) Meta(key string) string {
	if h.Metadata == nil {
		return ""
	}
	return h.Metadata[key]
}

// SetMeta sets a metadata value, allocating the map on first use.
func (h *Headline) SetMeta(key, value string) {
	if h.Metadata == nil {
		h.Metadata = make(map[string]string)
	}
	h.Metadata[key] = value
}

// Reindex regenerates the search index entry from the current field values.
// It must be called after any mutation touching title, description, source
// or content, before the headline becomes visible to search.
//
// A headline with no URL has no identity yet; indexing it is a caller bug.
func (h *Headline) Reindex() error {
	if h.URL.IsZero() {
		return fmt.Errorf("reindex headline %d: missing URL identity", h.ID)
	}

	entry := index.Build(index.Document{
		Title:       h.Meta(MetaTitle),
		Description: h.Meta(MetaDescription),
		Source:      h.Source,
		Content:     h.Content,
	})
	h.Index = &entry
	return nil
}

// RankedResult pairs a headline identity with its computed score. It exists
// only for result ordering and the minimum-rank cutoff.
type RankedResult struct {
	ID   int64
	Rank float64
}
