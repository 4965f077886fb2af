package crawler

import "headline-search/pkg/domain"

// Filter decides whether an extracted headline is kept. Filters run in
// order; the first rejection wins.
type Filter interface {
	Keep(h *domain.Headline) bool
}

// Apply runs all filters over a batch of extracted headlines.
func Apply(headlines []domain.Headline, filters ...Filter) []domain.Headline {
	kept := make([]domain.Headline, 0, len(headlines))
	for i := range headlines {
		keep := true
		for _, f := range filters {
			if !f.Keep(&headlines[i]) {
				keep = false
				break
			}
		}
		if keep {
			kept = append(kept, headlines[i])
		}
	}
	return kept
}

// EmptyEntryFilter rejects entries the selectors matched but that carry no
// usable link or title — navigation chrome, ads, placeholder rows.
type EmptyEntryFilter struct{}

// NewEmptyEntryFilter creates the filter.
func NewEmptyEntryFilter() *EmptyEntryFilter {
	return &EmptyEntryFilter{}
}

// Keep rejects headlines without a URL or a title.
func (f *EmptyEntryFilter) Keep(h *domain.Headline) bool {
	return !h.URL.IsZero() && h.Meta(domain.MetaTitle) != ""
}

// SeenURLFilter rejects duplicate URLs within one crawl batch. Comparison
// is scheme-insensitive: the canonical form already has no scheme, so an
// http and an https variant of the same link count as one entry.
type SeenURLFilter struct {
	seen map[string]bool
}

// NewSeenURLFilter creates a filter with an empty seen set. Use one
// instance per crawl batch.
func NewSeenURLFilter() *SeenURLFilter {
	return &SeenURLFilter{seen: make(map[string]bool)}
}

// Keep rejects a headline whose canonical URL was already kept.
func (f *SeenURLFilter) Keep(h *domain.Headline) bool {
	if f.seen[h.URL.Canonical] {
		return false
	}
	f.seen[h.URL.Canonical] = true
	return true
}
