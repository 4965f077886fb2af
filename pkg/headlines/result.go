package headlines

import (
	"time"

	"headline-search/pkg/domain"
)

// Result is one search hit in the shape the presentation layer serializes:
// a JSON array of these objects is the wire form of a search response. The
// URL carries its scheme again; internally it is stored scheme-less.
type Result struct {
	ID          int64     `json:"id"`
	Rank        float64   `json:"rank"`
	Added       time.Time `json:"added"`
	Type        string    `json:"type"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Discussion  string    `json:"discussion,omitempty"`
	Locale      string    `json:"locale,omitempty"`
	TeaserImage string    `json:"teaserImage,omitempty"`
	Favicon     string    `json:"favicon,omitempty"`
	Tags        []string  `json:"tags"`
}

// Ranked reduces the result to its ordering essentials.
func (r Result) Ranked() domain.RankedResult {
	return domain.RankedResult{ID: r.ID, Rank: r.Rank}
}

func newResult(h domain.Headline, rank float64) Result {
	tags := h.Labels
	if tags == nil {
		tags = []string{}
	}
	return Result{
		ID:          h.ID,
		Rank:        rank,
		Added:       h.AddedAt,
		Type:        h.Meta(domain.MetaType),
		Source:      h.Source,
		Title:       h.Meta(domain.MetaTitle),
		URL:         h.URL.String(),
		Description: h.Meta(domain.MetaDescription),
		Discussion:  h.Discussion,
		Locale:      h.Meta(domain.MetaLocale),
		TeaserImage: h.TeaserImage,
		Favicon:     h.Favicon,
		Tags:        tags,
	}
}
