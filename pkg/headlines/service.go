// Package headlines orchestrates ranked search and chronological browsing
// over stored headlines. It is a pure read path: no writes, no caches.
package headlines

import (
	"context"
	"fmt"
	"sort"
	"time"

	"headline-search/pkg/domain"
	"headline-search/pkg/query"
	"headline-search/pkg/rank"
)

// Store is the narrow storage read interface the service consumes.
type Store interface {
	// ListHeadlinesSince returns all headlines with AddedAt after the given
	// time, in any order.
	ListHeadlinesSince(ctx context.Context, since time.Time) ([]domain.Headline, error)
}

// BrowseRank is the fixed sentinel score assigned to every result in browse
// mode. It sits above any attainable ranked score (relevance is a small sum
// of weights <= 1 and decay never exceeds 1), so ranked and browse results
// can never be confused; the two modes are never mixed in one call anyway.
const BrowseRank = 1e9

// Default query parameters.
const (
	DefaultSince   = 7 * 24 * time.Hour
	DefaultMinRank = 0.05
	DefaultLimit   = 100
)

// Params are the search parameters of one query call.
type Params struct {
	Since   time.Duration // recency window, headlines older than now-Since are out
	Query   string        // raw user search text, empty selects browse mode
	MinRank float64       // minimum combined score in ranked mode
	Limit   int
	Offset  int
}

// DefaultParams returns the parameters used when a caller passes none:
// the last seven days, no search text, a small positive rank threshold and
// a large first page.
func DefaultParams() Params {
	return Params{
		Since:   DefaultSince,
		MinRank: DefaultMinRank,
		Limit:   DefaultLimit,
	}
}

// Service answers search queries against the headline store.
type Service struct {
	store  Store
	engine *rank.Engine
	now    func() time.Time
}

// NewService creates a query service. The engine carries the injected decay
// curve used in ranked mode.
func NewService(store Store, engine *rank.Engine) *Service {
	return &Service{store: store, engine: engine, now: time.Now}
}

// Query runs one search call and returns the ordered, paginated results.
//
// The mode is selected upfront, solely by the sanitized query:
//
//   - ranked mode (non-empty query): headlines within the window are scored,
//     those passing MinRank are ordered by score descending then identity
//     descending;
//   - browse mode (empty query): every headline within the window is kept
//     with the BrowseRank sentinel, ordered by identity descending. MinRank
//     and relevance play no part.
//
// Offset is a logical position into the filtered-and-ordered set, so for
// fixed parameters and unchanged data, paging is stable.
func (s *Service) Query(ctx context.Context, p Params) ([]Result, error) {
	q := query.Sanitize(p.Query)

	cutoff := s.now().Add(-p.Since)
	candidates, err := s.store.ListHeadlinesSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list headlines since %s: %w", cutoff.Format(time.RFC3339), err)
	}

	var ranked []rankedHeadline
	if q.IsEmpty() {
		ranked = s.browse(candidates)
	} else {
		ranked = s.rank(candidates, q, p.MinRank)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].rank != ranked[j].rank {
			return ranked[i].rank > ranked[j].rank
		}
		// Equal scores break by highest identity first: the newer
		// document wins.
		return ranked[i].headline.ID > ranked[j].headline.ID
	})

	return buildResults(paginate(ranked, p.Offset, p.Limit)), nil
}

type rankedHeadline struct {
	headline domain.Headline
	rank     float64
}

func (s *Service) browse(candidates []domain.Headline) []rankedHeadline {
	out := make([]rankedHeadline, 0, len(candidates))
	for _, h := range candidates {
		out = append(out, rankedHeadline{headline: h, rank: BrowseRank})
	}
	return out
}

func (s *Service) rank(candidates []domain.Headline, q query.Query, minRank float64) []rankedHeadline {
	out := make([]rankedHeadline, 0, len(candidates))
	for _, h := range candidates {
		score, ok := s.engine.Score(h.Index, q, h.AddedAt, minRank)
		if !ok {
			continue
		}
		out = append(out, rankedHeadline{headline: h, rank: score})
	}
	return out
}

func paginate(ranked []rankedHeadline, offset, limit int) []rankedHeadline {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ranked) {
		return nil
	}
	ranked = ranked[offset:]
	if limit >= 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}

func buildResults(ranked []rankedHeadline) []Result {
	results := make([]Result, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, newResult(r.headline, r.rank))
	}
	return results
}
