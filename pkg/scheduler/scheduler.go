// Package scheduler decides which feeds are due for a new crawl and drives
// the periodic poll loop that executes those crawls.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"headline-search/pkg/domain"
)

// FeedStore is the narrow storage read interface the scheduler consumes.
type FeedStore interface {
	ListFeeds(ctx context.Context) ([]domain.Feed, error)
}

// Scheduler computes the due set of feeds. It performs no mutation and no
// network I/O; the crawler executes the requests and reports back.
type Scheduler struct {
	store FeedStore
}

// New creates a Scheduler over the given feed store.
func New(store FeedStore) *Scheduler {
	return &Scheduler{store: store}
}

// PendingFeeds returns one crawl request per feed that is due at now: a
// feed is due when updated + updateInterval < now. The request URL is the
// feed's base URL with the resume cursor appended verbatim when present.
//
// Requests are ordered by feed ID ascending so the output is deterministic
// regardless of how overdue each feed is. A feed that cannot be evaluated
// contributes an error instead of blocking the rest of the pass; the
// returned error slice is empty on a clean pass.
func (s *Scheduler) PendingFeeds(ctx context.Context, now time.Time) ([]domain.FeedCrawlRequest, []error) {
	feeds, err := s.store.ListFeeds(ctx)
	if err != nil {
		return nil, []error{fmt.Errorf("list feeds: %w", err)}
	}

	var requests []domain.FeedCrawlRequest
	var errs []error
	for _, f := range feeds {
		if f.UpdateInterval <= 0 {
			errs = append(errs, fmt.Errorf("feed %d: update interval %s is not positive", f.ID, f.UpdateInterval))
			continue
		}
		if f.URL == "" {
			errs = append(errs, fmt.Errorf("feed %d: empty URL", f.ID))
			continue
		}
		if !f.Due(now) {
			continue
		}
		requests = append(requests, domain.FeedCrawlRequest{
			FeedID: f.ID,
			URL:    f.CrawlURL(),
		})
	}

	sort.Slice(requests, func(i, j int) bool {
		return requests[i].FeedID < requests[j].FeedID
	})

	return requests, errs
}
