package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"headline-search/pkg/domain"
)

// Poller executes one crawl request and reports the outcome. Implemented by
// the crawler package.
type Poller interface {
	Poll(ctx context.Context, req domain.FeedCrawlRequest) (*domain.PollResult, error)
}

// WriteStore is the storage write interface the runner needs to persist a
// completed poll.
type WriteStore interface {
	UpsertHeadline(ctx context.Context, h *domain.Headline) error
	UpdateFeed(ctx context.Context, id int64, updated time.Time, resumeCursor string) error
}

// Marker guards against overlapping polls of the same feed. Two scheduler
// passes may both see a feed as due; the marker ensures only one crawls it.
type Marker interface {
	TryAcquire(ctx context.Context, feedID int64) (bool, error)
	Release(ctx context.Context, feedID int64) error
}

// Runner wraps robfig/cron and manages the recurring poll loop: compute the
// due set, crawl each due feed with a bounded worker pool, persist results.
type Runner struct {
	sched   *Scheduler
	poller  Poller
	store   WriteStore
	marker  Marker
	cron    *cron.Cron
	spec    string // cron spec, e.g. "@every 5m"
	workers int
}

// NewRunner creates a Runner that fires on the given interval.
func NewRunner(sched *Scheduler, poller Poller, store WriteStore, marker Marker, interval time.Duration, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		sched:   sched,
		poller:  poller,
		store:   store,
		marker:  marker,
		cron:    cron.New(),
		spec:    fmt.Sprintf("@every %s", interval),
		workers: workers,
	}
}

// Start registers the job and starts the loop. One pass runs immediately so
// fresh feeds don't wait for the first tick.
func (r *Runner) Start(ctx context.Context) error {
	_, err := r.cron.AddFunc(r.spec, func() {
		r.RunPass(ctx, time.Now())
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	r.cron.Start()
	log.Printf("[scheduler] poll loop started — spec: %s", r.spec)

	go r.RunPass(ctx, time.Now())
	return nil
}

// Stop shuts the loop down. In-flight crawls finish on their own.
func (r *Runner) Stop() {
	r.cron.Stop()
	log.Println("[scheduler] poll loop stopped")
}

// RunPass executes one scheduling pass at the given time: every due feed is
// crawled once. Per-feed failures are logged and never abort the pass.
func (r *Runner) RunPass(ctx context.Context, now time.Time) {
	requests, errs := r.sched.PendingFeeds(ctx, now)
	for _, err := range errs {
		log.Printf("[scheduler] pending feeds: %v", err)
	}
	if len(requests) == 0 {
		return
	}
	log.Printf("[scheduler] %d feed(s) due", len(requests))

	jobs := make(chan domain.FeedCrawlRequest, len(requests))
	for _, req := range requests {
		jobs <- req
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for req := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if err := r.pollOne(ctx, req); err != nil {
					log.Printf("[scheduler] feed %d: %v", req.FeedID, err)
				}
			}
		}()
	}
	wg.Wait()
}

// pollOne crawls a single due feed and persists the outcome. The in-flight
// marker is taken first so an overlapping pass skips the feed.
func (r *Runner) pollOne(ctx context.Context, req domain.FeedCrawlRequest) error {
	acquired, err := r.marker.TryAcquire(ctx, req.FeedID)
	if err != nil {
		return fmt.Errorf("acquire in-flight marker: %w", err)
	}
	if !acquired {
		log.Printf("[scheduler] feed %d already being polled — skipping", req.FeedID)
		return nil
	}
	defer func() {
		if err := r.marker.Release(ctx, req.FeedID); err != nil {
			log.Printf("[scheduler] feed %d: release marker: %v", req.FeedID, err)
		}
	}()

	result, err := r.poller.Poll(ctx, req)
	if err != nil {
		return fmt.Errorf("poll: %w", err)
	}

	var saved int
	for i := range result.Headlines {
		h := &result.Headlines[i]
		if err := r.store.UpsertHeadline(ctx, h); err != nil {
			log.Printf("[scheduler] feed %d: save headline %s: %v", req.FeedID, h.URL.Canonical, err)
			continue
		}
		saved++
	}

	if err := r.store.UpdateFeed(ctx, req.FeedID, time.Now(), result.NextResumeCursor); err != nil {
		return fmt.Errorf("update feed state: %w", err)
	}

	log.Printf("[scheduler] feed %d done — %d/%d headline(s) saved, next cursor %q",
		req.FeedID, saved, len(result.Headlines), result.NextResumeCursor)
	return nil
}
