// Package replication copies headlines from the serving store into the
// MongoDB archive, so rows removed by the purge policy survive for later
// analysis.
package replication

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"headline-search/pkg/domain"
)

const (
	batchSize  = 100
	numWorkers = 5
)

// Source is the read side of the replication: the serving headline store.
type Source interface {
	ListHeadlinesSince(ctx context.Context, since time.Time) ([]domain.Headline, error)
}

// Archive is the write side: the archival sink. Implemented by the Mongo
// archive client.
type Archive interface {
	SaveHeadline(ctx context.Context, h *domain.Headline) error
	ArchivedURLs(ctx context.Context) (map[string]bool, error)
}

// Replicator copies headlines from the serving store to the archive.
// Already-archived URLs are skipped, so repeated runs are cheap.
type Replicator struct {
	source  Source
	archive Archive
}

// New creates a replicator.
func New(source Source, archive Archive) (*Replicator, error) {
	if source == nil {
		return nil, fmt.Errorf("source store is required")
	}
	if archive == nil {
		return nil, fmt.Errorf("archive client is required")
	}
	return &Replicator{source: source, archive: archive}, nil
}

// Replicate archives every headline added after since that is not yet in
// the archive. Batches run on a small worker pool; the first batch error
// aborts the pass.
func (r *Replicator) Replicate(ctx context.Context, since time.Time) error {
	headlines, err := r.source.ListHeadlinesSince(ctx, since)
	if err != nil {
		return fmt.Errorf("load headlines: %w", err)
	}

	archived, err := r.archive.ArchivedURLs(ctx)
	if err != nil {
		return fmt.Errorf("load archived urls: %w", err)
	}

	pending := filterUnarchived(headlines, archived)
	if len(pending) == 0 {
		log.Printf("[replication] nothing to archive (%d headlines already covered)", len(headlines))
		return nil
	}
	log.Printf("[replication] archiving %d of %d headline(s)", len(pending), len(headlines))

	if err := r.archiveBatches(ctx, pending); err != nil {
		return err
	}

	log.Printf("[replication] done — %d headline(s) archived", len(pending))
	return nil
}

func filterUnarchived(headlines []domain.Headline, archived map[string]bool) []domain.Headline {
	out := make([]domain.Headline, 0, len(headlines))
	for _, h := range headlines {
		if h.URL.IsZero() || archived[h.URL.Canonical] {
			continue
		}
		out = append(out, h)
	}
	return out
}

// archiveBatches fans batches out to numWorkers goroutines and collects the
// first error.
func (r *Replicator) archiveBatches(ctx context.Context, pending []domain.Headline) error {
	numBatches := (len(pending) + batchSize - 1) / batchSize
	jobs := make(chan []domain.Headline, numBatches)
	errs := make(chan error, numBatches)

	for start := 0; start < len(pending); start += batchSize {
		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}
		jobs <- pending[start:end]
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				errs <- r.archiveBatch(ctx, batch)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Replicator) archiveBatch(ctx context.Context, batch []domain.Headline) error {
	for i := range batch {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := r.archive.SaveHeadline(ctx, &batch[i]); err != nil {
			return fmt.Errorf("archive %s: %w", batch[i].URL.Canonical, err)
		}
	}
	return nil
}
