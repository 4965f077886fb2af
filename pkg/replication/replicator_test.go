package replication

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"headline-search/pkg/domain"
)

type mockSource struct {
	headlines []domain.Headline
	err       error
}

func (m *mockSource) ListHeadlinesSince(ctx context.Context, since time.Time) ([]domain.Headline, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.headlines, nil
}

type mockArchive struct {
	mu       sync.Mutex
	existing map[string]bool
	saved    []string
	saveErr  error
}

func (m *mockArchive) SaveHeadline(ctx context.Context, h *domain.Headline) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, h.URL.Canonical)
	return nil
}

func (m *mockArchive) ArchivedURLs(ctx context.Context) (map[string]bool, error) {
	if m.existing == nil {
		return map[string]bool{}, nil
	}
	return m.existing, nil
}

func headlineFor(url string) domain.Headline {
	h := domain.Headline{URL: domain.ParseNewsURL(url), AddedAt: time.Now()}
	h.SetMeta(domain.MetaTitle, "Story")
	return h
}

func TestReplicateSkipsArchived(t *testing.T) {
	source := &mockSource{headlines: []domain.Headline{
		headlineFor("https://example.com/a"),
		headlineFor("https://example.com/b"),
		headlineFor("https://example.com/c"),
	}}
	archive := &mockArchive{existing: map[string]bool{"example.com/b": true}}

	r, err := New(source, archive)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := r.Replicate(context.Background(), time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Replicate failed: %v", err)
	}

	if len(archive.saved) != 2 {
		t.Fatalf("Expected 2 headlines archived, got %d: %v", len(archive.saved), archive.saved)
	}
	for _, url := range archive.saved {
		if url == "example.com/b" {
			t.Error("Expected the already-archived URL to be skipped")
		}
	}
}

func TestReplicateNothingPending(t *testing.T) {
	source := &mockSource{headlines: []domain.Headline{headlineFor("https://example.com/a")}}
	archive := &mockArchive{existing: map[string]bool{"example.com/a": true}}

	r, _ := New(source, archive)
	if err := r.Replicate(context.Background(), time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Replicate failed: %v", err)
	}
	if len(archive.saved) != 0 {
		t.Errorf("Expected nothing archived, got %v", archive.saved)
	}
}

func TestReplicateSourceError(t *testing.T) {
	source := &mockSource{err: errors.New("connection refused")}
	r, _ := New(source, &mockArchive{})

	if err := r.Replicate(context.Background(), time.Now()); err == nil {
		t.Error("Expected a source error to abort the pass")
	}
}

func TestReplicateSaveErrorAborts(t *testing.T) {
	source := &mockSource{headlines: []domain.Headline{headlineFor("https://example.com/a")}}
	archive := &mockArchive{saveErr: errors.New("write failed")}

	r, _ := New(source, archive)
	if err := r.Replicate(context.Background(), time.Now().Add(-time.Hour)); err == nil {
		t.Error("Expected a save error to surface")
	}
}

func TestNewValidatesCollaborators(t *testing.T) {
	if _, err := New(nil, &mockArchive{}); err == nil {
		t.Error("Expected an error for a nil source")
	}
	if _, err := New(&mockSource{}, nil); err == nil {
		t.Error("Expected an error for a nil archive")
	}
}
