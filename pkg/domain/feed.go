package domain

import "time"

// Feed is a configured external source of headlines, polled periodically.
// The selector fields are CSS selectors interpreted by the crawler; this
// package treats them as opaque strings.
type Feed struct {
	ID  int64
	URL string

	// EntrySelector matches one crawled entry per headline. When empty the
	// crawler falls back to RSS/Atom parsing of the feed URL.
	EntrySelector      string
	TitleSelector      string
	LinkSelector       string
	DiscussionSelector string
	LabelSelector      string
	ExcludeSelector    string

	// Label is the human-readable source name attached to headlines.
	Label string

	Updated        time.Time     // last successful poll
	UpdateInterval time.Duration // must be > 0
	AddedAt        time.Time

	// ResumeCursor is an opaque token appended verbatim to URL on the next
	// poll (e.g. "&page=2"). Empty means start fresh.
	ResumeCursor string
}

// CrawlURL is the exact URL the next poll should fetch: the base URL with
// the resume cursor appended verbatim when present.
func (f Feed) CrawlURL() string {
	return f.URL + f.ResumeCursor
}

// Due reports whether the feed should be polled again at the given time.
func (f Feed) Due(now time.Time) bool {
	return f.Updated.Add(f.UpdateInterval).Before(now)
}

// FeedCrawlRequest is the unit of work handed to the crawler: which feed to
// poll and the exact URL to fetch.
type FeedCrawlRequest struct {
	FeedID int64
	URL    string
}

// PollResult is what the crawler reports back after executing one request.
// The new headlines are persisted through the storage collaborator and the
// cursor becomes the feed's resume point for the next poll.
type PollResult struct {
	FeedID           int64
	Headlines        []Headline
	NextResumeCursor string
}
