// Package crawler executes feed crawl requests: it fetches the crawl URL,
// extracts headline entries with the feed's CSS selectors (falling back to
// RSS/Atom parsing when no selectors are configured), and reports the new
// headlines plus the resume cursor for the next poll.
package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"headline-search/pkg/domain"
	"headline-search/pkg/httpclient"
)

// FeedStore provides the feed record (selectors, label) for a crawl request.
type FeedStore interface {
	GetFeed(ctx context.Context, id int64) (*domain.Feed, error)
}

// Crawler fetches and parses feed pages.
type Crawler struct {
	feeds  FeedStore
	client *httpclient.Client
	parser *gofeed.Parser
	now    func() time.Time
}

// New creates a crawler. The simple header profile is the default; some
// news sites serve feed readers but block browser impersonation.
func New(feeds FeedStore) *Crawler {
	return &Crawler{
		feeds:  feeds,
		client: httpclient.New(httpclient.SimpleClient),
		parser: gofeed.NewParser(),
		now:    time.Now,
	}
}

// Poll executes one crawl request and returns the extracted headlines and
// the next resume cursor. It never persists anything itself.
func (c *Crawler) Poll(ctx context.Context, req domain.FeedCrawlRequest) (*domain.PollResult, error) {
	feed, err := c.feeds.GetFeed(ctx, req.FeedID)
	if err != nil {
		return nil, fmt.Errorf("load feed %d: %w", req.FeedID, err)
	}

	body, err := c.client.Get(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("crawl feed %d: %w", req.FeedID, err)
	}

	var headlines []domain.Headline
	var cursor string
	if feed.EntrySelector != "" {
		headlines, cursor, err = c.extractEntries(feed, body, req.URL)
	} else {
		headlines, err = c.parseSyndicated(feed, body)
	}
	if err != nil {
		return nil, fmt.Errorf("parse feed %d: %w", req.FeedID, err)
	}

	// The seen-URL filter is stateful; each batch gets a fresh one.
	headlines = Apply(headlines, NewEmptyEntryFilter(), NewSeenURLFilter())

	return &domain.PollResult{
		FeedID:           feed.ID,
		Headlines:        headlines,
		NextResumeCursor: cursor,
	}, nil
}

// extractEntries pulls one headline per element matched by the feed's entry
// selector. All selectors are scoped to the entry element; relative links
// resolve against the crawled URL.
func (c *Crawler) extractEntries(feed *domain.Feed, body []byte, crawlURL string) ([]domain.Headline, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("parse HTML: %w", err)
	}

	base, err := url.Parse(crawlURL)
	if err != nil {
		return nil, "", fmt.Errorf("parse crawl URL: %w", err)
	}

	now := c.now()
	var headlines []domain.Headline
	doc.Find(feed.EntrySelector).Each(func(_ int, entry *goquery.Selection) {
		if feed.ExcludeSelector != "" && entry.Find(feed.ExcludeSelector).Length() > 0 {
			return
		}

		link := entry.Find("a").First()
		if feed.LinkSelector != "" {
			link = entry.Find(feed.LinkSelector).First()
		}
		href, _ := link.Attr("href")
		href = resolveHref(base, href)

		title := strings.TrimSpace(link.Text())
		if feed.TitleSelector != "" {
			title = strings.TrimSpace(entry.Find(feed.TitleSelector).First().Text())
		}

		var discussion string
		if feed.DiscussionSelector != "" {
			if d, ok := entry.Find(feed.DiscussionSelector).First().Attr("href"); ok {
				discussion = resolveHref(base, d)
			}
		}

		var labels []string
		if feed.LabelSelector != "" {
			entry.Find(feed.LabelSelector).Each(func(_ int, s *goquery.Selection) {
				if label := strings.TrimSpace(s.Text()); label != "" {
					labels = append(labels, label)
				}
			})
		}

		h := domain.Headline{
			FeedID:     feed.ID,
			Source:     feed.Label,
			URL:        domain.ParseNewsURL(href),
			Discussion: discussion,
			Labels:     labels,
			AddedAt:    now,
		}
		h.SetMeta(domain.MetaTitle, title)
		h.SetMeta(domain.MetaType, "article")
		headlines = append(headlines, h)
	})

	return headlines, nextCursor(feed.URL, doc), nil
}

// parseSyndicated handles feeds without an entry selector: the crawl URL is
// an RSS/Atom document.
func (c *Crawler) parseSyndicated(feed *domain.Feed, body []byte) ([]domain.Headline, error) {
	parsed, err := c.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse syndication feed: %w", err)
	}

	now := c.now()
	headlines := make([]domain.Headline, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		h := domain.Headline{
			FeedID:  feed.ID,
			Source:  feed.Label,
			URL:     domain.ParseNewsURL(item.Link),
			Labels:  item.Categories,
			AddedAt: now,
		}
		h.SetMeta(domain.MetaTitle, item.Title)
		h.SetMeta(domain.MetaDescription, stripToText(item.Description))
		h.SetMeta(domain.MetaType, "article")
		if parsed.Language != "" {
			h.SetMeta(domain.MetaLocale, parsed.Language)
		}
		headlines = append(headlines, h)
	}
	return headlines, nil
}

// nextCursor derives the resume cursor from a rel=next pagination link: the
// query part of its target, shaped so that appending it verbatim to the
// feed's BASE URL reproduces the next page. The separator therefore comes
// from the base URL, not the crawled one (which already carries the previous
// cursor), and parameters the base URL carries itself are dropped from the
// link's query. No link means start fresh.
func nextCursor(baseURL string, doc *goquery.Document) string {
	href, ok := doc.Find("a[rel='next'], link[rel='next']").First().Attr("href")
	if !ok {
		return ""
	}

	i := strings.IndexByte(href, '?')
	if i < 0 {
		return ""
	}
	next, err := url.ParseQuery(href[i+1:])
	if err != nil {
		return ""
	}

	if j := strings.IndexByte(baseURL, '?'); j >= 0 {
		if base, err := url.ParseQuery(baseURL[j+1:]); err == nil {
			for key := range base {
				next.Del(key)
			}
		}
	}
	query := next.Encode()
	if query == "" {
		return ""
	}

	if strings.Contains(baseURL, "?") {
		return "&" + query
	}
	return "?" + query
}

func resolveHref(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// stripToText drops markup from RSS descriptions; feeds routinely embed
// HTML there.
func stripToText(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
