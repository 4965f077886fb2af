// Package content backfills a stored headline with data only available from
// the article page itself: the extracted full text, a short summary, the
// site favicon and a teaser image.
package content

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"headline-search/pkg/domain"
	"headline-search/pkg/httpclient"
)

const summaryLength = 300

// Enricher fetches article pages and fills in the optional headline fields.
type Enricher struct {
	client *httpclient.Client
}

// NewEnricher creates an enricher using browser-like headers; article pages
// are pickier about User-Agents than feed endpoints.
func NewEnricher() *Enricher {
	return &Enricher{client: httpclient.New(httpclient.BrowserClient)}
}

// Enrich fetches the headline's page and backfills content, summary,
// favicon and teaser image. Fields that cannot be extracted are left as
// they were; the headline must be reindexed afterwards since content is a
// searchable field.
func (e *Enricher) Enrich(ctx context.Context, h *domain.Headline) error {
	if h.URL.IsZero() {
		return fmt.Errorf("enrich headline %d: missing URL", h.ID)
	}

	pageURL := h.URL.String()
	body, err := e.client.Get(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("fetch article page: %w", err)
	}

	if text, err := ExtractText(string(body)); err == nil && text != "" {
		h.Content = text
		h.Summary = Summarize(text)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("parse article page: %w", err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return fmt.Errorf("parse page URL: %w", err)
	}

	if favicon := ExtractFavicon(doc, base); favicon != "" {
		h.Favicon = favicon
	}
	if teaser := ExtractTeaserImage(doc, base); teaser != "" {
		h.TeaserImage = teaser
	}

	return h.Reindex()
}

// ExtractText extracts the main article text from an HTML page.
func ExtractText(htmlContent string) (string, error) {
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	return strings.TrimSpace(article.TextContent), nil
}

// Summarize produces the short teaser summary: the first words of the
// extracted text, cut at a rune boundary.
func Summarize(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= summaryLength {
		return text
	}
	return string(runes[:summaryLength-3]) + "..."
}

// ExtractFavicon finds the page's icon link and resolves it absolute.
// Falls back to the conventional /favicon.ico location.
func ExtractFavicon(doc *goquery.Document, base *url.URL) string {
	for _, selector := range []string{
		"link[rel='icon']",
		"link[rel='shortcut icon']",
		"link[rel='apple-touch-icon']",
	} {
		if href, ok := doc.Find(selector).First().Attr("href"); ok && href != "" {
			return resolve(base, href)
		}
	}
	return base.Scheme + "://" + base.Host + "/favicon.ico"
}

// ExtractTeaserImage finds a representative image via the page's Open Graph
// or Twitter card metadata.
func ExtractTeaserImage(doc *goquery.Document, base *url.URL) string {
	for _, selector := range []string{
		"meta[property='og:image']",
		"meta[name='twitter:image']",
	} {
		if content, ok := doc.Find(selector).First().Attr("content"); ok && content != "" {
			return resolve(base, content)
		}
	}
	return ""
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
