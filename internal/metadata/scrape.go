package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/linktrack/internal/domain"
	"github.com/jonesrussell/linktrack/internal/logger"
	"github.com/jonesrussell/linktrack/internal/urlbuilder"
)

// ScrapeFetcher fetches the public article page and extracts preview
// metadata from its markup. Every call is a fresh fetch; nothing is cached.
type ScrapeFetcher struct {
	client    *http.Client
	userAgent string
	log       logger.Logger
}

// NewScrapeFetcher creates a fetcher with a bounded timeout and redirect
// count.
func NewScrapeFetcher(timeout time.Duration, maxRedirects int, userAgent string, log logger.Logger) *ScrapeFetcher {
	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
	return NewScrapeFetcherWithClient(client, userAgent, log)
}

// NewScrapeFetcherWithClient creates a fetcher over a caller-supplied
// client. The caller owns the timeout and redirect policy.
func NewScrapeFetcherWithClient(client *http.Client, userAgent string, log logger.Logger) *ScrapeFetcher {
	return &ScrapeFetcher{client: client, userAgent: userAgent, log: log}
}

// Fetch retrieves the article page and extracts title, description, and
// image. Timeouts, non-success statuses, and parse failures all degrade to
// typed errors; nothing panics past this component.
func (f *ScrapeFetcher) Fetch(ctx context.Context, site *domain.SiteConfig, articleID string) (*domain.Metadata, error) {
	target := urlbuilder.ArticleURL(site, articleID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build scrape request: %v: %w", err, domain.ErrUpstreamUnavailable)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %v: %w", target, err, domain.ErrUpstreamUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil, domain.ErrMetadataNotFound
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("fetch %s: status %d: %w", target, resp.StatusCode, domain.ErrUpstreamUnavailable)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", target, err, domain.ErrMetadataNotFound)
	}

	meta := extract(doc)
	if meta.Title == "" {
		return nil, domain.ErrMetadataNotFound
	}

	// resp.Request.URL is the final URL after redirects, the correct base
	// for resolving relative image references.
	meta.ImageURL = absoluteURL(meta.ImageURL, resp.Request.URL)

	meta.Title = normalizeQuotes(meta.Title)
	meta.Description = normalizeQuotes(meta.Description)
	return meta, nil
}

// extract walks the precedence chain: Open-Graph tags, then generic
// meta-name tags, then the document title element.
func extract(doc *goquery.Document) *domain.Metadata {
	meta := &domain.Metadata{}

	meta.Title = metaContent(doc, "meta[property='og:title']")
	if meta.Title == "" {
		meta.Title = metaContent(doc, "meta[name='title']")
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	meta.Description = metaContent(doc, "meta[property='og:description']")
	if meta.Description == "" {
		meta.Description = metaContent(doc, "meta[name='description']")
	}

	meta.ImageURL = metaContent(doc, "meta[property='og:image']")
	if meta.ImageURL == "" {
		meta.ImageURL = metaContent(doc, "meta[name='twitter:image']")
	}

	return meta
}

// metaContent returns the trimmed content attribute of the first matching
// meta tag, or "".
func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// absoluteURL normalizes an image reference to an absolute URL, handling
// protocol-relative (//host/img), domain-absolute (/img), and
// document-relative (img) forms.
func absoluteURL(ref string, base *url.URL) string {
	if ref == "" || base == nil {
		return ref
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}
