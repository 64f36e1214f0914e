// Package metadata resolves social preview metadata for articles, routing
// each site to its configured fetch strategy.
package metadata

import (
	"context"
	"fmt"

	"github.com/jonesrussell/linktrack/internal/domain"
)

// Fetcher resolves preview metadata for one article on one site.
type Fetcher interface {
	Fetch(ctx context.Context, site *domain.SiteConfig, articleID string) (*domain.Metadata, error)
}

// Router dispatches metadata fetches on the site's configured strategy.
type Router struct {
	contentStore Fetcher
	htmlScrape   Fetcher
}

// NewRouter creates a router. contentStore may be nil when no site uses the
// content-store strategy; dispatching to it then reports the store as
// unavailable rather than crashing.
func NewRouter(contentStore, htmlScrape Fetcher) *Router {
	return &Router{contentStore: contentStore, htmlScrape: htmlScrape}
}

// Fetch dispatches strictly on the strategy enum. Unknown values are an
// explicit error, never a silent default: configuration typos fail loudly.
func (r *Router) Fetch(ctx context.Context, site *domain.SiteConfig, articleID string) (*domain.Metadata, error) {
	switch site.Metadata.Strategy {
	case domain.StrategyContentStore:
		if r.contentStore == nil {
			return nil, fmt.Errorf("content store not configured: %w", domain.ErrUpstreamUnavailable)
		}
		return r.contentStore.Fetch(ctx, site, articleID)

	case domain.StrategyHTMLScrape:
		return r.htmlScrape.Fetch(ctx, site, articleID)

	default:
		return nil, fmt.Errorf("strategy %q: %w", site.Metadata.Strategy, domain.ErrUnsupportedStrategy)
	}
}
