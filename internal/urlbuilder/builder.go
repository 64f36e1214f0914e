// Package urlbuilder reconstructs public article URLs and builds tracked
// redirect targets.
//
// ArticleURL is the single substitution point: the redirect handler and the
// stats report both go through it, so the URLs they emit agree byte-for-byte.
package urlbuilder

import (
	"net/url"
	"strings"

	"github.com/jonesrussell/linktrack/internal/domain"
)

// articlePlaceholder is the token substituted inside url_pattern.
const articlePlaceholder = "{articleId}"

// ArticleURL substitutes the article id into the site's url_pattern over
// https://{domain}. The article id is percent-encoded as an opaque path
// token; no other normalization is applied.
func ArticleURL(site *domain.SiteConfig, articleID string) string {
	path := strings.ReplaceAll(site.Pattern(), articlePlaceholder, url.PathEscape(articleID))
	return "https://" + site.Domain + path
}

// RedirectURL builds the full tracked redirect target: the article URL plus
// the source's UTM parameters and utm_campaign={articleId}, in that order.
func RedirectURL(site *domain.SiteConfig, source domain.SourceConfig, articleID string) string {
	base := ArticleURL(site, articleID)

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}

	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString(sep)
	sb.WriteString("utm_source=")
	sb.WriteString(url.QueryEscape(source.UTMSource))
	sb.WriteString("&utm_medium=")
	sb.WriteString(url.QueryEscape(source.UTMMedium))
	sb.WriteString("&utm_campaign=")
	sb.WriteString(url.QueryEscape(articleID))
	return sb.String()
}

// BareDomainURL is the bot fallback target when metadata is unresolvable.
func BareDomainURL(site *domain.SiteConfig) string {
	return "https://" + site.Domain
}
