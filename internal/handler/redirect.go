// Package handler implements the HTTP handlers for tracked redirects,
// social previews, and the stats API.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/linktrack/internal/classifier"
	"github.com/jonesrussell/linktrack/internal/domain"
	"github.com/jonesrussell/linktrack/internal/geo"
	"github.com/jonesrussell/linktrack/internal/logger"
	"github.com/jonesrussell/linktrack/internal/metadata"
	"github.com/jonesrussell/linktrack/internal/registry"
	"github.com/jonesrussell/linktrack/internal/storage"
	"github.com/jonesrussell/linktrack/internal/urlbuilder"
)

// RedirectHandler resolves inbound short links into tracked redirects or
// social preview documents.
type RedirectHandler struct {
	registry   *registry.Registry
	classifier *classifier.Classifier
	locator    *geo.Locator
	router     *metadata.Router
	buffer     *storage.Buffer
	logger     logger.Logger
}

// NewRedirectHandler creates a RedirectHandler with the given dependencies.
func NewRedirectHandler(
	reg *registry.Registry,
	cls *classifier.Classifier,
	locator *geo.Locator,
	router *metadata.Router,
	buffer *storage.Buffer,
	log logger.Logger,
) *RedirectHandler {
	return &RedirectHandler{
		registry:   reg,
		classifier: cls,
		locator:    locator,
		router:     router,
		buffer:     buffer,
		logger:     log,
	}
}

// HandleGo processes GET /go/:source/:site/:articleId.
//
// Unknown source and unknown site are distinguishable 404s. Humans get a
// 302 to the UTM-tagged article URL; crawlers get a preview document, or a
// 302 to the bare site domain when metadata cannot be resolved. One event
// is logged per resolved request; logging never changes the outcome.
func (h *RedirectHandler) HandleGo(c *gin.Context) {
	sourceID := c.Param("source")
	siteID := c.Param("site")
	articleID := c.Param("articleId")

	source, err := h.registry.Source(sourceID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown source"})
		return
	}

	site, err := h.registry.Site(siteID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown site"})
		return
	}

	verdict := h.classifier.Classify(c.Request.UserAgent())

	kind := domain.KindClick
	if verdict == classifier.Bot {
		kind = domain.KindPreview
	}
	h.logEvent(c, source.ID, site.ID, articleID, kind)

	if verdict == classifier.Human {
		redirectsTotal.WithLabelValues(outcomeRedirect).Inc()
		c.Redirect(http.StatusFound, urlbuilder.RedirectURL(site, source, articleID))
		return
	}

	h.servePreview(c, site, articleID)
}

// servePreview fetches metadata for a crawler request. An unresolvable
// fetch degrades to a redirect to the bare site domain, never an error page.
func (h *RedirectHandler) servePreview(c *gin.Context, site *domain.SiteConfig, articleID string) {
	meta, err := h.router.Fetch(c.Request.Context(), site, articleID)
	if err != nil {
		if !errors.Is(err, domain.ErrMetadataNotFound) {
			h.logger.Warn("Metadata fetch failed",
				logger.String("site", site.ID),
				logger.String("article_id", articleID),
				logger.Error(err),
			)
		}
		redirectsTotal.WithLabelValues(outcomeFallback).Inc()
		c.Redirect(http.StatusFound, urlbuilder.BareDomainURL(site))
		return
	}

	redirectsTotal.WithLabelValues(outcomePreview).Inc()
	renderPreview(c, site, articleID, meta)
}

// logEvent enqueues one click event. A full buffer drops the event with a
// warning; persistence failures further down never surface here.
func (h *RedirectHandler) logEvent(c *gin.Context, sourceID, siteID, articleID string, kind domain.EventKind) {
	ip := c.ClientIP()
	event := domain.ClickEvent{
		IP:        ip,
		Country:   h.locator.Country(ip),
		UserAgent: c.Request.UserAgent(),
		Source:    sourceID,
		Site:      siteID,
		ArticleID: articleID,
		Kind:      kind,
		CreatedAt: time.Now(),
	}

	if !h.buffer.Send(event) {
		h.logger.Warn("Click event buffer full, dropping event",
			logger.String("site", siteID),
			logger.String("article_id", articleID),
		)
	}
}
