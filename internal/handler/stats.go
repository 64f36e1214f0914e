package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/linktrack/internal/logger"
	"github.com/jonesrussell/linktrack/internal/registry"
	"github.com/jonesrussell/linktrack/internal/stats"
)

// Default caps applied when the caller does not supply limits.
const (
	defaultArticleLimit = 25
	defaultCountryLimit = 10
)

// StatsHandler serves the aggregated stats API.
type StatsHandler struct {
	registry *registry.Registry
	service  *stats.Service
	logger   logger.Logger
}

// NewStatsHandler creates a StatsHandler with the given dependencies.
func NewStatsHandler(reg *registry.Registry, svc *stats.Service, log logger.Logger) *StatsHandler {
	return &StatsHandler{registry: reg, service: svc, logger: log}
}

// HandleStats processes GET /api/stats. Authentication is enforced by
// middleware before this handler runs.
func (h *StatsHandler) HandleStats(c *gin.Context) {
	req, ok := h.parseRequest(c)
	if !ok {
		return
	}

	report, err := h.service.GetStats(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Stats aggregation failed",
			logger.String("site", req.Site.ID),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// parseRequest validates query parameters. On failure it writes the 400
// response and returns ok=false.
func (h *StatsHandler) parseRequest(c *gin.Context) (stats.Request, bool) {
	siteID := c.Query("site")
	if siteID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing site"})
		return stats.Request{}, false
	}

	site, err := h.registry.Site(siteID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown site"})
		return stats.Request{}, false
	}

	interval, ok := h.parseInterval(c)
	if !ok {
		return stats.Request{}, false
	}

	articleLimit, ok := parseLimit(c, "limit", defaultArticleLimit)
	if !ok {
		return stats.Request{}, false
	}
	countryLimit, ok := parseLimit(c, "countries_limit", defaultCountryLimit)
	if !ok {
		return stats.Request{}, false
	}

	return stats.Request{
		Site:         site,
		Interval:     interval,
		Source:       c.Query("source"),
		ArticleLimit: articleLimit,
		CountryLimit: countryLimit,
	}, true
}

// parseInterval resolves either a period token or an explicit date range.
func (h *StatsHandler) parseInterval(c *gin.Context) (stats.Interval, bool) {
	period := c.Query("period")
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")

	var (
		interval stats.Interval
		err      error
	)

	switch {
	case period != "":
		interval, err = stats.Resolve(period, time.Now())
	case startDate != "" && endDate != "":
		interval, err = stats.ResolveRange(startDate, endDate, time.Local)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing period or start_date/end_date"})
		return stats.Interval{}, false
	}

	if err != nil {
		if errors.Is(err, stats.ErrInvalidPeriod) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return stats.Interval{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return stats.Interval{}, false
	}

	return interval, true
}

// parseLimit reads an integer limit parameter. Absent values fall back to
// the default; explicit values pass through unchanged, so 0 can disable
// country breakdowns and negative values mean unbounded.
func parseLimit(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return n, true
}
