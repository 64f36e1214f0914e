package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/linktrack/internal/domain"
	"github.com/jonesrussell/linktrack/internal/handler"
	"github.com/jonesrussell/linktrack/internal/logger"
	"github.com/jonesrussell/linktrack/internal/stats"
	"github.com/jonesrussell/linktrack/internal/storage"
)

// fakeStatsRepo records the limits it was asked for and returns empty rows.
type fakeStatsRepo struct {
	articleLimit int
	countryLimit int
}

func (f *fakeStatsRepo) Totals(_ context.Context, _ storage.StatsQuery) (int64, int64, error) {
	return 7, 2, nil
}

func (f *fakeStatsRepo) TopArticles(_ context.Context, _ storage.StatsQuery, _ domain.EventKind, limit int) ([]storage.ArticleCount, error) {
	f.articleLimit = limit
	return nil, nil
}

func (f *fakeStatsRepo) Countries(_ context.Context, _ storage.StatsQuery, limit int) ([]storage.CountryCount, error) {
	f.countryLimit = limit
	return nil, nil
}

func (f *fakeStatsRepo) SourceBreakdown(_ context.Context, _ storage.StatsQuery) ([]storage.SourceCount, error) {
	return nil, nil
}

func (f *fakeStatsRepo) ArticleCountries(_ context.Context, _ storage.StatsQuery, _ []string, _ int) ([]storage.ArticleCountryCount, error) {
	return nil, nil
}

func setupStatsRouter(t *testing.T) (*gin.Engine, *fakeStatsRepo) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()

	repo := &fakeStatsRepo{}
	h := handler.NewStatsHandler(testRegistry(), stats.NewService(repo), logger.NewNop())
	r.GET("/api/stats", h.HandleStats)

	return r, repo
}

func getStats(t *testing.T, r *gin.Engine, query string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats"+query, http.NoBody)
	r.ServeHTTP(w, req)
	return w
}

func TestHandleStats_MissingSite(t *testing.T) {
	r, _ := setupStatsRouter(t)

	w := getStats(t, r, "?period=day")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "missing site") {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestHandleStats_UnknownSite(t *testing.T) {
	r, _ := setupStatsRouter(t)

	w := getStats(t, r, "?site=nope&period=day")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "unknown site") {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestHandleStats_MissingPeriod(t *testing.T) {
	r, _ := setupStatsRouter(t)

	w := getStats(t, r, "?site=example")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleStats_InvalidPeriod(t *testing.T) {
	r, _ := setupStatsRouter(t)

	w := getStats(t, r, "?site=example&period=fortnight")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid period") {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestHandleStats_InvalidLimit(t *testing.T) {
	r, _ := setupStatsRouter(t)

	w := getStats(t, r, "?site=example&period=day&limit=lots")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid limit") {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestHandleStats_PeriodToken(t *testing.T) {
	r, repo := setupStatsRouter(t)

	w := getStats(t, r, "?site=example&period=day")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var report stats.Report
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if report.Site != "example" {
		t.Fatalf("site = %q", report.Site)
	}
	if report.TotalClicks != 7 || report.TotalPreviews != 2 {
		t.Fatalf("totals = %d/%d", report.TotalClicks, report.TotalPreviews)
	}

	// Defaults applied when limits are absent.
	if repo.articleLimit != 25 {
		t.Fatalf("article limit = %d, want default 25", repo.articleLimit)
	}
	if repo.countryLimit != 10 {
		t.Fatalf("country limit = %d, want default 10", repo.countryLimit)
	}
}

func TestHandleStats_ExplicitRange(t *testing.T) {
	r, _ := setupStatsRouter(t)

	w := getStats(t, r, "?site=example&start_date=2026-01-01&end_date=2026-01-31")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHandleStats_BadRangeDates(t *testing.T) {
	r, _ := setupStatsRouter(t)

	w := getStats(t, r, "?site=example&start_date=2026-01-31&end_date=2026-01-01")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleStats_ExplicitLimitsPassThrough(t *testing.T) {
	r, repo := setupStatsRouter(t)

	w := getStats(t, r, "?site=example&period=day&limit=-1&countries_limit=0")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if repo.articleLimit != -1 {
		t.Fatalf("article limit = %d, want -1 (unbounded)", repo.articleLimit)
	}
	// countries_limit=0 suppresses the query entirely.
	if repo.countryLimit != 0 {
		t.Fatalf("country limit = %d, want untouched 0", repo.countryLimit)
	}
}
