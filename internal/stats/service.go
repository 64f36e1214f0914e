package stats

import (
	"context"
	"fmt"
	"math"

	"github.com/jonesrussell/linktrack/internal/domain"
	"github.com/jonesrussell/linktrack/internal/storage"
	"github.com/jonesrussell/linktrack/internal/urlbuilder"
)

// CountriesDisabled is the CountryLimit value that suppresses every country
// breakdown in the report.
const CountriesDisabled = 0

// Repository is the aggregation query surface the service depends on.
type Repository interface {
	Totals(ctx context.Context, q storage.StatsQuery) (clicks, previews int64, err error)
	TopArticles(ctx context.Context, q storage.StatsQuery, kind domain.EventKind, limit int) ([]storage.ArticleCount, error)
	Countries(ctx context.Context, q storage.StatsQuery, limit int) ([]storage.CountryCount, error)
	SourceBreakdown(ctx context.Context, q storage.StatsQuery) ([]storage.SourceCount, error)
	ArticleCountries(ctx context.Context, q storage.StatsQuery, articleIDs []string, limit int) ([]storage.ArticleCountryCount, error)
}

// Request scopes one report.
type Request struct {
	Site     *domain.SiteConfig
	Interval Interval
	// Source filters totals, article and country breakdowns. The per-source
	// breakdown always covers all sources regardless.
	Source string
	// ArticleLimit caps both article lists; <= 0 means unbounded.
	ArticleLimit int
	// CountryLimit caps country breakdowns; 0 suppresses them entirely,
	// < 0 means unbounded.
	CountryLimit int
}

// Report is the aggregated response document.
type Report struct {
	Site          string         `json:"site"`
	Period        Interval       `json:"period"`
	TotalClicks   int64          `json:"total_clicks"`
	TotalPreviews int64          `json:"total_previews"`
	Articles      []ArticleStats `json:"articles"`
	Previews      []PreviewStats `json:"previews"`
	Countries     []CountryStats `json:"countries,omitempty"`
	Sources       []SourceStats  `json:"sources"`
}

// ArticleStats is one per-article click entry, with its reconstructed
// public URL and optional per-article country breakdown.
type ArticleStats struct {
	ArticleID string                `json:"article_id"`
	URL       string                `json:"url"`
	Clicks    int64                 `json:"clicks"`
	Countries []ArticleCountryStats `json:"countries,omitempty"`
}

// PreviewStats is one per-article preview entry.
type PreviewStats struct {
	ArticleID string `json:"article_id"`
	URL       string `json:"url"`
	Previews  int64  `json:"previews"`
}

// CountryStats is one site-level country entry.
type CountryStats struct {
	Country    string  `json:"country"`
	Clicks     int64   `json:"clicks"`
	Percentage float64 `json:"percentage"`
}

// ArticleCountryStats is one entry of a per-article country breakdown.
type ArticleCountryStats struct {
	Country string `json:"country"`
	Clicks  int64  `json:"clicks"`
}

// SourceStats is one per-source entry.
type SourceStats struct {
	Source   string `json:"source"`
	Clicks   int64  `json:"clicks"`
	Previews int64  `json:"previews"`
	Total    int64  `json:"total"`
}

// Service assembles reports from the aggregation repository.
type Service struct {
	repo Repository
}

// NewService creates a stats service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetStats runs the aggregation for the request window and assembles the
// report.
func (s *Service) GetStats(ctx context.Context, req Request) (*Report, error) {
	q := storage.StatsQuery{
		Site:   req.Site.ID,
		Start:  req.Interval.Start,
		End:    req.Interval.End,
		Source: req.Source,
	}

	clicks, previews, err := s.repo.Totals(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("totals: %w", err)
	}

	report := &Report{
		Site:          req.Site.ID,
		Period:        req.Interval,
		TotalClicks:   clicks,
		TotalPreviews: previews,
		Articles:      []ArticleStats{},
		Previews:      []PreviewStats{},
		Sources:       []SourceStats{},
	}

	if err := s.fillArticles(ctx, req, q, report); err != nil {
		return nil, err
	}
	if err := s.fillPreviews(ctx, req, q, report); err != nil {
		return nil, err
	}
	if err := s.fillCountries(ctx, req, q, report); err != nil {
		return nil, err
	}
	if err := s.fillSources(ctx, q, report); err != nil {
		return nil, err
	}

	return report, nil
}

func (s *Service) fillArticles(ctx context.Context, req Request, q storage.StatsQuery, report *Report) error {
	articles, err := s.repo.TopArticles(ctx, q, domain.KindClick, req.ArticleLimit)
	if err != nil {
		return fmt.Errorf("top articles: %w", err)
	}

	for _, a := range articles {
		report.Articles = append(report.Articles, ArticleStats{
			ArticleID: a.ArticleID,
			URL:       urlbuilder.ArticleURL(req.Site, a.ArticleID),
			Clicks:    a.Count,
		})
	}

	return s.attachArticleCountries(ctx, req, q, report)
}

// attachArticleCountries runs the single batched per-article country query
// over the already-selected article ids.
func (s *Service) attachArticleCountries(ctx context.Context, req Request, q storage.StatsQuery, report *Report) error {
	if len(report.Articles) == 0 || req.CountryLimit == CountriesDisabled {
		return nil
	}

	ids := make([]string, len(report.Articles))
	for i, a := range report.Articles {
		ids[i] = a.ArticleID
	}

	rows, err := s.repo.ArticleCountries(ctx, q, ids, req.CountryLimit)
	if err != nil {
		return fmt.Errorf("article countries: %w", err)
	}

	byArticle := make(map[string][]ArticleCountryStats, len(report.Articles))
	for _, row := range rows {
		byArticle[row.ArticleID] = append(byArticle[row.ArticleID], ArticleCountryStats{
			Country: row.Country,
			Clicks:  row.Clicks,
		})
	}

	for i := range report.Articles {
		report.Articles[i].Countries = byArticle[report.Articles[i].ArticleID]
	}
	return nil
}

func (s *Service) fillPreviews(ctx context.Context, req Request, q storage.StatsQuery, report *Report) error {
	previews, err := s.repo.TopArticles(ctx, q, domain.KindPreview, req.ArticleLimit)
	if err != nil {
		return fmt.Errorf("top previews: %w", err)
	}

	for _, p := range previews {
		report.Previews = append(report.Previews, PreviewStats{
			ArticleID: p.ArticleID,
			URL:       urlbuilder.ArticleURL(req.Site, p.ArticleID),
			Previews:  p.Count,
		})
	}
	return nil
}

func (s *Service) fillCountries(ctx context.Context, req Request, q storage.StatsQuery, report *Report) error {
	if req.CountryLimit == CountriesDisabled {
		return nil
	}

	countries, err := s.repo.Countries(ctx, q, req.CountryLimit)
	if err != nil {
		return fmt.Errorf("countries: %w", err)
	}

	report.Countries = make([]CountryStats, 0, len(countries))
	for _, c := range countries {
		report.Countries = append(report.Countries, CountryStats{
			Country:    c.Country,
			Clicks:     c.Clicks,
			Percentage: percentage(c.Clicks, report.TotalClicks),
		})
	}
	return nil
}

func (s *Service) fillSources(ctx context.Context, q storage.StatsQuery, report *Report) error {
	sources, err := s.repo.SourceBreakdown(ctx, q)
	if err != nil {
		return fmt.Errorf("source breakdown: %w", err)
	}

	for _, src := range sources {
		report.Sources = append(report.Sources, SourceStats{
			Source:   src.Source,
			Clicks:   src.Clicks,
			Previews: src.Previews,
			Total:    src.Clicks + src.Previews,
		})
	}
	return nil
}

// percentage computes clicks/total as a percentage rounded to 2 decimals.
// A zero total yields 0.00 rather than a division fault.
func percentage(clicks, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(clicks)/float64(total)*10000) / 100
}
