package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jonesrussell/linktrack/internal/domain"
)

// StatsQuery scopes an aggregation over the event log. Source is optional;
// empty means all sources.
type StatsQuery struct {
	Site   string
	Start  time.Time
	End    time.Time
	Source string
}

// ArticleCount is a per-article event count.
type ArticleCount struct {
	ArticleID string `db:"article_id"`
	Count     int64  `db:"count"`
}

// CountryCount is a per-country click count.
type CountryCount struct {
	Country string `db:"country"`
	Clicks  int64  `db:"clicks"`
}

// SourceCount is a per-source click/preview breakdown.
type SourceCount struct {
	Source   string `db:"source"`
	Clicks   int64  `db:"clicks"`
	Previews int64  `db:"previews"`
}

// ArticleCountryCount is one row of the batched per-article country
// breakdown.
type ArticleCountryCount struct {
	ArticleID string `db:"article_id"`
	Country   string `db:"country"`
	Clicks    int64  `db:"clicks"`
}

// StatsRepository answers aggregation queries over the click_events table.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a repository over the event-store pool.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// whereClause builds the common site/window/source filter. Placeholders
// start at $1; callers number any extra placeholders from len(args)+1.
func whereClause(q StatsQuery) (clause string, args []any) {
	clause = "site = $1 AND created_at >= $2 AND created_at <= $3"
	args = []any{q.Site, q.Start, q.End}
	if q.Source != "" {
		clause += " AND source = $4"
		args = append(args, q.Source)
	}
	return clause, args
}

// Totals returns the click and preview counts for the window.
func (r *StatsRepository) Totals(ctx context.Context, q StatsQuery) (clicks, previews int64, err error) {
	where, args := whereClause(q)
	query := fmt.Sprintf(
		`SELECT kind, COUNT(*) AS count FROM click_events WHERE %s GROUP BY kind`, where)

	var rows []struct {
		Kind  string `db:"kind"`
		Count int64  `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return 0, 0, fmt.Errorf("query totals: %w", err)
	}

	for _, row := range rows {
		switch domain.EventKind(row.Kind) {
		case domain.KindClick:
			clicks = row.Count
		case domain.KindPreview:
			previews = row.Count
		}
	}
	return clicks, previews, nil
}

// TopArticles returns per-article counts of the given kind, descending.
// limit <= 0 means unbounded.
func (r *StatsRepository) TopArticles(ctx context.Context, q StatsQuery, kind domain.EventKind, limit int) ([]ArticleCount, error) {
	where, args := whereClause(q)
	args = append(args, string(kind))

	query := fmt.Sprintf(
		`SELECT article_id, COUNT(*) AS count
		 FROM click_events
		 WHERE %s AND kind = $%d
		 GROUP BY article_id
		 ORDER BY count DESC, article_id ASC`, where, len(args))
	query += limitClause(limit)

	var rows []ArticleCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query top articles: %w", err)
	}
	return rows, nil
}

// Countries returns per-country click counts, descending. limit <= 0 means
// unbounded. Events without a resolved country are excluded.
func (r *StatsRepository) Countries(ctx context.Context, q StatsQuery, limit int) ([]CountryCount, error) {
	where, args := whereClause(q)
	args = append(args, string(domain.KindClick))

	query := fmt.Sprintf(
		`SELECT country, COUNT(*) AS clicks
		 FROM click_events
		 WHERE %s AND kind = $%d AND country IS NOT NULL
		 GROUP BY country
		 ORDER BY clicks DESC, country ASC`, where, len(args))
	query += limitClause(limit)

	var rows []CountryCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query countries: %w", err)
	}
	return rows, nil
}

// SourceBreakdown returns click/preview counts per source over the window.
// The per-request source filter is deliberately ignored: the breakdown is
// always computed over all sources.
func (r *StatsRepository) SourceBreakdown(ctx context.Context, q StatsQuery) ([]SourceCount, error) {
	unfiltered := q
	unfiltered.Source = ""
	where, args := whereClause(unfiltered)

	query := fmt.Sprintf(
		`SELECT source,
		        COUNT(*) FILTER (WHERE kind = 'click')   AS clicks,
		        COUNT(*) FILTER (WHERE kind = 'preview') AS previews
		 FROM click_events
		 WHERE %s
		 GROUP BY source
		 ORDER BY clicks DESC, source ASC`, where)

	var rows []SourceCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query source breakdown: %w", err)
	}
	return rows, nil
}

// ArticleCountries computes the top-limit countries for each of the given
// article ids in one batched query. This is the only per-article country
// path: never one query per article.
func (r *StatsRepository) ArticleCountries(ctx context.Context, q StatsQuery, articleIDs []string, limit int) ([]ArticleCountryCount, error) {
	if len(articleIDs) == 0 || limit == 0 {
		return nil, nil
	}

	where, args := whereClause(q)
	kindPos := len(args) + 1
	idsPos := len(args) + 2
	args = append(args, string(domain.KindClick), pq.Array(articleIDs))

	rankFilter := ""
	if limit > 0 {
		args = append(args, limit)
		rankFilter = fmt.Sprintf(" WHERE rank <= $%d", len(args))
	}

	query := fmt.Sprintf(
		`SELECT article_id, country, clicks FROM (
		    SELECT article_id, country, COUNT(*) AS clicks,
		           ROW_NUMBER() OVER (
		               PARTITION BY article_id
		               ORDER BY COUNT(*) DESC, country ASC
		           ) AS rank
		    FROM click_events
		    WHERE %s AND kind = $%d AND country IS NOT NULL
		          AND article_id = ANY($%d)
		    GROUP BY article_id, country
		 ) ranked%s
		 ORDER BY article_id, clicks DESC, country ASC`,
		where, kindPos, idsPos, rankFilter)

	var rows []ArticleCountryCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query article countries: %w", err)
	}
	return rows, nil
}

// limitClause renders a LIMIT clause, or nothing for unbounded queries.
func limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return " LIMIT " + strconv.Itoa(limit)
}
