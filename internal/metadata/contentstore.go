package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jonesrussell/linktrack/internal/domain"
	"github.com/jonesrussell/linktrack/internal/logger"
)

// SEO plugin override keys, in fixed priority order. The first present
// non-empty value replaces the stored title/description.
var (
	seoTitleKeys       = []string{"_yoast_wpseo_title", "rank_math_title", "_aioseop_title"}
	seoDescriptionKeys = []string{"_yoast_wpseo_metadesc", "rank_math_description", "_aioseop_description"}
)

// thumbnailMetaKey references the featured image attachment.
const thumbnailMetaKey = "_thumbnail_id"

// schemaPattern restricts schema names to safe identifiers before they are
// interpolated into queries.
var schemaPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// postRow is the published item row read from the content store.
type postRow struct {
	ID      int64          `db:"id"`
	Title   string         `db:"post_title"`
	Excerpt sql.NullString `db:"post_excerpt"`
	Content string         `db:"post_content"`
}

// metaRow is one key/value pair from the post meta table.
type metaRow struct {
	Key   string `db:"meta_key"`
	Value string `db:"meta_value"`
}

// ContentStoreFetcher reads article metadata from the read-only secondary
// content database. Each site maps to its own schema within that database.
type ContentStoreFetcher struct {
	db  *sqlx.DB
	log logger.Logger
}

// NewContentStoreFetcher creates a fetcher over the given connection pool.
func NewContentStoreFetcher(db *sqlx.DB, log logger.Logger) *ContentStoreFetcher {
	return &ContentStoreFetcher{db: db, log: log}
}

// Fetch resolves the published item matching the article slug in the site's
// schema. The connection is checked out and returned on every path,
// including failure; the pool bounds how long a request may wait.
func (f *ContentStoreFetcher) Fetch(ctx context.Context, site *domain.SiteConfig, articleID string) (*domain.Metadata, error) {
	schema := site.Metadata.Schema
	if !schemaPattern.MatchString(schema) {
		return nil, fmt.Errorf("content store schema %q: %w", schema, domain.ErrUpstreamUnavailable)
	}

	conn, err := f.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire content store connection: %w", domain.ErrUpstreamUnavailable)
	}
	defer func() { _ = conn.Close() }()

	post, err := f.fetchPost(ctx, conn, schema, articleID)
	if err != nil {
		return nil, err
	}

	meta, err := f.fetchMeta(ctx, conn, schema, post.ID)
	if err != nil {
		return nil, err
	}

	result := &domain.Metadata{Title: post.Title}

	if v := firstPresent(meta, seoTitleKeys); v != "" {
		result.Title = v
	}

	switch seoDesc := firstPresent(meta, seoDescriptionKeys); {
	case seoDesc != "":
		result.Description = seoDesc
	case post.Excerpt.Valid && post.Excerpt.String != "":
		result.Description = post.Excerpt.String
	default:
		result.Description = deriveDescription(post.Content)
	}

	if thumbID := meta[thumbnailMetaKey]; thumbID != "" {
		result.ImageURL = f.fetchImageURL(ctx, conn, schema, thumbID)
	}

	result.Title = normalizeQuotes(result.Title)
	result.Description = normalizeQuotes(result.Description)
	return result, nil
}

// fetchPost reads the published post matching the slug.
func (f *ContentStoreFetcher) fetchPost(ctx context.Context, conn *sqlx.Conn, schema, slug string) (*postRow, error) {
	query := fmt.Sprintf(
		`SELECT id, post_title, post_excerpt, post_content
		 FROM %s.wp_posts
		 WHERE post_name = $1 AND post_status = 'publish' AND post_type = 'post'
		 LIMIT 1`, schema)

	var post postRow
	if err := conn.GetContext(ctx, &post, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMetadataNotFound
		}
		return nil, fmt.Errorf("query content store: %v: %w", err, domain.ErrUpstreamUnavailable)
	}
	return &post, nil
}

// fetchMeta reads the SEO override and thumbnail keys for a post.
func (f *ContentStoreFetcher) fetchMeta(ctx context.Context, conn *sqlx.Conn, schema string, postID int64) (map[string]string, error) {
	keys := make([]string, 0, len(seoTitleKeys)+len(seoDescriptionKeys)+1)
	keys = append(keys, seoTitleKeys...)
	keys = append(keys, seoDescriptionKeys...)
	keys = append(keys, thumbnailMetaKey)

	query := fmt.Sprintf(
		`SELECT meta_key, meta_value
		 FROM %s.wp_postmeta
		 WHERE post_id = $1 AND meta_key = ANY($2)`, schema)

	var rows []metaRow
	if err := conn.SelectContext(ctx, &rows, query, postID, pq.Array(keys)); err != nil {
		return nil, fmt.Errorf("query post meta: %v: %w", err, domain.ErrUpstreamUnavailable)
	}

	meta := make(map[string]string, len(rows))
	for _, row := range rows {
		meta[row.Key] = row.Value
	}
	return meta, nil
}

// fetchImageURL resolves the featured image attachment URL. A broken
// attachment reference degrades to no image rather than an error.
func (f *ContentStoreFetcher) fetchImageURL(ctx context.Context, conn *sqlx.Conn, schema, thumbID string) string {
	query := fmt.Sprintf(`SELECT guid FROM %s.wp_posts WHERE id = $1`, schema)

	var guid string
	if err := conn.GetContext(ctx, &guid, query, thumbID); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			f.log.Debug("Featured image lookup failed", logger.Error(err))
		}
		return ""
	}
	return guid
}

// firstPresent returns the first non-empty value among keys, in order.
func firstPresent(meta map[string]string, keys []string) string {
	for _, key := range keys {
		if v := meta[key]; v != "" {
			return v
		}
	}
	return ""
}
