package handler

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/linktrack/internal/domain"
	"github.com/jonesrussell/linktrack/internal/urlbuilder"
)

// previewTemplate renders the crawler-facing preview document. Only the
// head matters to crawlers; the body carries a plain link for anything that
// renders it anyway.
var previewTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta property="og:type" content="article">
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
<meta property="og:url" content="{{.URL}}">
{{- if .ImageURL}}
<meta property="og:image" content="{{.ImageURL}}">
<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:image" content="{{.ImageURL}}">
{{- else}}
<meta name="twitter:card" content="summary">
{{- end}}
<meta name="twitter:title" content="{{.Title}}">
<meta name="twitter:description" content="{{.Description}}">
</head>
<body>
<p><a href="{{.URL}}">{{.Title}}</a></p>
</body>
</html>
`))

// previewData is the template input for one preview document.
type previewData struct {
	Title       string
	Description string
	ImageURL    string
	URL         string
}

// renderPreview writes the 200 preview document for a resolved article.
func renderPreview(c *gin.Context, site *domain.SiteConfig, articleID string, meta *domain.Metadata) {
	data := previewData{
		Title:       meta.Title,
		Description: meta.Description,
		ImageURL:    meta.ImageURL,
		URL:         urlbuilder.ArticleURL(site, articleID),
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := previewTemplate.Execute(c.Writer, data); err != nil {
		// Headers are already written; nothing left to do but record it.
		_ = c.Error(err)
	}
}
