package metadata

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// descriptionBudget is the character budget for derived descriptions.
const descriptionBudget = 160

// stripPolicy removes all markup; shared and safe for concurrent use.
var stripPolicy = bluemonday.StrictPolicy()

// quoteReplacer maps typographic quote characters to a single ASCII quote
// so values embed safely in HTML attributes.
var quoteReplacer = strings.NewReplacer(
	"‘", "'", // left single
	"’", "'", // right single
	"“", "'", // left double
	"”", "'", // right double
	"‚", "'", // low single
	"„", "'", // low double
	`"`, "'",
)

// stripMarkup removes tags and entities from raw HTML content and collapses
// runs of whitespace into single spaces.
func stripMarkup(raw string) string {
	text := html.UnescapeString(stripPolicy.Sanitize(raw))
	return strings.Join(strings.Fields(text), " ")
}

// truncateAtWord cuts s to at most limit characters, backing up to the
// nearest preceding word boundary so no word is split mid-way. The limit
// counts runes, not bytes: scripts without spaces get a clean cut at the
// rune boundary instead of broken UTF-8.
func truncateAtWord(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	cut := string([]rune(s)[:limit])
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ")
}

// normalizeQuotes replaces typographic quotes with ASCII quotes.
func normalizeQuotes(s string) string {
	return quoteReplacer.Replace(s)
}

// deriveDescription builds a preview description from raw article content.
func deriveDescription(rawContent string) string {
	return truncateAtWord(stripMarkup(rawContent), descriptionBudget)
}
