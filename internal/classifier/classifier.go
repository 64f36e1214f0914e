// Package classifier decides whether a request comes from a human client or
// an automated crawler, based on the declared user agent.
package classifier

import "strings"

// Verdict is the classification outcome.
type Verdict int

const (
	// Human means the request should receive a tracked redirect.
	Human Verdict = iota
	// Bot means the request should receive a social preview document.
	Bot
)

// String returns the verdict name.
func (v Verdict) String() string {
	if v == Bot {
		return "bot"
	}
	return "human"
}

// defaultSignatures are known crawler User-Agent substrings (lowercase).
// Social-network preview bots first, generic crawler tokens last.
var defaultSignatures = []string{
	"facebookexternalhit", "facebot", "twitterbot", "linkedinbot",
	"slackbot", "whatsapp", "telegrambot", "discordbot",
	"pinterest", "vkshare", "skypeuripreview", "redditbot",
	"embedly", "quora link preview", "applebot",
	"googlebot", "bingbot", "yandexbot", "duckduckbot", "baiduspider",
	"bot", "crawler", "spider", "scraper",
}

// Classifier matches user agents against an immutable signature set.
type Classifier struct {
	signatures []string
}

// New creates a classifier with the built-in signature set plus any extra
// configured signatures.
func New(extra ...string) *Classifier {
	sigs := make([]string, 0, len(defaultSignatures)+len(extra))
	sigs = append(sigs, defaultSignatures...)
	for _, s := range extra {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			sigs = append(sigs, s)
		}
	}
	return &Classifier{signatures: sigs}
}

// Classify returns Bot when the user agent matches any known crawler
// signature (case-insensitive substring). An empty or absent user agent
// classifies as Human: the pipeline fails open toward redirecting, not
// previewing.
func (c *Classifier) Classify(userAgent string) Verdict {
	if userAgent == "" {
		return Human
	}
	ua := strings.ToLower(userAgent)
	for _, sig := range c.signatures {
		if strings.Contains(ua, sig) {
			return Bot
		}
	}
	return Human
}
