package domain

import "time"

// EventKind distinguishes tracked redirects from social preview renders.
type EventKind string

const (
	// KindClick marks an event produced by a human redirect.
	KindClick EventKind = "click"
	// KindPreview marks an event produced by a crawler preview.
	KindPreview EventKind = "preview"
)

// ClickEvent is one logged occurrence of a redirect or preview request.
// Events are append-only; nothing in this service mutates or deletes them.
type ClickEvent struct {
	IP        string    `json:"ip"`
	Country   string    `json:"country,omitempty"` // ISO-2 code, empty when unresolved
	UserAgent string    `json:"user_agent"`
	Source    string    `json:"source"`
	Site      string    `json:"site"`
	ArticleID string    `json:"article_id"`
	Kind      EventKind `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}
