package domain

// Metadata holds the preview fields rendered into crawler-facing HTML.
// It is recomputed for every preview request and never persisted.
type Metadata struct {
	Title       string
	Description string
	ImageURL    string
}
