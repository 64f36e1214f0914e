package domain

import "errors"

// Error taxonomy shared across the pipeline. Handlers map these to HTTP
// statuses; anything unrecognized becomes a generic internal error.
var (
	// ErrSiteNotFound signals an unresolvable site id.
	ErrSiteNotFound = errors.New("unknown site")
	// ErrSourceNotFound signals an unresolvable source id.
	ErrSourceNotFound = errors.New("unknown source")
	// ErrMetadataNotFound signals that no metadata could be resolved for an article.
	ErrMetadataNotFound = errors.New("metadata not found")
	// ErrUpstreamUnavailable signals a content-store or outbound HTTP failure.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrUnsupportedStrategy signals a metadata strategy the router cannot dispatch.
	ErrUnsupportedStrategy = errors.New("unsupported metadata strategy")
)
