// Package registry holds the site and source configuration maps.
//
// Both maps are built once at startup and never mutated afterwards, so
// lookups are safe for unbounded concurrent use.
package registry

import (
	"github.com/jonesrussell/linktrack/internal/domain"
)

// Registry resolves site and source ids against the startup configuration.
type Registry struct {
	sites   map[string]*domain.SiteConfig
	sources map[string]domain.SourceConfig
}

// New builds a registry from the loaded configuration maps. The maps are
// copied so later mutation of the inputs cannot leak into the registry.
func New(sites map[string]*domain.SiteConfig, sources map[string]domain.SourceConfig) *Registry {
	r := &Registry{
		sites:   make(map[string]*domain.SiteConfig, len(sites)),
		sources: make(map[string]domain.SourceConfig, len(sources)),
	}
	for id, site := range sites {
		r.sites[id] = site
	}
	for id, src := range sources {
		r.sources[id] = src
	}
	return r
}

// Site returns the configuration for the given site id.
func (r *Registry) Site(id string) (*domain.SiteConfig, error) {
	site, ok := r.sites[id]
	if !ok {
		return nil, domain.ErrSiteNotFound
	}
	return site, nil
}

// Source returns the configuration for the given source id.
func (r *Registry) Source(id string) (domain.SourceConfig, error) {
	src, ok := r.sources[id]
	if !ok {
		return domain.SourceConfig{}, domain.ErrSourceNotFound
	}
	return src, nil
}

// Sites returns the number of configured sites.
func (r *Registry) Sites() int {
	return len(r.sites)
}

// Sources returns the number of configured sources.
func (r *Registry) Sources() int {
	return len(r.sources)
}
