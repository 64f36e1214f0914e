package domain

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MetadataStrategy selects how article metadata is fetched for a site.
type MetadataStrategy string

const (
	// StrategyContentStore reads metadata from the secondary content database.
	StrategyContentStore MetadataStrategy = "content-store"
	// StrategyHTMLScrape fetches the public article page and parses its markup.
	StrategyHTMLScrape MetadataStrategy = "html-scrape"
)

// DefaultURLPattern is used when a site does not configure url_pattern.
const DefaultURLPattern = "/{articleId}/"

// MetadataConfig describes the metadata fetch strategy for a site.
//
// Two YAML shapes are accepted: the full mapping form
//
//	metadata:
//	  strategy: content-store
//	  schema: blog_main
//
// and the legacy bare-string form, where the value is the content-store
// schema and the strategy is implied:
//
//	metadata: blog_main
type MetadataConfig struct {
	Strategy MetadataStrategy `yaml:"strategy"`
	// Schema is the content-store schema name. Required for content-store.
	Schema string `yaml:"schema"`
}

// UnmarshalYAML accepts both the mapping form and the legacy scalar form.
func (m *MetadataConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var schema string
		if err := value.Decode(&schema); err != nil {
			return err
		}
		m.Strategy = StrategyContentStore
		m.Schema = schema
		return nil
	}

	type plain MetadataConfig
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*m = MetadataConfig(p)
	return nil
}

// SiteConfig describes one destination site.
type SiteConfig struct {
	ID          string         `yaml:"-"`
	Domain      string         `yaml:"domain"`
	URLPattern  string         `yaml:"url_pattern"`
	Description string         `yaml:"description"`
	Metadata    MetadataConfig `yaml:"metadata"`
}

// Validate checks that the site configuration is internally consistent.
func (s *SiteConfig) Validate() error {
	if s.Domain == "" {
		return fmt.Errorf("site %q: domain is required", s.ID)
	}
	switch s.Metadata.Strategy {
	case StrategyContentStore:
		if s.Metadata.Schema == "" {
			return fmt.Errorf("site %q: content-store strategy requires a schema", s.ID)
		}
	case StrategyHTMLScrape:
	default:
		return fmt.Errorf("site %q: unsupported metadata strategy %q", s.ID, s.Metadata.Strategy)
	}
	return nil
}

// Pattern returns the configured url_pattern or the default.
func (s *SiteConfig) Pattern() string {
	if s.URLPattern == "" {
		return DefaultURLPattern
	}
	return s.URLPattern
}

// SourceConfig maps a traffic source id to its UTM attribution set.
type SourceConfig struct {
	ID        string `yaml:"-"`
	UTMSource string `yaml:"utm_source"`
	UTMMedium string `yaml:"utm_medium"`
}
