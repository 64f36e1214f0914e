package domain_test

import (
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/jonesrussell/linktrack/internal/domain"
)

func TestSiteConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		site    domain.SiteConfig
		wantErr bool
	}{
		{
			name: "content store with schema",
			site: domain.SiteConfig{
				Domain:   "example.com",
				Metadata: domain.MetadataConfig{Strategy: domain.StrategyContentStore, Schema: "s"},
			},
		},
		{
			name: "html scrape",
			site: domain.SiteConfig{
				Domain:   "example.com",
				Metadata: domain.MetadataConfig{Strategy: domain.StrategyHTMLScrape},
			},
		},
		{
			name:    "missing domain",
			site:    domain.SiteConfig{Metadata: domain.MetadataConfig{Strategy: domain.StrategyHTMLScrape}},
			wantErr: true,
		},
		{
			name: "content store without schema",
			site: domain.SiteConfig{
				Domain:   "example.com",
				Metadata: domain.MetadataConfig{Strategy: domain.StrategyContentStore},
			},
			wantErr: true,
		},
		{
			name: "unknown strategy",
			site: domain.SiteConfig{
				Domain:   "example.com",
				Metadata: domain.MetadataConfig{Strategy: "rss"},
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.site.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSiteConfig_Pattern(t *testing.T) {
	site := domain.SiteConfig{}
	if site.Pattern() != domain.DefaultURLPattern {
		t.Fatalf("Pattern = %q, want default", site.Pattern())
	}

	site.URLPattern = "/articles/{articleId}"
	if site.Pattern() != "/articles/{articleId}" {
		t.Fatalf("Pattern = %q", site.Pattern())
	}
}

func TestMetadataConfig_UnmarshalMapping(t *testing.T) {
	var m domain.MetadataConfig
	err := yaml.Unmarshal([]byte("strategy: html-scrape\n"), &m)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Strategy != domain.StrategyHTMLScrape || m.Schema != "" {
		t.Fatalf("got %+v", m)
	}
}

func TestMetadataConfig_UnmarshalLegacyScalar(t *testing.T) {
	var site domain.SiteConfig
	err := yaml.Unmarshal([]byte("domain: example.com\nmetadata: legacy_schema\n"), &site)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if site.Metadata.Strategy != domain.StrategyContentStore {
		t.Fatalf("Strategy = %q, want content-store", site.Metadata.Strategy)
	}
	if site.Metadata.Schema != "legacy_schema" {
		t.Fatalf("Schema = %q", site.Metadata.Schema)
	}
}
