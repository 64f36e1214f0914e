package config

import (
	"fmt"
	"time"

	"github.com/jonesrussell/linktrack/internal/domain"
	"github.com/jonesrussell/linktrack/internal/logger"
)

// Default configuration values.
const (
	defaultServiceName  = "linktrack"
	defaultServicePort  = 8094
	defaultVersion      = "0.1.0"
	defaultBufferSize   = 1000
	defaultFlushThresh  = 500
	defaultLoggingLevel = "info"
	defaultLoggingFmt   = "json"
	defaultDBHost       = "localhost"
	defaultDBPort       = 5432
	defaultDBName       = "linktrack"
	defaultDBUser       = "postgres"
	defaultDBSSLMode    = "disable"

	defaultMaxClicksPerMinute = 60
	defaultWindowSeconds      = 60

	defaultFlushIntervalS  = 1
	defaultScrapeTimeoutS  = 5
	defaultScrapeRedirects = 5
)

// defaultScrapeUserAgent is sent on outbound metadata fetches.
const defaultScrapeUserAgent = "Mozilla/5.0 (compatible; linktrack/1.0)"

// Config holds the application configuration.
type Config struct {
	Service      ServiceConfig                  `yaml:"service"`
	Database     DatabaseConfig                 `yaml:"database"`
	ContentStore ContentStoreConfig             `yaml:"content_store"`
	Scrape       ScrapeConfig                   `yaml:"scrape"`
	GeoIP        GeoIPConfig                    `yaml:"geoip"`
	RateLimit    RateLimitConfig                `yaml:"rate_limit"`
	Classifier   ClassifierConfig               `yaml:"classifier"`
	Logging      logger.Config                  `yaml:"logging"`
	Sites        map[string]*domain.SiteConfig  `yaml:"sites"`
	Sources      map[string]domain.SourceConfig `yaml:"sources"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name           string        `yaml:"name"`
	Version        string        `yaml:"version"`
	Port           int           `env:"LINKTRACK_PORT"        yaml:"port"`
	Debug          bool          `env:"APP_DEBUG"             yaml:"debug"`
	StatsToken     string        `env:"LINKTRACK_STATS_TOKEN" yaml:"stats_token"`
	BufferSize     int           `yaml:"buffer_size"`
	FlushInterval  time.Duration `yaml:"flush_interval"`
	FlushThreshold int           `yaml:"flush_threshold"`
}

// DatabaseConfig holds the event-store PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string `env:"POSTGRES_LINKTRACK_HOST"     yaml:"host"`
	Port     int    `env:"POSTGRES_LINKTRACK_PORT"     yaml:"port"`
	User     string `env:"POSTGRES_LINKTRACK_USER"     yaml:"user"`
	Password string `env:"POSTGRES_LINKTRACK_PASSWORD" yaml:"password"`
	Database string `env:"POSTGRES_LINKTRACK_DB"       yaml:"database"`
	SSLMode  string `env:"POSTGRES_LINKTRACK_SSLMODE"  yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// ContentStoreConfig holds the read-only secondary content database
// configuration. Optional: sites using the html-scrape strategy do not
// need it.
type ContentStoreConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Host         string `env:"CONTENT_STORE_HOST"     yaml:"host"`
	Port         int    `env:"CONTENT_STORE_PORT"     yaml:"port"`
	User         string `env:"CONTENT_STORE_USER"     yaml:"user"`
	Password     string `env:"CONTENT_STORE_PASSWORD" yaml:"password"`
	Database     string `env:"CONTENT_STORE_DB"       yaml:"database"`
	SSLMode      string `env:"CONTENT_STORE_SSLMODE"  yaml:"sslmode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// DSN returns the PostgreSQL connection string for the content store.
func (c *ContentStoreConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// ScrapeConfig bounds outbound metadata fetches.
type ScrapeConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	MaxRedirects int           `yaml:"max_redirects"`
	UserAgent    string        `yaml:"user_agent"`
}

// GeoIPConfig points at the offline MaxMind database. The file itself is
// refreshed by an external scheduled job.
type GeoIPConfig struct {
	DatabasePath string `env:"GEOIP_DATABASE_PATH" yaml:"database_path"`
	Watch        bool   `yaml:"watch"`
}

// RateLimitConfig holds redirect-route rate limiting configuration.
type RateLimitConfig struct {
	MaxClicksPerMinute int `yaml:"max_clicks_per_minute"`
	WindowSeconds      int `yaml:"window_seconds"`
}

// ClassifierConfig extends the built-in crawler signature set.
type ClassifierConfig struct {
	ExtraSignatures []string `yaml:"extra_signatures"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return LoadWithDefaults[Config](path, setDefaults)
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setContentStoreDefaults(&cfg.ContentStore)
	setScrapeDefaults(&cfg.Scrape)
	setRateLimitDefaults(&cfg.RateLimit)
	setLoggingDefaults(&cfg.Logging)
	propagateIDs(cfg)
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
	if svc.BufferSize == 0 {
		svc.BufferSize = defaultBufferSize
	}
	if svc.FlushInterval == 0 {
		svc.FlushInterval = defaultFlushIntervalS * time.Second
	}
	if svc.FlushThreshold == 0 {
		svc.FlushThreshold = defaultFlushThresh
	}
}

func setDatabaseDefaults(db *DatabaseConfig) {
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Port == 0 {
		db.Port = defaultDBPort
	}
	if db.User == "" {
		db.User = defaultDBUser
	}
	if db.Database == "" {
		db.Database = defaultDBName
	}
	if db.SSLMode == "" {
		db.SSLMode = defaultDBSSLMode
	}
}

func setContentStoreDefaults(cs *ContentStoreConfig) {
	if cs.Port == 0 {
		cs.Port = defaultDBPort
	}
	if cs.SSLMode == "" {
		cs.SSLMode = defaultDBSSLMode
	}
	if cs.MaxOpenConns == 0 {
		cs.MaxOpenConns = 5
	}
}

func setScrapeDefaults(s *ScrapeConfig) {
	if s.Timeout == 0 {
		s.Timeout = defaultScrapeTimeoutS * time.Second
	}
	if s.MaxRedirects == 0 {
		s.MaxRedirects = defaultScrapeRedirects
	}
	if s.UserAgent == "" {
		s.UserAgent = defaultScrapeUserAgent
	}
}

func setRateLimitDefaults(rl *RateLimitConfig) {
	if rl.MaxClicksPerMinute == 0 {
		rl.MaxClicksPerMinute = defaultMaxClicksPerMinute
	}
	if rl.WindowSeconds == 0 {
		rl.WindowSeconds = defaultWindowSeconds
	}
}

func setLoggingDefaults(log *logger.Config) {
	if log.Level == "" {
		log.Level = defaultLoggingLevel
	}
	if log.Format == "" {
		log.Format = defaultLoggingFmt
	}
}

// propagateIDs copies map keys into the ID fields of site/source configs.
func propagateIDs(cfg *Config) {
	for id, site := range cfg.Sites {
		if site != nil {
			site.ID = id
		}
	}
	for id, src := range cfg.Sources {
		src.ID = id
		cfg.Sources[id] = src
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := ValidateRequired("service.stats_token", c.Service.StatsToken); err != nil {
		return err
	}
	if len(c.Sites) == 0 {
		return &ValidationError{Field: "sites", Message: "at least one site is required"}
	}
	if len(c.Sources) == 0 {
		return &ValidationError{Field: "sources", Message: "at least one source is required"}
	}

	needsStore := false
	for _, site := range c.Sites {
		if err := site.Validate(); err != nil {
			return err
		}
		if site.Metadata.Strategy == domain.StrategyContentStore {
			needsStore = true
		}
	}

	if needsStore && !c.ContentStore.Enabled {
		return &ValidationError{
			Field:   "content_store.enabled",
			Message: "required because at least one site uses the content-store strategy",
		}
	}
	if c.ContentStore.Enabled {
		if err := ValidateRequired("content_store.host", c.ContentStore.Host); err != nil {
			return err
		}
		if err := ValidateRequired("content_store.database", c.ContentStore.Database); err != nil {
			return err
		}
	}

	return nil
}
