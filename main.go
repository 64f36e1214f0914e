package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/jonesrussell/linktrack/internal/api"
	"github.com/jonesrussell/linktrack/internal/classifier"
	"github.com/jonesrussell/linktrack/internal/config"
	"github.com/jonesrussell/linktrack/internal/geo"
	"github.com/jonesrussell/linktrack/internal/handler"
	"github.com/jonesrussell/linktrack/internal/logger"
	"github.com/jonesrussell/linktrack/internal/metadata"
	"github.com/jonesrussell/linktrack/internal/registry"
	"github.com/jonesrussell/linktrack/internal/stats"
	"github.com/jonesrussell/linktrack/internal/storage"
)

// Database connection timeout.
const dbPingTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	db, err := connectDatabase(cfg, log)
	if err != nil {
		log.Error("Failed to connect to database", logger.Error(err))
		return 1
	}
	defer func() { _ = db.Close() }()

	contentDB := connectContentStore(cfg, log)
	if contentDB != nil {
		defer func() { _ = contentDB.Close() }()
	}

	return runServer(cfg, log, db, contentDB)
}

// loadConfig loads and validates configuration.
func loadConfig() (*config.Config, error) {
	configPath := config.GetConfigPath("config.yml")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", cfg.Service.Name)), nil
}

// connectDatabase opens and verifies the event-store connection.
func connectDatabase(cfg *config.Config, log logger.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	log.Info("Event store connected",
		logger.String("host", cfg.Database.Host),
		logger.Int("port", cfg.Database.Port),
		logger.String("database", cfg.Database.Database),
	)

	return db, nil
}

// connectContentStore opens the read-only content database when enabled.
// An unreachable store does not block startup: fetches degrade until it
// recovers.
func connectContentStore(cfg *config.Config, log logger.Logger) *sqlx.DB {
	if !cfg.ContentStore.Enabled {
		return nil
	}

	db, err := sqlx.Open("postgres", cfg.ContentStore.DSN())
	if err != nil {
		log.Warn("Failed to open content store", logger.Error(err))
		return nil
	}
	db.SetMaxOpenConns(cfg.ContentStore.MaxOpenConns)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		log.Warn("Content store unreachable, metadata fetches will degrade",
			logger.Error(pingErr),
		)
	} else {
		log.Info("Content store connected",
			logger.String("host", cfg.ContentStore.Host),
			logger.String("database", cfg.ContentStore.Database),
		)
	}

	return db
}

// runServer creates all dependencies and starts the HTTP server.
func runServer(cfg *config.Config, log logger.Logger, db *sql.DB, contentDB *sqlx.DB) int {
	reg := registry.New(cfg.Sites, cfg.Sources)
	log.Info("Configuration loaded",
		logger.Int("sites", reg.Sites()),
		logger.Int("sources", reg.Sources()),
	)

	cls := classifier.New(cfg.Classifier.ExtraSignatures...)

	locator := geo.Open(cfg.GeoIP.DatabasePath, log)
	defer func() { _ = locator.Close() }()

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	if cfg.GeoIP.Watch {
		go func() {
			if err := locator.Watch(watchCtx); err != nil {
				log.Warn("GeoIP watcher stopped", logger.Error(err))
			}
		}()
	}

	// Event buffer and batch store.
	buf := storage.NewBuffer(cfg.Service.BufferSize)
	eventStore := storage.NewEventStore(db, buf, log, cfg.Service.FlushInterval, cfg.Service.FlushThreshold)
	eventStore.Start()
	defer eventStore.Stop()

	// Metadata fetch router.
	var contentFetcher metadata.Fetcher
	if contentDB != nil {
		contentFetcher = metadata.NewContentStoreFetcher(contentDB, log)
	}
	scrapeFetcher := metadata.NewScrapeFetcher(
		cfg.Scrape.Timeout, cfg.Scrape.MaxRedirects, cfg.Scrape.UserAgent, log)
	router := metadata.NewRouter(contentFetcher, scrapeFetcher)

	// Stats over the same event store pool.
	statsRepo := storage.NewStatsRepository(sqlx.NewDb(db, "postgres"))
	statsService := stats.NewService(statsRepo)

	redirectHandler := handler.NewRedirectHandler(reg, cls, locator, router, buf, log)
	statsHandler := handler.NewStatsHandler(reg, statsService, log)

	checks := map[string]api.HealthChecker{
		"database": db.Ping,
	}
	if contentDB != nil {
		checks["content_store"] = contentDB.Ping
	}

	// done signals background goroutines (rate limiter) on shutdown.
	done := make(chan struct{})
	defer close(done)

	server := api.NewServer(cfg, redirectHandler, statsHandler, checks, log, done)

	log.Info("linktrack starting",
		logger.Int("port", cfg.Service.Port),
	)

	if err := server.Run(); err != nil {
		log.Error("Server error", logger.Error(err))
		return 1
	}

	log.Info("linktrack exited cleanly")
	return 0
}
