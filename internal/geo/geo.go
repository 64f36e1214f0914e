// Package geo resolves client IPs to ISO-2 country codes using a local
// MaxMind database. Lookups never touch the network and never fail: any
// address that cannot be resolved yields an empty code.
package geo

import (
	"context"
	"net"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/oschwald/geoip2-golang"

	"github.com/jonesrussell/linktrack/internal/logger"
)

// Locator performs offline IP-to-country lookups. The underlying database
// file is replaced out-of-band by an external refresh job; the reader is
// held behind an atomic pointer so lookups stay safe across a swap.
type Locator struct {
	reader atomic.Pointer[geoip2.Reader]
	path   string
	log    logger.Logger
}

// Open creates a Locator for the database at path. A missing or unreadable
// database disables lookups instead of failing startup: every lookup then
// returns an empty code until a reload succeeds.
func Open(path string, log logger.Logger) *Locator {
	l := &Locator{path: path, log: log}

	if path == "" {
		log.Warn("GeoIP database path not configured, country enrichment disabled")
		return l
	}

	if err := l.reload(); err != nil {
		log.Warn("GeoIP database unavailable, country enrichment disabled until reload",
			logger.String("path", path),
			logger.Error(err),
		)
	}
	return l
}

// Country returns the ISO-2 country code for ip, or "" when the address is
// private, loopback, unspecified, malformed, or simply not in the database.
func (l *Locator) Country(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast() {
		return ""
	}

	reader := l.reader.Load()
	if reader == nil {
		return ""
	}

	record, err := reader.Country(parsed)
	if err != nil {
		return ""
	}
	return record.Country.IsoCode
}

// Watch reloads the database whenever the external refresh job replaces the
// file. It blocks until ctx is cancelled; run it in its own goroutine.
func (l *Locator) Watch(ctx context.Context) error {
	if l.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: refresh jobs typically write a temp file and
	// rename it over the database, which drops a file-level watch.
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != l.path {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if err := l.reload(); err != nil {
				l.log.Error("GeoIP database reload failed",
					logger.String("path", l.path),
					logger.Error(err),
				)
				continue
			}
			l.log.Info("GeoIP database reloaded", logger.String("path", l.path))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.log.Warn("GeoIP watcher error", logger.Error(err))
		}
	}
}

// Close releases the current reader, if any.
func (l *Locator) Close() error {
	if old := l.reader.Swap(nil); old != nil {
		return old.Close()
	}
	return nil
}

// reload opens the database file and swaps it in, closing the old reader.
func (l *Locator) reload() error {
	reader, err := geoip2.Open(l.path)
	if err != nil {
		return err
	}
	if old := l.reader.Swap(reader); old != nil {
		_ = old.Close()
	}
	return nil
}
