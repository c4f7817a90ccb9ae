package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/matsen/coviz/internal/asta"
	"github.com/matsen/coviz/internal/config"
	"github.com/matsen/coviz/internal/host"
	"github.com/matsen/coviz/internal/layoutcache"
	"github.com/matsen/coviz/internal/metrics"
	"github.com/matsen/coviz/internal/storage"
)

// errMissingAPIKey is returned when an online lookup has no ASTA key.
var errMissingAPIKey = errors.New("ASTA_API_KEY is not set")

// app holds the components a command run needs. Fields are nil for
// components the command did not ask for.
type app struct {
	settings *config.Settings
	logger   *log.Logger
	metrics  *metrics.Metrics
	db       *storage.DB
	cache    *layoutcache.Cache
	host     *host.Host
}

// appParts selects which components newApp builds.
type appParts struct {
	db    bool
	host  bool
	cache bool // ignored with --no-cache
}

// newApp loads configuration and builds the requested components.
func newApp(ctx context.Context, parts appParts) (*app, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}
	a := &app{
		settings: settings,
		logger:   loggerFromContext(ctx),
		metrics:  metrics.New(),
	}

	useCache := parts.cache && !noCache
	if parts.db || useCache {
		if err := os.MkdirAll(settings.CacheDir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
		db, err := storage.OpenDB(settings.DBPath())
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		a.db = db
	}

	if parts.host {
		a.host = host.New(
			host.WithThreshold(settings.WorkerThreshold),
			host.WithTimeout(settings.LayoutTimeout),
			host.WithLogger(a.logger),
			host.WithMetrics(a.metrics),
		)
	}
	if useCache {
		cache, err := layoutcache.New(settings.CacheSize,
			layoutcache.WithStore(a.db),
			layoutcache.WithMetrics(a.metrics),
			layoutcache.WithLogger(a.logger),
		)
		if err != nil {
			a.close()
			return nil, err
		}
		a.cache = cache
	}
	return a, nil
}

// astaClient returns a client for online lookups.
func (a *app) astaClient() (*asta.Client, error) {
	if !a.settings.HasAPIKey() {
		return nil, fmt.Errorf("%w\n\n%s", errMissingAPIKey, config.HelpfulConfigMessage())
	}
	return asta.NewClient(asta.WithAPIKey(a.settings.ASTAAPIKey)), nil
}

// close releases resources and writes the metrics file if requested.
func (a *app) close() {
	if a.host != nil {
		a.host.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	if metricsFile != "" {
		if err := a.metrics.WriteTextfile(metricsFile); err != nil {
			a.logger.Warn("writing metrics", "path", metricsFile, "err", err)
		}
	}
}
