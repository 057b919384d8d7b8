package cmd

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/indsearch/internal/catalog"
	"github.com/Aman-CERP/indsearch/internal/config"
	"github.com/Aman-CERP/indsearch/internal/logging"
	"github.com/Aman-CERP/indsearch/internal/render"
	"github.com/Aman-CERP/indsearch/internal/search"
	"github.com/Aman-CERP/indsearch/internal/store"
	"github.com/Aman-CERP/indsearch/internal/telemetry"
)

// app wires the search core from the effective configuration.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	source   string
	service  *search.Service
	renderer *render.Renderer
	loadErr  error
}

// loadConfig loads configuration for opts.dir and applies the --catalog flag.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.dir)
	if err != nil {
		return nil, err
	}
	if opts.catalog != "" {
		cfg.Catalog.Source = opts.catalog
	}
	return cfg, nil
}

// resolveSource makes a relative local source relative to dir.
func resolveSource(source, dir string) string {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return source
	}
	if filepath.IsAbs(source) || dir == "" || dir == "." {
		return source
	}
	return filepath.Join(dir, source)
}

// newLogger returns the command logger. With --debug the default logger is
// the debug file logger; otherwise logs go to w at level, or nowhere if w is nil.
func newLogger(opts *globalOptions, w io.Writer, level string) *slog.Logger {
	if opts.debug {
		return slog.Default()
	}
	if w == nil {
		return logging.Discard()
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: logging.LevelFromString(level),
	}))
}

// indexConfig maps the search section onto the index configuration.
func indexConfig(cfg *config.Config) store.IndexConfig {
	ic := store.DefaultIndexConfig()
	if len(cfg.Search.Boosts) > 0 {
		ic.Boosts = cfg.Search.Boosts
	}
	ic.Fuzzy = cfg.Search.Fuzzy
	ic.Prefix = cfg.Search.PrefixEnabled()
	return ic
}

// newApp builds the renderer and the search service and performs the first
// catalog load. A load failure is kept in loadErr; the service then reports
// itself unavailable.
func newApp(ctx context.Context, opts *globalOptions, cfg *config.Config, logger *slog.Logger) (*app, error) {
	renderer, err := render.New(render.Options{
		DocBase:     cfg.Render.DocBase,
		AllowMarkup: cfg.Render.AllowMarkup,
	})
	if err != nil {
		return nil, err
	}

	source := resolveSource(cfg.Catalog.Source, opts.dir)
	loader := catalog.NewLoader(source,
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout()}),
		catalog.WithLogger(logger),
	)
	service := search.NewService(loader,
		store.NewFactory(indexConfig(cfg), store.WithLogger(logger)),
		search.WithServiceLogger(logger),
		search.WithServiceMetrics(telemetry.NewQueryMetrics()),
	)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		source:   source,
		service:  service,
		renderer: renderer,
	}
	a.loadErr = service.Reload(ctx)
	return a, nil
}

// Close releases the search service.
func (a *app) Close() error {
	return a.service.Close()
}
