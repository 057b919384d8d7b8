package cmd

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/indsearch/internal/catalog"
	inderrors "github.com/Aman-CERP/indsearch/internal/errors"
	"github.com/Aman-CERP/indsearch/internal/server"
	"github.com/Aman-CERP/indsearch/internal/watcher"
)

type serveOptions struct {
	addr  string
	watch bool
	title string
}

func newServeCmd(global *globalOptions) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live search page over HTTP",
		Long: `Serve the indicator search page.

The page re-renders the result list as you type: every keystroke is sent over
a websocket and answered with the full replacement markup. Browsers without
websocket support fall back to GET /search?q=.

Endpoints:
  GET /                 full page with the whole catalog
  GET /search?q=...     result markup for a query
  GET /ws               websocket, one query per message
  GET /indicators.json  the loaded catalog
  GET /healthz          catalog and query status

If the catalog cannot be loaded the page shows "Search unavailable" and the
query endpoints answer 503. With --watch a local catalog is reloaded when the
file changes.`,
		Example: `  indsearch serve
  indsearch serve --addr :8080 --watch
  indsearch serve --catalog https://example.org/indicators.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Reload the catalog when the local file changes")
	cmd.Flags().StringVar(&opts.title, "title", "", "Page title")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, global *globalOptions, opts serveOptions) error {
	cfg, err := loadConfig(global)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	logger := newLogger(global, cmd.ErrOrStderr(), cfg.Server.LogLevel)

	a, err := newApp(ctx, global, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if a.loadErr != nil {
		logger.Error("catalog_unavailable",
			slog.String("source", a.source),
			slog.String("error", a.loadErr.Error()))
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return inderrors.ConfigError("failed to listen on "+cfg.Server.Addr, err).
			WithSuggestion("Choose another address with --addr")
	}

	srv := server.New(a.service, a.renderer,
		server.WithLogger(logger),
		server.WithTitle(opts.title),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(ctx, ln)
	})

	if opts.watch || cfg.Catalog.Watch {
		if catalog.NewLoader(a.source).IsRemote() {
			logger.Warn("watch_skipped", slog.String("reason", "remote catalog"), slog.String("source", a.source))
		} else {
			w, err := watcher.New(a.source, a.service.Reload, watcher.Options{Logger: logger})
			if err != nil {
				logger.Warn("watch_skipped", slog.String("reason", err.Error()), slog.String("source", a.source))
			} else {
				g.Go(func() error {
					return w.Run(ctx)
				})
			}
		}
	}

	cmd.PrintErrf("Serving %s on http://%s\n", a.source, ln.Addr())
	return g.Wait()
}
