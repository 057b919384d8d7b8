package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/indsearch/internal/mcp"
)

func newMCPCmd(global *globalOptions) *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server over stdio",
		Long: `Expose the catalog to AI assistants through the Model Context Protocol.

Tools:
  search_indicators  free-text search, empty query lists the catalog
  catalog_status     load state, indicator count and load error

stdout carries protocol messages only; logs go to stderr.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			if transport == "" {
				transport = cfg.Server.Transport
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

			srv, err := mcp.NewServer(a.service, a.renderer, mcp.WithLogger(logger))
			if err != nil {
				return err
			}
			err = srv.Serve(ctx, transport)
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "Transport: stdio (default from config)")

	return cmd
}
