package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/indsearch/internal/catalog"
	"github.com/Aman-CERP/indsearch/internal/output"
	"github.com/Aman-CERP/indsearch/internal/search"
	"github.com/Aman-CERP/indsearch/internal/ui"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	format string // "text", "html", "json"
	width  int
}

// searchResultJSON is one result in --format json output.
type searchResultJSON struct {
	*catalog.Indicator
	Reference string  `json:"reference"`
	Score     float64 `json:"score"`
}

func newSearchCmd(global *globalOptions) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the catalog once and print the results",
		Long: `Search the indicator catalog and print the matching indicators, best
match first. Titles weigh most, then input variable names; abstracts and
keywords count too. Misspellings and word prefixes still match.

Without a query every indicator is printed in catalog order.`,
		Example: `  indsearch search "maximum temperature"
  indsearch search tasmin --format json
  indsearch search frost --format html > frost.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd, global, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, html, json")
	cmd.Flags().IntVarP(&opts.width, "width", "w", 0, "Wrap abstracts at this width in text output (0 = no wrapping)")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, global *globalOptions, query string, opts searchOptions) error {
	switch opts.format {
	case "text", "html", "json":
	default:
		return fmt.Errorf("invalid format %q: must be text, html or json", opts.format)
	}

	cfg, err := loadConfig(global)
	if err != nil {
		return err
	}
	logger := newLogger(global, nil, cfg.Server.LogLevel)

	a, err := newApp(ctx, global, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	if a.loadErr != nil {
		return a.loadErr
	}

	results, err := a.service.Query(ctx, query)
	if err != nil {
		return err
	}
	logger.Info("search_complete", slog.String("query", query), slog.Int("results", len(results)))

	out := output.New(cmd.OutOrStdout())
	switch opts.format {
	case "json":
		items := make([]searchResultJSON, len(results))
		for i, r := range results {
			items[i] = searchResultJSON{Indicator: r.Indicator, Reference: r.Indicator.Reference(), Score: r.Score}
		}
		return out.JSON(items)
	case "html":
		markup, err := a.renderer.Render(search.Indicators(results))
		if err != nil {
			return err
		}
		if err := out.Raw(string(markup)); err != nil {
			return err
		}
		out.Newline()
		return nil
	default:
		return ui.NewListing(cmd.OutOrStdout(), ui.StylesFor(cmd.OutOrStdout()), opts.width).Render(results)
	}
}
