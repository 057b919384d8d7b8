package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/indsearch/internal/output"
	"github.com/Aman-CERP/indsearch/internal/render"
	"github.com/Aman-CERP/indsearch/internal/search"
)

type buildOptions struct {
	output string
	title  string
}

func newBuildCmd(global *globalOptions) *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Write a static page listing the whole catalog",
		Long: `Render the full catalog into a standalone HTML page.

The page carries the same markup as the live page, without the search script.
Use "-" as output to write to stdout.`,
		Example: `  indsearch build
  indsearch build -o docs/_static/indicators.html --title "xclim indicators"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.Context(), cmd, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "index.html", "Output file, or - for stdout")
	cmd.Flags().StringVar(&opts.title, "title", "", "Page title")

	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, global *globalOptions, opts buildOptions) error {
	cfg, err := loadConfig(global)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, global, cfg, newLogger(global, nil, cfg.Server.LogLevel))
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	if a.loadErr != nil {
		return a.loadErr
	}

	results, err := a.service.Query(ctx, "")
	if err != nil {
		return err
	}
	markup, err := a.renderer.Render(search.Indicators(results))
	if err != nil {
		return err
	}
	page, err := a.renderer.Page(render.PageData{
		Title:   opts.title,
		Results: markup,
		Count:   len(results),
	})
	if err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout())
	if opts.output == "-" {
		return out.Raw(string(page))
	}

	if err := writePage(ctx, opts.output, page); err != nil {
		return err
	}
	out.Successf("Wrote %d indicators to %s", len(results), opts.output)
	return nil
}

// buildLockTimeout bounds the wait for a concurrent build of the same page.
const buildLockTimeout = 10 * time.Second

// writePage replaces path with page. Concurrent builds of the same path are
// serialised through <path>.lock and readers never see a partial file.
func writePage(ctx context.Context, path string, page []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	lock := flock.New(path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, buildLockTimeout)
	defer cancel()
	locked, err := lock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil || !locked {
		return fmt.Errorf("another build of %s is in progress (lock: %s)", path, lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(page); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
