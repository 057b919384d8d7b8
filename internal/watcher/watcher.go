package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is called once per settled change of the catalog file.
type ReloadFunc func(ctx context.Context) error

// Options configures a CatalogWatcher.
type Options struct {
	// DebounceWindow is the quiet period before a reload (default 300ms).
	DebounceWindow time.Duration
	Logger         *slog.Logger
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow: 300 * time.Millisecond,
	}
}

// WithDefaults fills unset fields.
func (o Options) WithDefaults() Options {
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = DefaultOptions().DebounceWindow
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// CatalogWatcher calls a ReloadFunc whenever the catalog file is written,
// created, renamed or removed.
type CatalogWatcher struct {
	path   string
	dir    string
	reload ReloadFunc
	opts   Options
}

// New creates a watcher for the catalog file at path.
func New(path string, reload ReloadFunc, opts Options) (*CatalogWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}
	dir := filepath.Dir(abs)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("catalog directory %s is not accessible", dir)
	}
	return &CatalogWatcher{
		path:   abs,
		dir:    dir,
		reload: reload,
		opts:   opts.WithDefaults(),
	}, nil
}

// Path returns the watched catalog path.
func (w *CatalogWatcher) Path() string {
	return w.path
}

// Run watches until ctx is cancelled. Reload failures are logged and do not
// stop the watcher.
func (w *CatalogWatcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	debouncer := NewDebouncer(w.opts.DebounceWindow)
	defer debouncer.Stop()

	logger := w.opts.Logger
	logger.Info("watcher_started", slog.String("path", w.path))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher_stopped", slog.String("path", w.path))
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debug("catalog_changed",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()))
			debouncer.Trigger()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher_error", slog.String("error", err.Error()))

		case <-debouncer.Output():
			start := time.Now()
			if err := w.reload(ctx); err != nil {
				logger.Warn("catalog_reload_failed",
					slog.String("path", w.path),
					slog.String("error", err.Error()))
				continue
			}
			logger.Info("catalog_reload_completed",
				slog.String("path", w.path),
				slog.Duration("duration", time.Since(start)))
		}
	}
}

// relevant reports whether event concerns the catalog file.
func (w *CatalogWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Rename) ||
		event.Op.Has(fsnotify.Remove)
}
