package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	inderrors "github.com/Aman-CERP/indsearch/internal/errors"
)

// DefaultSource is the catalog location used when none is configured.
const DefaultSource = "indicators.json"

// Loader fetches and parses the catalog from a file path or an http(s) URL.
// A load is a single attempt; there are no retries.
type Loader struct {
	source string
	client *http.Client
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient sets the client used for remote sources.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) { l.client = c }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a loader for source. An empty source means DefaultSource.
func NewLoader(source string, opts ...LoaderOption) *Loader {
	if source == "" {
		source = DefaultSource
	}
	l := &Loader{
		source: source,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Source returns the configured source.
func (l *Loader) Source() string {
	return l.source
}

// IsRemote reports whether the source is fetched over HTTP.
func (l *Loader) IsRemote() bool {
	return isURL(l.source)
}

// Load fetches, decodes and validates the catalog.
func (l *Loader) Load(ctx context.Context) ([]*Indicator, error) {
	start := time.Now()

	rc, err := l.open(ctx)
	if err != nil {
		l.logger.Warn("catalog_load_failed",
			slog.String("source", l.source),
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	inds, err := Decode(rc)
	if err != nil {
		l.logger.Warn("catalog_decode_failed",
			slog.String("source", l.source),
			slog.String("error", err.Error()))
		return nil, err
	}
	if err := Validate(inds); err != nil {
		return nil, err
	}

	l.logger.Info("catalog_loaded",
		slog.String("source", l.source),
		slog.Int("count", len(inds)),
		slog.Duration("duration", time.Since(start)))
	return inds, nil
}

func (l *Loader) open(ctx context.Context) (io.ReadCloser, error) {
	if isURL(l.source) {
		return l.fetch(ctx)
	}

	f, err := os.Open(l.source)
	if os.IsNotExist(err) {
		return nil, inderrors.New(inderrors.ErrCodeCatalogNotFound,
			fmt.Sprintf("catalog not found: %s", l.source), err).
			WithSuggestion("set catalog.source in .indsearch.yaml or pass --catalog")
	}
	if err != nil {
		return nil, inderrors.New(inderrors.ErrCodeCatalogRead,
			fmt.Sprintf("cannot read catalog %s", l.source), err)
	}
	return f, nil
}

func (l *Loader) fetch(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
	if err != nil {
		return nil, inderrors.New(inderrors.ErrCodeCatalogFetch, "invalid catalog URL", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, inderrors.New(inderrors.ErrCodeCatalogFetch,
			fmt.Sprintf("fetch catalog %s", l.source), err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, inderrors.New(inderrors.ErrCodeCatalogStatus,
			fmt.Sprintf("fetch catalog %s: %s", l.source, resp.Status), nil).
			WithDetail("status", fmt.Sprint(resp.StatusCode))
	}
	return resp.Body, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
