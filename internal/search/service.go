package search

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Aman-CERP/indsearch/internal/catalog"
	inderrors "github.com/Aman-CERP/indsearch/internal/errors"
	"github.com/Aman-CERP/indsearch/internal/store"
	"github.com/Aman-CERP/indsearch/internal/telemetry"
)

// Service holds the current Engine. Reload builds a complete new engine and
// swaps it in, so queries never see a partially loaded catalog.
type Service struct {
	loader  CatalogLoader
	factory store.Factory
	logger  *slog.Logger
	metrics *telemetry.QueryMetrics

	current  atomic.Pointer[Engine]
	reloadMu sync.Mutex
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the service logger.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithServiceMetrics shares m across every engine the service creates.
func WithServiceMetrics(m *telemetry.QueryMetrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a service with no engine. Call Reload to load the catalog.
func NewService(loader CatalogLoader, factory store.Factory, opts ...ServiceOption) *Service {
	s := &Service{
		loader:  loader,
		factory: factory,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) engineOptions() []EngineOption {
	return []EngineOption{
		WithLogger(s.logger),
		WithMetrics(s.metrics),
		WithSource(s.loader.Source()),
	}
}

// Reload fetches the catalog and builds a new engine. On success the new
// engine replaces the current one. On failure a loaded engine is kept; if
// there is none the service switches to a failed engine carrying the error.
func (s *Service) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	eng, err := s.build(ctx)
	if err != nil {
		if cur := s.current.Load(); cur != nil && cur.Status().Available() {
			s.logger.Warn("catalog_reload_failed",
				slog.String("source", s.loader.Source()),
				slog.String("error", err.Error()),
				slog.String("kept", "previous catalog"))
			return err
		}
		s.swap(FailedEngine(err, s.engineOptions()...))
		return err
	}

	s.swap(eng)
	s.logger.Info("catalog_reloaded",
		slog.String("source", s.loader.Source()),
		slog.Int("indicators", eng.Status().Count))
	return nil
}

func (s *Service) build(ctx context.Context) (*Engine, error) {
	inds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	index, err := s.factory()
	if err != nil {
		return nil, err
	}
	eng, err := NewEngine(index, s.engineOptions()...)
	if err != nil {
		_ = index.Close()
		return nil, err
	}
	if err := eng.Load(ctx, inds); err != nil {
		_ = eng.Close()
		return nil, err
	}
	return eng, nil
}

func (s *Service) swap(eng *Engine) {
	if old := s.current.Swap(eng); old != nil {
		_ = old.Close()
	}
}

// Engine returns the current engine, or nil before the first Reload.
func (s *Service) Engine() *Engine {
	return s.current.Load()
}

// Status reports the current engine state.
func (s *Service) Status() Status {
	if eng := s.current.Load(); eng != nil {
		return eng.Status()
	}
	return Status{State: StateUnloaded, Source: s.loader.Source()}
}

// maxQueryAttempts bounds retries of a query that raced a reload.
const maxQueryAttempts = 3

// Query runs input against the current engine. A query that lands on an
// engine closed by a concurrent reload is retried on its replacement.
func (s *Service) Query(ctx context.Context, input string) ([]*Result, error) {
	eng := s.current.Load()
	if eng == nil {
		return []*Result{}, nil
	}

	for attempt := 1; ; attempt++ {
		results, err := eng.Query(ctx, input)
		if err == nil || inderrors.GetCode(err) != inderrors.ErrCodeEngineClosed || attempt == maxQueryAttempts {
			return results, err
		}
		next := s.current.Load()
		if next == nil || next == eng {
			return results, err
		}
		eng = next
	}
}

// Indicators returns the catalog of the current engine.
func (s *Service) Indicators() []*catalog.Indicator {
	if eng := s.current.Load(); eng != nil {
		return eng.Indicators()
	}
	return nil
}

// Metrics returns the shared query metrics, or nil.
func (s *Service) Metrics() *telemetry.QueryMetrics {
	return s.metrics
}

// Close closes the current engine.
func (s *Service) Close() error {
	if eng := s.current.Swap(nil); eng != nil {
		return eng.Close()
	}
	return nil
}
