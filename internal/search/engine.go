package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Aman-CERP/indsearch/internal/catalog"
	inderrors "github.com/Aman-CERP/indsearch/internal/errors"
	"github.com/Aman-CERP/indsearch/internal/store"
	"github.com/Aman-CERP/indsearch/internal/telemetry"
)

// Engine answers queries against one catalog. It is loaded once and
// read-only afterwards; a new catalog means a new Engine.
type Engine struct {
	mu       sync.RWMutex
	index    store.IndicatorIndex
	inds     []*catalog.Indicator
	state    State
	loadErr  error
	source   string
	loadedAt time.Time
	closed   bool

	logger  *slog.Logger
	metrics *telemetry.QueryMetrics
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records every query in m.
func WithMetrics(m *telemetry.QueryMetrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithSource records where the catalog came from, for Status.
func WithSource(source string) EngineOption {
	return func(e *Engine) {
		e.source = source
	}
}

// NewEngine creates an unloaded engine over index.
func NewEngine(index store.IndicatorIndex, opts ...EngineOption) (*Engine, error) {
	if index == nil {
		return nil, inderrors.InternalError("search engine requires an index", nil)
	}
	e := newEngine(opts...)
	e.index = index
	return e, nil
}

func newEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		state:  StateUnloaded,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FailedEngine returns an engine that reports err as its load failure.
// It answers every query with ErrCodeUnavailable.
func FailedEngine(err error, opts ...EngineOption) *Engine {
	e := newEngine(opts...)
	e.state = StateFailed
	e.loadErr = err
	return e
}

// Load populates the index with inds. It may be called once; a failed load
// leaves the engine in StateFailed.
func (e *Engine) Load(ctx context.Context, inds []*catalog.Indicator) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return inderrors.New(inderrors.ErrCodeEngineClosed, "engine is closed", nil)
	}
	if e.state != StateUnloaded {
		return inderrors.New(inderrors.ErrCodeAlreadyLoaded, "engine is already loaded", nil).
			WithDetail("state", string(e.state))
	}

	start := time.Now()
	if err := e.index.Load(ctx, inds); err != nil {
		e.state = StateFailed
		e.loadErr = err
		e.logger.Error("engine_load_failed",
			slog.String("source", e.source),
			slog.String("error", err.Error()))
		return err
	}

	e.inds = append([]*catalog.Indicator(nil), inds...)
	e.state = StateLoaded
	e.loadedAt = time.Now()
	e.logger.Info("engine_loaded",
		slog.String("source", e.source),
		slog.Int("indicators", len(inds)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Query returns the indicators matching input. A blank input returns every
// indicator in load order with a zero score. An unloaded engine returns no
// results and no error.
func (e *Engine) Query(ctx context.Context, input string) ([]*Result, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, inderrors.New(inderrors.ErrCodeEngineClosed, "engine is closed", nil)
	}
	switch e.state {
	case StateUnloaded:
		return []*Result{}, nil
	case StateFailed:
		return nil, inderrors.New(inderrors.ErrCodeUnavailable, "search unavailable", e.loadErr).
			WithSuggestion("Check the catalog source and reload")
	}

	start := time.Now()
	kind := telemetry.QueryKindText
	var results []*Result
	if strings.TrimSpace(input) == "" {
		kind = telemetry.QueryKindListAll
		results = make([]*Result, len(e.inds))
		for i, ind := range e.inds {
			results[i] = &Result{Indicator: ind}
		}
	} else {
		hits, err := e.index.Search(ctx, input)
		if err != nil {
			e.logger.Warn("search_failed",
				slog.String("query", input),
				slog.String("error", err.Error()))
			return nil, err
		}
		results = hits
	}

	elapsed := time.Since(start)
	if e.metrics != nil {
		e.metrics.Record(telemetry.QueryEvent{
			Query:       input,
			Kind:        kind,
			ResultCount: len(results),
			Latency:     elapsed,
		})
	}
	e.logger.Debug("search_completed",
		slog.String("query", input),
		slog.Int("results", len(results)),
		slog.Duration("duration", elapsed))
	return results, nil
}

// Indicators returns the loaded catalog in load order.
func (e *Engine) Indicators() []*catalog.Indicator {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]*catalog.Indicator(nil), e.inds...)
}

// Status reports the engine state.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := Status{
		State:    e.state,
		Count:    len(e.inds),
		Source:   e.source,
		LoadedAt: e.loadedAt,
	}
	if e.loadErr != nil {
		s.Error = e.loadErr.Error()
	}
	return s
}

// Close releases the index. Queries after Close fail with ErrCodeEngineClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	if e.index != nil {
		return e.index.Close()
	}
	return nil
}
