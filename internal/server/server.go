// Package server serves the search page over HTTP. Each keystroke arrives
// as a websocket message and is answered with the complete replacement
// markup for the results container; GET /search is the fallback.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Aman-CERP/indsearch/internal/catalog"
	inderrors "github.com/Aman-CERP/indsearch/internal/errors"
	"github.com/Aman-CERP/indsearch/internal/render"
	"github.com/Aman-CERP/indsearch/internal/search"
	"github.com/Aman-CERP/indsearch/internal/telemetry"
)

// RequestIDHeader carries the per-request ID.
const RequestIDHeader = "X-Request-ID"

// maxQueryBytes bounds a websocket query message.
const maxQueryBytes = 4096

// Backend answers queries. *search.Service implements it.
type Backend interface {
	Query(ctx context.Context, input string) ([]*search.Result, error)
	Status() search.Status
	Indicators() []*catalog.Indicator
	Metrics() *telemetry.QueryMetrics
}

// Server is the HTTP front end.
type Server struct {
	backend  Backend
	renderer *render.Renderer
	logger   *slog.Logger
	upgrader websocket.Upgrader
	title    string

	shutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// New creates a Server.
func New(backend Backend, renderer *render.Renderer, opts ...Option) *Server {
	s := &Server{
		backend:         backend,
		renderer:        renderer,
		logger:          slog.Default(),
		shutdownTimeout: 5 * time.Second,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	mux.HandleFunc("GET /indicators.json", s.handleCatalog)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.withRequestID(mux)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("server_started", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.logger.Info("server_stopped", slog.String("addr", ln.Addr().String()))
		return err
	}
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return inderrors.ConfigError("failed to listen on "+addr, err).
			WithSuggestion("Choose another address with --addr")
	}
	return s.Serve(ctx, ln)
}

// results queries the backend and renders the replacement markup.
func (s *Server) results(ctx context.Context, q string) (string, int, error) {
	res, err := s.backend.Query(ctx, q)
	if err != nil {
		return "", 0, err
	}
	markup, err := s.renderer.Render(search.Indicators(res))
	if err != nil {
		return "", 0, err
	}
	return string(markup), len(res), nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	data := render.PageData{Title: s.title, Query: q, Live: true}
	code := http.StatusOK

	markup, n, err := s.results(r.Context(), q)
	if err != nil {
		code = statusFor(err)
		data.Unavailable = true
		data.Reason = s.backend.Status().Error
		s.logFor(r).Warn("page_unavailable", slog.String("error", err.Error()))
	} else {
		data.Results = template.HTML(markup)
		data.Count = n
	}

	page, err := s.renderer.Page(data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(page)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	markup, n, err := s.results(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Result-Count", strconv.Itoa(n))
	_, _ = w.Write([]byte(markup))
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logFor(r).Warn("websocket_upgrade_failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxQueryBytes)

	logger := s.logFor(r)
	logger.Debug("websocket_opened")
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("websocket_read_ended", slog.String("error", err.Error()))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		markup, _, qerr := s.results(r.Context(), string(msg))
		if qerr != nil {
			markup = unavailableMarkup
			logger.Warn("websocket_query_failed", slog.String("error", qerr.Error()))
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(markup)); err != nil {
			logger.Debug("websocket_write_failed", slog.String("error", err.Error()))
			return
		}
	}
}

const unavailableMarkup = `<div class="unavailable" role="alert">Search unavailable</div>`

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if !s.backend.Status().Available() {
		s.fail(w, r, inderrors.New(inderrors.ErrCodeUnavailable, "search unavailable", nil))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := catalog.Encode(w, s.backend.Indicators()); err != nil {
		s.logFor(r).Error("catalog_encode_failed", slog.String("error", err.Error()))
	}
}

// Health is the /healthz response.
type Health struct {
	Status  string                          `json:"status"`
	Catalog search.Status                   `json:"catalog"`
	Queries *telemetry.QueryMetricsSnapshot `json:"queries,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.backend.Status()
	h := Health{Status: "ok", Catalog: st}
	code := http.StatusOK
	if !st.Available() {
		h.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	if m := s.backend.Metrics(); m != nil {
		h.Queries = m.Snapshot()
	}
	writeJSON(w, code, h)
}

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	switch inderrors.GetCode(err) {
	case inderrors.ErrCodeUnavailable, inderrors.ErrCodeEngineClosed:
		return http.StatusServiceUnavailable
	case inderrors.ErrCodeInvalidQuery:
		return http.StatusBadRequest
	}
	if errors.Is(err, context.Canceled) {
		return 499
	}
	return http.StatusInternalServerError
}

// fail writes err as a JSON error body.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	s.logFor(r).Warn("request_failed",
		slog.Int("status", code),
		slog.String("error", err.Error()))

	body := map[string]string{"error": err.Error()}
	if c := inderrors.GetCode(err); c != "" {
		body["code"] = c
	}
	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
