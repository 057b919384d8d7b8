package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/indsearch/internal/render"
	"github.com/Aman-CERP/indsearch/internal/search"
	"github.com/Aman-CERP/indsearch/internal/telemetry"
	"github.com/Aman-CERP/indsearch/pkg/version"
)

// ServerName is the implementation name reported to clients.
const ServerName = "indsearch"

// Tool names.
const (
	ToolSearchIndicators = "search_indicators"
	ToolCatalogStatus    = "catalog_status"
)

// QueryMetricsURI is the URI of the query metrics resource.
const QueryMetricsURI = "indsearch://query_metrics"

// Backend answers queries. *search.Service implements it.
type Backend interface {
	Query(ctx context.Context, input string) ([]*search.Result, error)
	Status() search.Status
	Metrics() *telemetry.QueryMetrics
}

// ToolInfo describes a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

var tools = []ToolInfo{
	{
		Name: ToolSearchIndicators,
		Description: "Search the climate indicator catalog. Matches title, abstract, input variable names and keywords " +
			"with typo tolerance and prefix matching; title and variable matches rank highest. An empty query lists every indicator.",
	},
	{
		Name:        ToolCatalogStatus,
		Description: "Report whether the indicator catalog is loaded, how many indicators it holds, where it came from and why it failed to load if it did.",
	},
}

// Server is the MCP server for indsearch.
type Server struct {
	mcp      *mcp.Server
	backend  Backend
	renderer *render.Renderer
	logger   *slog.Logger
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

// NewServer creates an MCP server over backend.
func NewServer(backend Backend, renderer *render.Renderer, opts ...Option) (*Server, error) {
	if backend == nil {
		return nil, fmt.Errorf("search backend is required")
	}
	if renderer == nil {
		renderer = render.MustNew(render.Options{})
	}

	s := &Server{
		backend:  backend,
		renderer: renderer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: version.Version,
	}, nil)

	s.registerTools()
	if backend.Metrics() != nil {
		s.registerQueryMetricsResource()
	}
	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// ListTools returns the registered tools.
func (s *Server) ListTools() []ToolInfo {
	return append([]ToolInfo(nil), tools...)
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        tools[0].Name,
		Description: tools[0].Description,
	}, s.searchIndicatorsHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        tools[1].Name,
		Description: tools[1].Description,
	}, s.catalogStatusHandler)

	s.logger.Debug("mcp_tools_registered", slog.Int("count", len(tools)))
}

func (s *Server) searchIndicatorsHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchIndicatorsInput) (
	*mcp.CallToolResult,
	SearchIndicatorsOutput,
	error,
) {
	requestID := uuid.NewString()
	start := time.Now()
	limit := clampLimit(input.Limit)

	s.logger.Info("search_started",
		slog.String("request_id", requestID),
		slog.String("query", input.Query),
		slog.Int("limit", limit))

	results, err := s.backend.Query(ctx, input.Query)
	if err != nil {
		s.logger.Warn("search_failed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return nil, SearchIndicatorsOutput{}, MapError(err)
	}

	out := SearchIndicatorsOutput{
		Total:   len(results),
		Results: make([]IndicatorOutput, 0, min(limit, len(results))),
	}
	if len(results) > limit {
		results = results[:limit]
	}
	for _, r := range results {
		out.Results = append(out.Results, s.toOutput(r))
	}
	if input.HTML {
		markup, err := s.renderer.Render(search.Indicators(results))
		if err != nil {
			return nil, SearchIndicatorsOutput{}, MapError(err)
		}
		out.Markup = string(markup)
	}

	s.logger.Info("search_completed",
		slog.String("request_id", requestID),
		slog.Int("results", len(out.Results)),
		slog.Int("total", out.Total),
		slog.Duration("duration", time.Since(start)))

	return textResult(FormatResults(input.Query, out)), out, nil
}

func (s *Server) toOutput(r *search.Result) IndicatorOutput {
	ind := r.Indicator
	vars := make([]VariableOutput, len(ind.Vars))
	for i, v := range ind.Vars {
		vars[i] = VariableOutput{Name: v.Name, Description: v.Description}
	}
	keywords := make([]string, len(ind.Keywords))
	for i, k := range ind.Keywords {
		keywords[i] = strings.TrimSpace(k)
	}
	return IndicatorOutput{
		ID:        ind.ID,
		Title:     ind.Title,
		Reference: ind.Reference(),
		Link:      s.renderer.DocBase() + ind.Reference(),
		Abstract:  ind.Abstract,
		Realm:     ind.Realm,
		Variables: vars,
		Keywords:  keywords,
		Score:     r.Score,
	}
}

func (s *Server) catalogStatusHandler(_ context.Context, _ *mcp.CallToolRequest, _ CatalogStatusInput) (
	*mcp.CallToolResult,
	CatalogStatusOutput,
	error,
) {
	out := s.status()
	return textResult(FormatStatus(out)), out, nil
}

func (s *Server) status() CatalogStatusOutput {
	st := s.backend.Status()
	out := CatalogStatusOutput{
		State:     string(st.State),
		Available: st.Available(),
		Count:     st.Count,
		Source:    st.Source,
		Error:     st.Error,
	}
	if !st.LoadedAt.IsZero() {
		out.LoadedAt = st.LoadedAt.Format(time.RFC3339)
	}
	if m := s.backend.Metrics(); m != nil {
		snap := m.Snapshot()
		q := &QuerySummary{
			TotalQueries:      snap.TotalQueries,
			ZeroResultPct:     snap.ZeroResultPercentage(),
			ZeroResultQueries: snap.ZeroResultQueries,
		}
		for i, tc := range snap.TopTerms {
			if i == 10 {
				break
			}
			q.TopTerms = append(q.TopTerms, tc.Term)
		}
		out.Queries = q
	}
	return out
}

func (s *Server) registerQueryMetricsResource() {
	s.mcp.AddResource(&mcp.Resource{
		Name:        "query_metrics",
		URI:         QueryMetricsURI,
		Description: "Query telemetry for the indicator search",
		MIMEType:    "application/json",
	}, s.queryMetricsHandler)
}

func (s *Server) queryMetricsHandler(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	m := s.backend.Metrics()
	if m == nil {
		return nil, NewInvalidParamsError("query metrics not available")
	}
	content, err := json.MarshalIndent(m.Snapshot(), "", "  ")
	if err != nil {
		return nil, MapError(err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      QueryMetricsURI,
				MIMEType: "application/json",
				Text:     string(content),
			},
		},
	}, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// Serve runs the server on transport until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("mcp_server_starting", slog.String("transport", transport))

	switch transport {
	case "stdio", "":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && err != context.Canceled {
			s.logger.Error("mcp_server_stopped", slog.String("error", err.Error()))
		} else {
			s.logger.Info("mcp_server_stopped")
		}
		return err
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}
