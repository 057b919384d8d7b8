package mcp

// SearchIndicatorsInput defines the input schema for the search_indicators tool.
type SearchIndicatorsInput struct {
	Query string `json:"query" jsonschema:"free-text query over title, abstract, variable names and keywords; empty lists the whole catalog"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 20, max 200"`
	HTML  bool   `json:"html,omitempty" jsonschema:"also return the rendered HTML fragment for the results"`
}

// SearchIndicatorsOutput defines the output schema for the search_indicators tool.
type SearchIndicatorsOutput struct {
	Total   int               `json:"total" jsonschema:"number of matching indicators before the limit"`
	Results []IndicatorOutput `json:"results" jsonschema:"matching indicators, best first"`
	Markup  string            `json:"markup,omitempty" jsonschema:"rendered HTML when requested"`
}

// IndicatorOutput is one indicator in a tool result.
type IndicatorOutput struct {
	ID        string           `json:"id" jsonschema:"lower-cased catalog key"`
	Title     string           `json:"title"`
	Reference string           `json:"reference" jsonschema:"module.name of the indicator"`
	Link      string           `json:"link" jsonschema:"API documentation link"`
	Abstract  string           `json:"abstract"`
	Realm     string           `json:"realm"`
	Variables []VariableOutput `json:"variables" jsonschema:"input variables in catalog order"`
	Keywords  []string         `json:"keywords"`
	Score     float64          `json:"score" jsonschema:"relevance score, 0 for an empty query"`
}

// VariableOutput is one input variable of an indicator.
type VariableOutput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CatalogStatusInput defines the input schema for the catalog_status tool (no parameters).
type CatalogStatusInput struct{}

// CatalogStatusOutput defines the output schema for the catalog_status tool.
type CatalogStatusOutput struct {
	State     string        `json:"state" jsonschema:"unloaded, loaded or failed"`
	Available bool          `json:"available"`
	Count     int           `json:"count"`
	Source    string        `json:"source"`
	LoadedAt  string        `json:"loaded_at,omitempty"`
	Error     string        `json:"error,omitempty"`
	Queries   *QuerySummary `json:"queries,omitempty"`
}

// QuerySummary condenses query telemetry.
type QuerySummary struct {
	TotalQueries      int64    `json:"total_queries"`
	ZeroResultPct     float64  `json:"zero_result_pct"`
	TopTerms          []string `json:"top_terms,omitempty"`
	ZeroResultQueries []string `json:"zero_result_queries,omitempty"`
}

// Tool limits.
const (
	defaultLimit = 20
	maxLimit     = 200
)

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultLimit
	case limit > maxLimit:
		return maxLimit
	default:
		return limit
	}
}
