// Package validation runs data-driven relevance checks against the search
// service: a YAML file lists queries and the indicators each must return.
//
// Queries are grouped in tiers:
//   - tier1: an expected indicator must be the top result
//   - tier2: an expected indicator must appear within the top N (default 3)
//   - negative: the query must be answered without an error
package validation

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/indsearch/internal/search"
)

// Default rank windows per tier.
const (
	defaultTier1Top = 1
	defaultTier2Top = 3
)

// QuerySpec defines a test query with expected results.
type QuerySpec struct {
	ID       string   `yaml:"id"`       // e.g., "T1-Q3"
	Name     string   `yaml:"name"`     // Human-readable name
	Query    string   `yaml:"query"`    // The search input
	Expected []string `yaml:"expected"` // Indicator IDs, any of which satisfies the query
	Top      int      `yaml:"top"`      // Rank window; 0 uses the tier default
	Notes    string   `yaml:"notes"`    // Optional explanation for maintainers
	Tier     int      `yaml:"-"`        // Set from the section
}

// QueryConfig holds all validation queries loaded from YAML.
type QueryConfig struct {
	Tier1    []QuerySpec `yaml:"tier1"`
	Tier2    []QuerySpec `yaml:"tier2"`
	Negative []QuerySpec `yaml:"negative"`
}

// LoadQueries reads a query file.
func LoadQueries(path string) (*QueryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read queries file %s: %w", path, err)
	}
	return ParseQueries(data)
}

// ParseQueries parses query YAML and fills tier defaults.
func ParseQueries(data []byte) (*QueryConfig, error) {
	var cfg QueryConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse queries YAML: %w", err)
	}

	for i := range cfg.Tier1 {
		cfg.Tier1[i].Tier = 1
		if cfg.Tier1[i].Top <= 0 {
			cfg.Tier1[i].Top = defaultTier1Top
		}
	}
	for i := range cfg.Tier2 {
		cfg.Tier2[i].Tier = 2
		if cfg.Tier2[i].Top <= 0 {
			cfg.Tier2[i].Top = defaultTier2Top
		}
	}
	for i := range cfg.Negative {
		cfg.Negative[i].Tier = 0
	}

	for _, spec := range append(cfg.Tier1, cfg.Tier2...) {
		if len(spec.Expected) == 0 {
			return nil, fmt.Errorf("query %s: expected must list at least one indicator", spec.ID)
		}
	}
	return &cfg, nil
}

// TestResult captures the outcome of a single query.
type TestResult struct {
	Spec       QuerySpec     `json:"spec"`
	Passed     bool          `json:"passed"`
	Duration   time.Duration `json:"duration_ns"`
	TopResults []string      `json:"top_results"` // Indicator IDs returned, best first
	MatchedAt  int           `json:"matched_at"`  // Rank of the first expected ID (-1 if not found)
	Error      string        `json:"error,omitempty"`
}

// ValidationResult captures results of a full validation run.
type ValidationResult struct {
	Timestamp  time.Time    `json:"timestamp"`
	Source     string       `json:"source"`
	Indicators int          `json:"indicators"`
	Tier1      []TestResult `json:"tier1"`
	Tier2      []TestResult `json:"tier2"`
	Negative   []TestResult `json:"negative"`
	Tier1Pass  int          `json:"tier1_pass"`
	Tier2Pass  int          `json:"tier2_pass"`
	NegPass    int          `json:"negative_pass"`
}

// Passed reports whether every query passed.
func (r *ValidationResult) Passed() bool {
	return r.Tier1Pass == len(r.Tier1) && r.Tier2Pass == len(r.Tier2) && r.NegPass == len(r.Negative)
}

// Summary returns one line per tier.
func (r *ValidationResult) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tier 1:   %d/%d\n", r.Tier1Pass, len(r.Tier1))
	fmt.Fprintf(&sb, "Tier 2:   %d/%d\n", r.Tier2Pass, len(r.Tier2))
	fmt.Fprintf(&sb, "Negative: %d/%d\n", r.NegPass, len(r.Negative))
	return sb.String()
}

// Backend answers queries. *search.Service implements it.
type Backend interface {
	Query(ctx context.Context, input string) ([]*search.Result, error)
	Status() search.Status
}

// Validator runs validation queries against a search backend.
type Validator struct {
	backend Backend
}

// NewValidator creates a validator over backend.
func NewValidator(backend Backend) *Validator {
	return &Validator{backend: backend}
}

// RunQuery executes a single query and returns the result.
func (v *Validator) RunQuery(ctx context.Context, spec QuerySpec) TestResult {
	start := time.Now()
	result := TestResult{
		Spec:      spec,
		MatchedAt: -1,
	}

	results, err := v.backend.Query(ctx, spec.Query)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.TopResults = make([]string, len(results))
	for i, r := range results {
		result.TopResults[i] = r.Indicator.ID
	}

	if spec.Tier == 0 {
		// Negative query: answering without an error is enough.
		result.Passed = true
		return result
	}

	result.MatchedAt = checkExpected(result.TopResults, spec.Expected)
	result.Passed = result.MatchedAt >= 0 && result.MatchedAt < spec.Top
	return result
}

// RunAll executes all queries in cfg and returns results.
func (v *Validator) RunAll(ctx context.Context, cfg *QueryConfig) *ValidationResult {
	st := v.backend.Status()
	result := &ValidationResult{
		Timestamp:  time.Now(),
		Source:     st.Source,
		Indicators: st.Count,
	}

	for _, spec := range cfg.Tier1 {
		tr := v.RunQuery(ctx, spec)
		result.Tier1 = append(result.Tier1, tr)
		if tr.Passed {
			result.Tier1Pass++
		}
	}
	for _, spec := range cfg.Tier2 {
		tr := v.RunQuery(ctx, spec)
		result.Tier2 = append(result.Tier2, tr)
		if tr.Passed {
			result.Tier2Pass++
		}
	}
	for _, spec := range cfg.Negative {
		tr := v.RunQuery(ctx, spec)
		result.Negative = append(result.Negative, tr)
		if tr.Passed {
			result.NegPass++
		}
	}

	return result
}

// checkExpected returns the rank of the first result that is expected, or -1.
func checkExpected(results []string, expected []string) int {
	for i, id := range results {
		for _, exp := range expected {
			if strings.EqualFold(id, exp) {
				return i
			}
		}
	}
	return -1
}
