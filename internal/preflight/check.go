package preflight

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Aman-CERP/indsearch/internal/catalog"
	"github.com/Aman-CERP/indsearch/internal/config"
	"github.com/Aman-CERP/indsearch/internal/store"
)

// CheckStatus represents the result of a preflight check.
type CheckStatus int

const (
	// StatusPass indicates the check passed.
	StatusPass CheckStatus = iota
	// StatusWarn indicates a non-critical problem.
	StatusWarn
	// StatusFail indicates the check failed.
	StatusFail
)

// String returns the string representation of a CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the status in lower case for JSON output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

// CheckResult holds the result of a single check.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Required bool        `json:"required"`
}

// IsCritical returns true if this is a required check that failed.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Target is the setup under diagnosis.
type Target struct {
	// Config is the loaded configuration; nil when ConfigErr is set.
	Config    *config.Config
	ConfigErr error

	// Source is the catalog source resolved against the project directory.
	Source string

	// Index configures the index built for the sample query.
	Index store.IndexConfig

	// LogDir is where --debug writes its log file.
	LogDir string
}

// Checker performs preflight checks.
type Checker struct {
	verbose bool
	output  io.Writer
}

// Option configures a Checker.
type Option func(*Checker)

// WithVerbose prints check details.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) {
		c.verbose = verbose
	}
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		c.output = w
	}
}

// New creates a Checker.
func New(opts ...Option) *Checker {
	c := &Checker{output: os.Stdout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll runs every check in order. Checks that depend on a failed one are
// reported as failed with a "skipped" message.
func (c *Checker) RunAll(ctx context.Context, t Target) []CheckResult {
	results := []CheckResult{c.CheckConfig(t)}

	var inds []*catalog.Indicator
	if t.Config == nil {
		results = append(results,
			skipped("catalog", "configuration invalid"),
			skipped("index", "configuration invalid"))
	} else {
		var res CheckResult
		inds, res = c.CheckCatalog(ctx, t.Source, t.Config.FetchTimeout())
		results = append(results, res)
		if res.Status == StatusFail {
			results = append(results, skipped("index", "catalog unavailable"))
		} else {
			results = append(results, c.CheckIndex(ctx, t.Index, inds))
		}
	}

	results = append(results, c.CheckLogDir(t.LogDir))
	if t.Config != nil {
		results = append(results, c.CheckServeAddr(t.Config.Server.Addr))
	}
	return results
}

func skipped(name, why string) CheckResult {
	return CheckResult{Name: name, Status: StatusFail, Message: "skipped: " + why, Required: true}
}

// HasCriticalFailures returns true if any required check failed.
func (c *Checker) HasCriticalFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.IsCritical() {
			return true
		}
	}
	return false
}

// SummaryStatus returns "ready", "ready_with_warnings" or "failed".
func (c *Checker) SummaryStatus(results []CheckResult) string {
	hasWarnings := false
	for _, r := range results {
		if r.IsCritical() {
			return "failed"
		}
		if r.Status != StatusPass {
			hasWarnings = true
		}
	}
	if hasWarnings {
		return "ready_with_warnings"
	}
	return "ready"
}

// PrintResults prints check results to the configured output.
func (c *Checker) PrintResults(results []CheckResult) {
	_, _ = fmt.Fprintln(c.output, "indsearch setup check")
	_, _ = fmt.Fprintln(c.output, "=====================")
	_, _ = fmt.Fprintln(c.output)

	for _, r := range results {
		_, _ = fmt.Fprintf(c.output, "[%s] %s: %s\n", r.Status, r.Name, r.Message)
		if c.verbose && r.Details != "" {
			for _, line := range strings.Split(r.Details, "\n") {
				_, _ = fmt.Fprintf(c.output, "      %s\n", line)
			}
		}
	}

	_, _ = fmt.Fprintln(c.output)
	_, _ = fmt.Fprintf(c.output, "Status: %s\n", strings.ToUpper(c.SummaryStatus(results)))

	var warnings, errs []string
	for _, r := range results {
		if r.IsCritical() {
			errs = append(errs, r.Name+": "+r.Message)
		} else if r.Status != StatusPass {
			warnings = append(warnings, r.Name+": "+r.Message)
		}
	}
	printList(c.output, "error(s)", errs)
	printList(c.output, "warning(s)", warnings)
}

func printList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%d %s:\n", len(items), label)
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "  - %s\n", item)
	}
}

// CheckConfig reports whether the configuration loaded.
func (c *Checker) CheckConfig(t Target) CheckResult {
	result := CheckResult{Name: "config", Required: true}
	if t.ConfigErr != nil || t.Config == nil {
		result.Status = StatusFail
		result.Message = "invalid configuration"
		if t.ConfigErr != nil {
			result.Details = t.ConfigErr.Error()
		}
		return result
	}
	result.Status = StatusPass
	result.Message = "OK"
	result.Details = "catalog.source=" + t.Config.Catalog.Source
	return result
}

// CheckCatalog fetches, decodes and validates the catalog at source.
func (c *Checker) CheckCatalog(ctx context.Context, source string, timeout time.Duration) ([]*catalog.Indicator, CheckResult) {
	result := CheckResult{Name: "catalog", Required: true}

	start := time.Now()
	loader := catalog.NewLoader(source, catalog.WithHTTPClient(&http.Client{Timeout: timeout}))
	inds, err := loader.Load(ctx)
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot load %s", source)
		result.Details = err.Error()
		return nil, result
	}

	if len(inds) == 0 {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%s is empty", source)
		return inds, result
	}
	result.Status = StatusPass
	result.Message = fmt.Sprintf("%d indicators", len(inds))
	result.Details = fmt.Sprintf("loaded %s in %s", source, time.Since(start).Round(time.Millisecond))
	return inds, result
}

// CheckIndex indexes inds and runs the first word of the first title as a
// sample query, which must find at least one indicator.
func (c *Checker) CheckIndex(ctx context.Context, cfg store.IndexConfig, inds []*catalog.Indicator) CheckResult {
	result := CheckResult{Name: "index", Required: true}

	idx, err := store.NewBleveIndicatorIndex(cfg)
	if err != nil {
		result.Status = StatusFail
		result.Message = "cannot create index"
		result.Details = err.Error()
		return result
	}
	defer func() { _ = idx.Close() }()

	if err := idx.Load(ctx, inds); err != nil {
		result.Status = StatusFail
		result.Message = "cannot index catalog"
		result.Details = err.Error()
		return result
	}

	sample := ""
	for _, ind := range inds {
		if terms := store.Tokenize(ind.Title); len(terms) > 0 {
			sample = terms[0]
			break
		}
	}
	if sample == "" {
		result.Status = StatusPass
		result.Message = fmt.Sprintf("indexed %d indicators", idx.Count())
		return result
	}

	hits, err := idx.Search(ctx, sample)
	if err != nil || len(hits) == 0 {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("sample query %q found nothing", sample)
		if err != nil {
			result.Details = err.Error()
		}
		return result
	}
	result.Status = StatusPass
	result.Message = fmt.Sprintf("indexed %d indicators", idx.Count())
	result.Details = fmt.Sprintf("sample query %q: %d hits, top %s", sample, len(hits), hits[0].Indicator.ID)
	return result
}

// CheckLogDir checks that the debug log directory is writable.
func (c *Checker) CheckLogDir(dir string) CheckResult {
	result := CheckResult{Name: "log_dir", Required: false}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		result.Status = StatusWarn
		result.Message = "cannot create log directory; --debug will fail"
		result.Details = err.Error()
		return result
	}
	testFile := filepath.Join(dir, ".indsearch-preflight-test")
	f, err := os.Create(testFile)
	if err != nil {
		result.Status = StatusWarn
		result.Message = "log directory not writable; --debug will fail"
		result.Details = err.Error()
		return result
	}
	_ = f.Close()
	_ = os.Remove(testFile)

	result.Status = StatusPass
	result.Message = "OK"
	result.Details = dir
	return result
}

// CheckServeAddr checks that the serve address can be bound.
func (c *Checker) CheckServeAddr(addr string) CheckResult {
	result := CheckResult{Name: "serve_addr", Required: false}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("cannot listen on %s", addr)
		result.Details = err.Error()
		return result
	}
	_ = ln.Close()

	result.Status = StatusPass
	result.Message = addr
	return result
}
