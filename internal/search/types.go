// Package search owns the query path: an Engine holds one loaded catalog and
// its index, and a Service swaps engines when the catalog is reloaded.
package search

import (
	"context"
	"time"

	"github.com/Aman-CERP/indsearch/internal/catalog"
	"github.com/Aman-CERP/indsearch/internal/store"
)

// State is the lifecycle state of an Engine.
type State string

const (
	// StateUnloaded means no catalog has been loaded yet.
	StateUnloaded State = "unloaded"
	// StateLoaded means the engine answers queries.
	StateLoaded State = "loaded"
	// StateFailed means the catalog or index could not be loaded.
	StateFailed State = "failed"
)

// Result is a ranked indicator.
type Result = store.Hit

// Status describes an engine for the outer surfaces.
type Status struct {
	State    State     `json:"state"`
	Count    int       `json:"count"`
	Source   string    `json:"source,omitempty"`
	LoadedAt time.Time `json:"loaded_at,omitzero"`
	Error    string    `json:"error,omitempty"`
}

// Available reports whether queries can be answered.
func (s Status) Available() bool {
	return s.State == StateLoaded
}

// CatalogLoader fetches the catalog.
type CatalogLoader interface {
	Load(ctx context.Context) ([]*catalog.Indicator, error)
	Source() string
}

// Indicators returns the records of results, in order.
func Indicators(results []*Result) []*catalog.Indicator {
	out := make([]*catalog.Indicator, len(results))
	for i, r := range results {
		out[i] = r.Indicator
	}
	return out
}
