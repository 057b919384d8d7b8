// Package store provides the full-text index over the indicator catalog.
// The index is built once in memory and is read-only afterwards.
package store

import (
	"context"
	"math"
	"unicode/utf8"

	"github.com/Aman-CERP/indsearch/internal/catalog"
)

// Indexed fields.
const (
	FieldTitle     = "title"
	FieldAbstract  = "abstract"
	FieldVariables = "variables"
	FieldKeywords  = "keywords"
)

// IndexedFields lists the fields every query is run against.
var IndexedFields = []string{FieldTitle, FieldAbstract, FieldVariables, FieldKeywords}

// Hit is a single ranked search result.
type Hit struct {
	Indicator *catalog.Indicator
	Score     float64
}

// IndicatorIndex is the capability the search engine needs from an index.
type IndicatorIndex interface {
	// Load bulk-loads the catalog. It may be called once.
	Load(ctx context.Context, inds []*catalog.Indicator) error

	// Search returns hits in descending score order. Ties keep load order.
	// Searching an index that was never loaded returns no hits.
	Search(ctx context.Context, query string) ([]*Hit, error)

	// Count returns the number of loaded indicators.
	Count() int

	// Close releases the index.
	Close() error
}

// Factory creates an empty index.
type Factory func() (IndicatorIndex, error)

// IndexConfig configures matching and ranking.
type IndexConfig struct {
	// Boosts multiplies the score of matches per field. Missing fields weigh 1.
	Boosts map[string]float64

	// Fuzzy is the tolerated edit distance as a fraction of the term length.
	// Values >= 1 are taken as an absolute distance. 0 disables fuzzy matching.
	Fuzzy float64

	// Prefix lets a term match every token it is a prefix of.
	Prefix bool

	// PrefixWeight and FuzzyWeight scale prefix and fuzzy matches relative to
	// an exact match of weight 1.
	PrefixWeight float64
	FuzzyWeight  float64

	// MaxPrefixLength bounds the prefixes indexed for fuzzy-prefix matching.
	MaxPrefixLength int
}

// DefaultIndexConfig returns the ranking used by the documentation widget.
func DefaultIndexConfig() IndexConfig {
	return IndexConfig{
		Boosts:          map[string]float64{FieldTitle: 3, FieldVariables: 2},
		Fuzzy:           0.1,
		Prefix:          true,
		PrefixWeight:    0.375,
		FuzzyWeight:     0.45,
		MaxPrefixLength: 32,
	}
}

// Boost returns the boost for field, defaulting to 1.
func (c IndexConfig) Boost(field string) float64 {
	if b, ok := c.Boosts[field]; ok && b > 0 {
		return b
	}
	return 1
}

// maxFuzziness is the largest edit distance the index library accepts.
const maxFuzziness = 2

// MaxEdits returns the edit distance tolerated for term.
// Terms shorter than 3 runes must match exactly. Otherwise the fractional
// distance is rounded, with a floor of one edit and a cap of maxFuzziness.
func MaxEdits(term string, fuzzy float64) int {
	n := utf8.RuneCountInString(term)
	if fuzzy <= 0 || n < 3 {
		return 0
	}

	var d int
	if fuzzy >= 1 {
		d = int(fuzzy)
	} else {
		d = int(math.Round(fuzzy * float64(n)))
		if d < 1 {
			d = 1
		}
	}
	if d > maxFuzziness {
		d = maxFuzziness
	}
	return d
}
