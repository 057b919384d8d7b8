package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/edgengram"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/Aman-CERP/indsearch/internal/catalog"
	inderrors "github.com/Aman-CERP/indsearch/internal/errors"
)

const (
	// TokenizerName is the name of the white space and punctuation tokenizer.
	TokenizerName = "indicator_tokenizer"

	// TextAnalyzerName analyzes the exact-match fields.
	TextAnalyzerName = "indicator_text"

	// PrefixAnalyzerName analyzes the sibling fields holding token prefixes.
	PrefixAnalyzerName = "indicator_prefix"

	prefixFilterName  = "indicator_edge_ngram"
	prefixFieldSuffix = "_prefix"
)

func init() {
	_ = registry.RegisterTokenizer(TokenizerName, tokenizerConstructor)
}

// BleveIndicatorIndex is an in-memory Bleve index over the catalog.
type BleveIndicatorIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	config IndexConfig
	logger *slog.Logger

	byID   map[string]*catalog.Indicator
	seq    map[string]int
	loaded bool
	closed bool
}

// Option configures a BleveIndicatorIndex.
type Option func(*BleveIndicatorIndex)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *BleveIndicatorIndex) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBleveIndicatorIndex creates an empty in-memory index.
func NewBleveIndicatorIndex(config IndexConfig, opts ...Option) (*BleveIndicatorIndex, error) {
	if config.MaxPrefixLength <= 0 {
		config.MaxPrefixLength = DefaultIndexConfig().MaxPrefixLength
	}

	indexMapping, err := createIndexMapping(config)
	if err != nil {
		return nil, inderrors.New(inderrors.ErrCodeIndexFailed, "failed to create index mapping", err)
	}

	idx, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, inderrors.New(inderrors.ErrCodeIndexFailed, "failed to create index", err)
	}

	b := &BleveIndicatorIndex{
		index:  idx,
		config: config,
		logger: slog.Default(),
		byID:   make(map[string]*catalog.Indicator),
		seq:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// NewFactory returns a Factory creating Bleve indexes with config.
func NewFactory(config IndexConfig, opts ...Option) Factory {
	return func() (IndicatorIndex, error) {
		return NewBleveIndicatorIndex(config, opts...)
	}
}

// createIndexMapping maps every indexed field twice: once with the text
// analyzer for exact and prefix queries, once with edge n-grams so fuzzy
// queries can match the beginning of a longer token.
func createIndexMapping(config IndexConfig) (*mapping.IndexMappingImpl, error) {
	indexMapping := bleve.NewIndexMapping()

	err := indexMapping.AddCustomAnalyzer(TextAnalyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     TokenizerName,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add text analyzer: %w", err)
	}

	err = indexMapping.AddCustomTokenFilter(prefixFilterName, map[string]interface{}{
		"type": edgengram.Name,
		"back": false,
		"min":  1.0,
		"max":  float64(config.MaxPrefixLength),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add prefix filter: %w", err)
	}

	err = indexMapping.AddCustomAnalyzer(PrefixAnalyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     TokenizerName,
		"token_filters": []string{lowercase.Name, prefixFilterName},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add prefix analyzer: %w", err)
	}

	doc := bleve.NewDocumentStaticMapping()
	for _, field := range IndexedFields {
		text := bleve.NewTextFieldMapping()
		text.Analyzer = TextAnalyzerName
		text.Store = false
		text.IncludeInAll = false

		prefix := bleve.NewTextFieldMapping()
		prefix.Name = field + prefixFieldSuffix
		prefix.Analyzer = PrefixAnalyzerName
		prefix.Store = false
		prefix.IncludeInAll = false

		doc.AddFieldMappingsAt(field, text, prefix)
	}

	indexMapping.DefaultMapping = doc
	indexMapping.DefaultAnalyzer = TextAnalyzerName
	return indexMapping, nil
}

// document returns the indexed representation of ind. The variables field
// is derived from the short names of the variable mapping.
func document(ind *catalog.Indicator) map[string]interface{} {
	return map[string]interface{}{
		FieldTitle:     ind.Title,
		FieldAbstract:  ind.Abstract,
		FieldVariables: strings.Join(ind.Vars.Names(), " "),
		FieldKeywords:  strings.Join(ind.Keywords, " "),
	}
}

// Load indexes the catalog in a single batch.
func (b *BleveIndicatorIndex) Load(ctx context.Context, inds []*catalog.Indicator) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return inderrors.New(inderrors.ErrCodeEngineClosed, "index is closed", nil)
	}
	if b.loaded {
		return inderrors.New(inderrors.ErrCodeAlreadyLoaded, "index is already loaded", nil)
	}

	batch := b.index.NewBatch()
	byID := make(map[string]*catalog.Indicator, len(inds))
	seq := make(map[string]int, len(inds))
	for i, ind := range inds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ind == nil {
			return inderrors.New(inderrors.ErrCodeIndexFailed,
				fmt.Sprintf("record %d is nil", i), nil)
		}
		if ind.ID == "" {
			return inderrors.New(inderrors.ErrCodeIndexFailed,
				fmt.Sprintf("record %d has no id", i), nil)
		}
		if _, dup := byID[ind.ID]; dup {
			return inderrors.New(inderrors.ErrCodeDuplicateID,
				fmt.Sprintf("duplicate id %q", ind.ID), nil)
		}
		if err := batch.Index(ind.ID, document(ind)); err != nil {
			return inderrors.New(inderrors.ErrCodeIndexFailed,
				fmt.Sprintf("failed to index %s", ind.ID), err)
		}
		byID[ind.ID] = ind
		seq[ind.ID] = i
	}

	if err := b.index.Batch(batch); err != nil {
		return inderrors.New(inderrors.ErrCodeIndexFailed, "failed to execute batch", err)
	}

	b.byID = byID
	b.seq = seq
	b.loaded = true

	b.logger.Debug("index_loaded", slog.Int("documents", len(inds)))
	return nil
}

// Search OR-combines exact, prefix and fuzzy clauses for every query term
// over every indexed field and returns all matching records.
func (b *BleveIndicatorIndex) Search(ctx context.Context, queryStr string) ([]*Hit, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, inderrors.New(inderrors.ErrCodeEngineClosed, "index is closed", nil)
	}
	if !b.loaded || len(b.byID) == 0 {
		return []*Hit{}, nil
	}

	terms := QueryTerms(queryStr)
	if len(terms) == 0 {
		return []*Hit{}, nil
	}

	req := bleve.NewSearchRequest(b.buildQuery(terms))
	req.Size = len(b.byID)

	result, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, inderrors.New(inderrors.ErrCodeSearchFailed, "search failed", err).
			WithDetail("query", queryStr)
	}

	hits := make([]*Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		ind, ok := b.byID[h.ID]
		if !ok {
			continue
		}
		hits = append(hits, &Hit{Indicator: ind, Score: h.Score})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return b.seq[hits[i].Indicator.ID] < b.seq[hits[j].Indicator.ID]
	})

	b.logger.Debug("index_searched",
		slog.String("query", queryStr),
		slog.Int("terms", len(terms)),
		slog.Int("hits", len(hits)))
	return hits, nil
}

func (b *BleveIndicatorIndex) buildQuery(terms []string) query.Query {
	clauses := make([]query.Query, 0, len(terms)*len(IndexedFields)*3)
	for _, term := range terms {
		edits := MaxEdits(term, b.config.Fuzzy)
		for _, field := range IndexedFields {
			boost := b.config.Boost(field)

			exact := query.NewTermQuery(term)
			exact.SetField(field)
			exact.SetBoost(boost)
			clauses = append(clauses, exact)

			if b.config.Prefix {
				prefix := query.NewPrefixQuery(term)
				prefix.SetField(field)
				prefix.SetBoost(boost * b.config.PrefixWeight)
				clauses = append(clauses, prefix)
			}

			if edits > 0 {
				fuzzy := query.NewFuzzyQuery(term)
				fuzzy.SetFuzziness(edits)
				fuzzy.SetBoost(boost * b.config.FuzzyWeight)
				if b.config.Prefix {
					fuzzy.SetField(field + prefixFieldSuffix)
				} else {
					fuzzy.SetField(field)
				}
				clauses = append(clauses, fuzzy)
			}
		}
	}
	return query.NewDisjunctionQuery(clauses)
}

// Count returns the number of loaded indicators.
func (b *BleveIndicatorIndex) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byID)
}

// Close closes the index.
func (b *BleveIndicatorIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return b.index.Close()
}

var _ IndicatorIndex = (*BleveIndicatorIndex)(nil)

// tokenizerConstructor creates the indicator tokenizer for Bleve.
func tokenizerConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.Tokenizer, error) {
	return &bleveTokenizer{}, nil
}

// bleveTokenizer implements analysis.Tokenizer by splitting on white space
// and punctuation.
type bleveTokenizer struct{}

// Tokenize implements analysis.Tokenizer.
func (t *bleveTokenizer) Tokenize(input []byte) analysis.TokenStream {
	spans := splitSpans(string(input))
	result := make(analysis.TokenStream, 0, len(spans))
	for i, s := range spans {
		result = append(result, &analysis.Token{
			Term:     input[s.start:s.end],
			Start:    s.start,
			End:      s.end,
			Position: i + 1,
			Type:     analysis.AlphaNumeric,
		})
	}
	return result
}
