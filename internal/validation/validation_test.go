package validation

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/indsearch/internal/catalog"
	"github.com/Aman-CERP/indsearch/internal/logging"
	"github.com/Aman-CERP/indsearch/internal/search"
	"github.com/Aman-CERP/indsearch/internal/store"
)

func newService(t *testing.T) *search.Service {
	t.Helper()
	svc := search.NewService(
		catalog.NewLoader(filepath.Join("testdata", "indicators.json")),
		store.NewFactory(store.DefaultIndexConfig()),
		search.WithServiceLogger(logging.Discard()),
	)
	t.Cleanup(func() { _ = svc.Close() })
	require.NoError(t, svc.Reload(context.Background()))
	return svc
}

func TestLoadQueries_TierDefaults(t *testing.T) {
	cfg, err := LoadQueries(filepath.Join("testdata", "queries.yaml"))

	require.NoError(t, err)
	require.NotEmpty(t, cfg.Tier1)
	require.NotEmpty(t, cfg.Tier2)
	require.NotEmpty(t, cfg.Negative)
	assert.Equal(t, 1, cfg.Tier1[0].Tier)
	assert.Equal(t, defaultTier1Top, cfg.Tier1[0].Top)
	assert.Equal(t, 2, cfg.Tier2[0].Tier)
	assert.Equal(t, defaultTier2Top, cfg.Tier2[0].Top)
	assert.Equal(t, 0, cfg.Negative[0].Tier)
}

func TestLoadQueries_MissingFile(t *testing.T) {
	_, err := LoadQueries(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestParseQueries_RequiresExpected(t *testing.T) {
	_, err := ParseQueries([]byte("tier1:\n  - id: T1\n    query: frost\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "T1")
}

func TestParseQueries_InvalidYAML(t *testing.T) {
	_, err := ParseQueries([]byte("tier1: [unterminated"))
	require.Error(t, err)
}

func TestValidator_AllQueriesPass(t *testing.T) {
	// Given: the test catalog and its relevance checks
	cfg, err := LoadQueries(filepath.Join("testdata", "queries.yaml"))
	require.NoError(t, err)
	v := NewValidator(newService(t))

	// When: running every query
	result := v.RunAll(context.Background(), cfg)

	// Then: every tier passes
	for _, tr := range append(append(result.Tier1, result.Tier2...), result.Negative...) {
		assert.True(t, tr.Passed, "%s %q: got %v (error %q)", tr.Spec.ID, tr.Spec.Query, tr.TopResults, tr.Error)
	}
	assert.True(t, result.Passed())
	assert.Equal(t, 8, result.Indicators)
	assert.Contains(t, result.Summary(), "Tier 1:   5/5")
}

func TestValidator_EmptyQueryListsCatalog(t *testing.T) {
	v := NewValidator(newService(t))

	tr := v.RunQuery(context.Background(), QuerySpec{ID: "N", Query: ""})

	assert.True(t, tr.Passed)
	assert.Len(t, tr.TopResults, 8)
	assert.Equal(t, "tg_mean", tr.TopResults[0])
}

func TestValidator_OutsideWindowFails(t *testing.T) {
	v := NewValidator(newService(t))

	tr := v.RunQuery(context.Background(), QuerySpec{
		ID: "T", Query: "frost", Expected: []string{"tg_mean"}, Top: 1, Tier: 1,
	})

	assert.False(t, tr.Passed)
	assert.Equal(t, -1, tr.MatchedAt)
}

type failingBackend struct{}

func (failingBackend) Query(context.Context, string) ([]*search.Result, error) {
	return nil, errors.New("search unavailable")
}

func (failingBackend) Status() search.Status {
	return search.Status{State: search.StateFailed}
}

func TestValidator_ErrorFailsEveryTier(t *testing.T) {
	v := NewValidator(failingBackend{})
	cfg := &QueryConfig{
		Tier1:    []QuerySpec{{ID: "T1", Query: "x", Expected: []string{"a"}, Top: 1, Tier: 1}},
		Negative: []QuerySpec{{ID: "N1", Query: "x"}},
	}

	result := v.RunAll(context.Background(), cfg)

	assert.False(t, result.Passed())
	assert.Equal(t, "search unavailable", result.Tier1[0].Error)
	assert.False(t, result.Negative[0].Passed)
}

func TestCheckExpected(t *testing.T) {
	assert.Equal(t, 1, checkExpected([]string{"a", "B", "c"}, []string{"b", "c"}))
	assert.Equal(t, -1, checkExpected([]string{"a"}, []string{"z"}))
	assert.Equal(t, -1, checkExpected(nil, []string{"z"}))
}
