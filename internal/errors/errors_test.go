package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		code     string
		category Category
		severity Severity
	}{
		{ErrCodeConfigInvalid, CategoryConfig, SeverityError},
		{ErrCodeCatalogNotFound, CategoryIO, SeverityError},
		{ErrCodeCatalogFetch, CategoryNetwork, SeverityWarning},
		{ErrCodeCatalogMalformed, CategoryValidation, SeverityFatal},
		{ErrCodeIndexFailed, CategoryInternal, SeverityFatal},
		{ErrCodeUnavailable, CategoryInternal, SeverityError},
		{"bogus", CategoryInternal, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "msg", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
		})
	}
}

func TestIndError_IsMatchesByCode(t *testing.T) {
	// Given: an error wrapped by fmt.Errorf
	err := fmt.Errorf("load: %w", New(ErrCodeDuplicateID, "duplicate id", nil))

	// Then: errors.Is matches on code alone
	assert.True(t, stderrors.Is(err, Sentinel(ErrCodeDuplicateID)))
	assert.False(t, stderrors.Is(err, Sentinel(ErrCodeRecordInvalid)))
	assert.Equal(t, ErrCodeDuplicateID, GetCode(err))
	assert.True(t, HasCategory(err, CategoryValidation))
}

func TestIndError_UnwrapExposesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := New(ErrCodeCatalogFetch, "fetch catalog", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Error(), ErrCodeCatalogFetch)
}

func TestWrap_NilIsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(New(ErrCodeCatalogMalformed, "bad json", nil)))
	assert.False(t, IsFatal(New(ErrCodeCatalogNotFound, "missing", nil)))
	assert.False(t, IsFatal(stderrors.New("plain")))
}

func TestFormatForCLI_IncludesHintDetailsAndCode(t *testing.T) {
	err := New(ErrCodeCatalogNotFound, "catalog not found", nil).
		WithDetail("source", "indicators.json").
		WithSuggestion("pass --catalog")

	out := FormatForCLI(err)

	assert.Contains(t, out, "Error: catalog not found")
	assert.Contains(t, out, "source: indicators.json")
	assert.Contains(t, out, "Hint: pass --catalog")
	assert.Contains(t, out, "Code: "+ErrCodeCatalogNotFound)
}

func TestFormatForCLI_PlainError(t *testing.T) {
	out := FormatForCLI(stderrors.New("boom"))
	assert.Contains(t, out, "Error: boom")
	assert.Contains(t, out, ErrCodeInternal)
}

func TestFormatForLog(t *testing.T) {
	require.Nil(t, FormatForLog(nil))

	fields := FormatForLog(New(ErrCodeSearchFailed, "search failed", stderrors.New("closed")).
		WithDetail("query", "tas"))
	assert.Equal(t, ErrCodeSearchFailed, fields["error_code"])
	assert.Equal(t, "closed", fields["cause"])
	assert.Equal(t, "tas", fields["query"])
}
