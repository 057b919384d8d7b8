// Package errors provides structured error handling for indsearch.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (catalog file)
//   - 3XX: Network errors (remote catalog)
//   - 4XX: Validation errors (catalog records, queries)
//   - 5XX: Internal errors (index, engine, rendering)
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file I/O errors.
	CategoryIO Category = "IO"
	// CategoryNetwork indicates network-related errors.
	CategoryNetwork Category = "NETWORK"
	// CategoryValidation indicates malformed input.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeCatalogNotFound = "ERR_201_CATALOG_NOT_FOUND"
	ErrCodeCatalogRead     = "ERR_202_CATALOG_READ"

	// Network errors (300-399)
	ErrCodeCatalogFetch  = "ERR_301_CATALOG_FETCH"
	ErrCodeCatalogStatus = "ERR_302_CATALOG_STATUS"

	// Validation errors (400-499)
	ErrCodeCatalogMalformed = "ERR_401_CATALOG_MALFORMED"
	ErrCodeRecordInvalid    = "ERR_402_RECORD_INVALID"
	ErrCodeDuplicateID      = "ERR_403_DUPLICATE_ID"
	ErrCodeInvalidQuery     = "ERR_404_INVALID_QUERY"

	// Internal errors (500-599)
	ErrCodeInternal      = "ERR_501_INTERNAL"
	ErrCodeIndexFailed   = "ERR_502_INDEX_FAILED"
	ErrCodeSearchFailed  = "ERR_503_SEARCH_FAILED"
	ErrCodeAlreadyLoaded = "ERR_504_ALREADY_LOADED"
	ErrCodeRenderFailed  = "ERR_505_RENDER_FAILED"
	ErrCodeEngineClosed  = "ERR_506_ENGINE_CLOSED"
	ErrCodeUnavailable   = "ERR_507_SEARCH_UNAVAILABLE"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeCatalogMalformed, ErrCodeIndexFailed:
		return SeverityFatal
	case ErrCodeCatalogFetch, ErrCodeCatalogStatus:
		return SeverityWarning
	}
	return SeverityError
}
