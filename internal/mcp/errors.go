// Package mcp exposes the indicator search as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"

	inderrors "github.com/Aman-CERP/indsearch/internal/errors"
)

// Custom MCP error codes for indsearch.
const (
	// ErrCodeUnavailable indicates the catalog is not loaded.
	ErrCodeUnavailable = -32001

	// ErrCodeCatalogFetch indicates the remote catalog could not be fetched.
	ErrCodeCatalogFetch = -32002

	// ErrCodeTimeout indicates the request timed out or was cancelled.
	ErrCodeTimeout = -32003

	// Standard JSON-RPC error codes.
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// ErrToolNotFound indicates the requested tool does not exist.
var ErrToolNotFound = errors.New("tool not found")

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	var indErr *inderrors.IndError
	if errors.As(err, &indErr) {
		return mapIndError(indErr)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	case errors.Is(err, ErrToolNotFound):
		return &MCPError{Code: ErrCodeMethodNotFound, Message: "Tool not found."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
	}
}

// NewInvalidParamsError creates an error for invalid parameters.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// NewMethodNotFoundError creates an error for unknown tools.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Tool '%s' not found.", name),
	}
}

func mapIndError(ie *inderrors.IndError) *MCPError {
	message := ie.Message
	if ie.Suggestion != "" {
		message = fmt.Sprintf("%s. %s", ie.Message, ie.Suggestion)
	}

	switch ie.Code {
	case inderrors.ErrCodeUnavailable, inderrors.ErrCodeEngineClosed:
		return &MCPError{Code: ErrCodeUnavailable, Message: message}
	case inderrors.ErrCodeInvalidQuery:
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	}

	switch ie.Category {
	case inderrors.CategoryNetwork:
		return &MCPError{Code: ErrCodeCatalogFetch, Message: message}
	case inderrors.CategoryValidation:
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}
