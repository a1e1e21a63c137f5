// Package errors maps domain failures onto the machine-readable error codes
// shared by the HTTP API and the MCP tools.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/abdulachik/threadsmith/internal/db"
	"github.com/abdulachik/threadsmith/internal/generator"
	"github.com/abdulachik/threadsmith/internal/reddit"
)

// ErrorCode is the machine-readable error code in API responses.
type ErrorCode string

const (
	CodeInvalidRequest    ErrorCode = "INVALID_REQUEST"    // 400
	CodeNotFound          ErrorCode = "NOT_FOUND"          // 404
	CodeUpstreamExhausted ErrorCode = "UPSTREAM_EXHAUSTED" // 502
	CodeInternal          ErrorCode = "INTERNAL"           // 500
)

// APIError is a structured error with code, status and message.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Status  int       `json:"-"`
	Message string    `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error.
func NewInvalidRequest(msg string) *APIError {
	return &APIError{Code: CodeInvalidRequest, Status: http.StatusBadRequest, Message: msg}
}

// NewNotFound creates a 404 error.
func NewNotFound(msg string) *APIError {
	return &APIError{Code: CodeNotFound, Status: http.StatusNotFound, Message: msg}
}

// NewUpstreamExhausted creates a 502 error for when every Reddit host failed.
func NewUpstreamExhausted() *APIError {
	return &APIError{
		Code:    CodeUpstreamExhausted,
		Status:  http.StatusBadGateway,
		Message: "Reddit is unavailable from every endpoint; try again later",
	}
}

// NewInternal creates a 500 error.
func NewInternal(err error) *APIError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &APIError{Code: CodeInternal, Status: http.StatusInternalServerError, Message: msg}
}

// FromError maps domain errors onto API errors.
func FromError(err error) *APIError {
	var apiErr *APIError
	switch {
	case stderrors.As(err, &apiErr):
		return apiErr
	case stderrors.Is(err, reddit.ErrInvalidOption),
		stderrors.Is(err, generator.ErrInvalidRequest),
		stderrors.Is(err, generator.ErrMissingAPIKey):
		return NewInvalidRequest(err.Error())
	case stderrors.Is(err, reddit.ErrNotFound), stderrors.Is(err, db.ErrNotFound):
		return NewNotFound(err.Error())
	case stderrors.Is(err, reddit.ErrExhausted):
		return NewUpstreamExhausted()
	default:
		return NewInternal(err)
	}
}

// Is reports whether err maps to the given code.
func Is(err error, code ErrorCode) bool {
	return FromError(err).Code == code
}
