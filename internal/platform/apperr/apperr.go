// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error taxonomy for Espy.

It provides a rich error type that bridges low-level storage and upstream
failures with the HTTP responses produced by the API layer.

Taxonomy:

  - NOT_FOUND: a missing document or mapping. A valid outcome, not logged as an error.
  - INVALID_ARGUMENT / VALIDATION_ERROR: malformed caller input.
  - INTERNAL_ERROR: parse failures, unexpected upstream shapes, broken invariants.
  - REQUEST_ERROR: network or transport failure talking to an upstream.

Every error that leaves the service layer should be an [AppError] so that
the HTTP boundary can map it to a status code without guessing.
*/
package apperr

import (
	"errors"
	"net/http"
)

// Machine-readable error codes.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeInternal        = "INTERNAL_ERROR"
	CodeRequest         = "REQUEST_ERROR"
)

// AppError is the canonical error type for the Espy API.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking upstream responses or SQL.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("games/1942") // Returns "games/1942 not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// InvalidArgument creates a 400 [AppError] for input the engine cannot act on,
// such as an unsupported storefront.
func InvalidArgument(msg string) *AppError {
	return &AppError{
		Code:       CodeInvalidArgument,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// RequestError creates a 500 [AppError] for a failed call to an upstream service.
func RequestError(upstream string, cause error) *AppError {
	return &AppError{
		Code:       CodeRequest,
		Message:    "Request to " + upstream + " failed",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}

// IsNotFound reports whether err is a NOT_FOUND outcome.
func IsNotFound(err error) bool { return HasCode(err, CodeNotFound) }

// IsInvalidArgument reports whether err is an INVALID_ARGUMENT failure.
func IsInvalidArgument(err error) bool { return HasCode(err, CodeInvalidArgument) }

// IsRequestError reports whether err is an upstream transport failure.
func IsRequestError(err error) bool { return HasCode(err, CodeRequest) }
