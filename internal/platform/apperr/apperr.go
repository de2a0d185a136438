// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for the image service.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Taxonomy: One constructor per error kind (permission, validation, not found, mime type,
    upstream fetch, storage, internal).
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError is the canonical error type for the image API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries, S3 responses).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "PERMISSION_DENIED").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
	// Scopes lists the acceptable scopes for PERMISSION_DENIED responses.
	Scopes []string `json:"scopes,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
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
//	apperr.NotFound("Image") // Returns "Image not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// NoMatch creates a 404 [AppError] for a query that matched nothing.
func NoMatch() *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    "No image found for your query",
		HTTPStatus: http.StatusNotFound,
	}
}

// FileMissing creates a 404 [AppError] for a record whose backing file is gone.
//
// It is a consistency fault, reported distinctly from a plain [NotFound].
func FileMissing(cause error) *AppError {
	return &AppError{
		Code:       "FILE_MISSING",
		Message:    "Image exists in database but not in file storage",
		HTTPStatus: http.StatusNotFound,
		Cause:      cause,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// PermissionDenied creates a 403 [AppError] naming every acceptable scope.
//
// Scopes are qualified with namespace ("<service>-<env>") in the message so
// clients can tell exactly which grant is missing.
//
// Example:
//
//	apperr.PermissionDenied("yomira-image-production", []string{"image_delete"})
//	// "missing scope yomira-image-production:image_delete"
func PermissionDenied(namespace string, scopes []string) *AppError {
	qualified := make([]string, len(scopes))
	for i, scope := range scopes {
		qualified[i] = namespace + ":" + scope
	}

	label := "missing scope "
	if len(scopes) > 1 {
		label = "missing scope(s) "
	}

	return &AppError{
		Code:       "PERMISSION_DENIED",
		Message:    label + strings.Join(qualified, " or "),
		HTTPStatus: http.StatusForbidden,
		Scopes:     scopes,
	}
}

// Conflict creates a 409 [AppError] for concurrent modification or duplicates.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// UnsupportedMimeType creates a 400 [AppError] for a file type outside the whitelist.
func UnsupportedMimeType(mimeType string) *AppError {
	return &AppError{
		Code:       "UNSUPPORTED_MIME_TYPE",
		Message:    fmt.Sprintf("The mimetype %q is not supported", mimeType),
		HTTPStatus: http.StatusBadRequest,
	}
}

// UpstreamFetch creates a 400 [AppError] for a URL upload whose source could not be read.
func UpstreamFetch(url string, cause error) *AppError {
	return &AppError{
		Code:       "UPSTREAM_FETCH_ERROR",
		Message:    fmt.Sprintf("The url %s could not be fetched", url),
		HTTPStatus: http.StatusBadRequest,
		Cause:      cause,
	}
}

// # Server Errors (5xx)

// Storage creates a 500 [AppError] for a failed storage backend call.
// The backend error is kept for logging only.
func Storage(cause error) *AppError {
	return &AppError{
		Code:       "STORAGE_ERROR",
		Message:    "The storage backend failed to process the file",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

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
