package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
)

// ErrorCode represents standard API error codes.
type ErrorCode string

const (
	// ErrCodeInvalidRequest indicates malformed or invalid request data.
	ErrCodeInvalidRequest ErrorCode = "invalid_request"

	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"

	// ErrCodeInternalError indicates an internal server error.
	ErrCodeInternalError ErrorCode = "internal_error"

	// ErrCodeUpstreamError indicates a failed DNS or endpoint request.
	ErrCodeUpstreamError ErrorCode = "upstream_error"

	// ErrCodeNotConfigured indicates a feature that is disabled by configuration.
	ErrCodeNotConfigured ErrorCode = "not_configured"
)

// APIError represents a structured API error response.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ErrorResponse wraps an APIError for JSON responses.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func NewAPIError(code ErrorCode, message string) APIError {
	return APIError{Code: code, Message: message}
}

// WriteError writes an error response to the HTTP response writer.
func WriteError(w http.ResponseWriter, statusCode int, err APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if encErr := json.NewEncoder(w).Encode(ErrorResponse{Error: err}); encErr != nil {
		log.Debugf("Failed to encode error response: %v", encErr)
	}
}

// WriteInvalidRequest writes a 400 Bad Request error.
func WriteInvalidRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, NewAPIError(ErrCodeInvalidRequest, message))
}

// WriteNotFound writes a 404 Not Found error.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// WriteInternalError writes a 500 Internal Server Error.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}

// WriteDomainError maps an error from the lower layers to a status code.
func WriteDomainError(w http.ResponseWriter, err error) {
	var e *errors.Error
	message := err.Error()
	if stderrors.As(err, &e) {
		message = e.Message
	}

	switch errors.CodeOf(err) {
	case errors.ErrCodeInvalidPath:
		WriteNotFound(w, message)
	case errors.ErrCodeConfig:
		WriteError(w, http.StatusNotImplemented, NewAPIError(ErrCodeNotConfigured, message))
	case errors.ErrCodeDNS, errors.ErrCodeTransport:
		WriteError(w, http.StatusBadGateway, NewAPIError(ErrCodeUpstreamError, err.Error()))
	default:
		log.Errorf("Request failed: %v", err)
		WriteInternalError(w, message)
	}
}
