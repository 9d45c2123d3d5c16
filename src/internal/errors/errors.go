// Package errors provides coded domain errors for botiplist.
//
// Every failure that crosses a package boundary carries an ErrorCode, so
// callers (the CLI, the HTTP API) can map it to an exit status or an HTTP
// response without string matching.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeConfig indicates a configuration or construction error.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeTransport indicates a failed HTTP request to an endpoint.
	ErrCodeTransport ErrorCode = "TRANSPORT_ERROR"

	// ErrCodeParse indicates an endpoint payload that could not be used.
	ErrCodeParse ErrorCode = "PARSE_ERROR"

	// ErrCodeEmptyResult indicates that assembly produced no lines.
	ErrCodeEmptyResult ErrorCode = "EMPTY_RESULT"

	// ErrCodeInvalidPath indicates an artifact path that cannot be read.
	ErrCodeInvalidPath ErrorCode = "INVALID_PATH"

	// ErrCodeDate indicates that artifact age could not be determined.
	ErrCodeDate ErrorCode = "DATE_ERROR"

	// ErrCodeFirewall indicates an ipset or iptables failure.
	ErrCodeFirewall ErrorCode = "FIREWALL_ERROR"

	// ErrCodeDNS indicates a failed crawler verification lookup.
	ErrCodeDNS ErrorCode = "DNS_ERROR"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error represents a domain-specific error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// IsCode reports whether any error in err's chain is a domain error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// CodeOf returns the code of the outermost domain error in err's chain,
// or ErrCodeInternal if there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

func NewTransportError(message string, cause error) *Error {
	return Wrap(ErrCodeTransport, message, cause)
}

func NewParseError(message string, cause error) *Error {
	return Wrap(ErrCodeParse, message, cause)
}

func NewEmptyResultError(message string) *Error {
	return New(ErrCodeEmptyResult, message)
}

// NewInvalidPathError reports an unreadable artifact. The message is the one
// shown to users verbatim.
func NewInvalidPathError(path string, cause error) *Error {
	return Wrap(ErrCodeInvalidPath, "File not readable: "+path, cause)
}

func NewDateError(message string, cause error) *Error {
	return Wrap(ErrCodeDate, message, cause)
}

func NewFirewallError(message string, cause error) *Error {
	return Wrap(ErrCodeFirewall, message, cause)
}

func NewDNSError(message string, cause error) *Error {
	return Wrap(ErrCodeDNS, message, cause)
}

func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCodeInternal, message, cause)
}
