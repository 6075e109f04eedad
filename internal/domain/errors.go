package domain

import (
	"errors"
	"fmt"
)

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// TransportError is a network failure, a non-2xx response or an undecodable body
type TransportError struct {
	Op         string // "request", "status", "decode"
	StatusCode int    // Set when Op is "status"
	Err        error
}

func (e *TransportError) Error() string {
	if e.Op == "status" {
		return fmt.Sprintf("HTTP error! Status: %d", e.StatusCode)
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) IsRetriable() bool {
	return true
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewStatusError creates a TransportError for an unexpected HTTP status
func NewStatusError(code int) *TransportError {
	return &TransportError{Op: "status", StatusCode: code}
}

// EmptyPayloadError is returned when the response carries no quotes.
// "No change" is not an error; an empty list is.
type EmptyPayloadError struct {
	Field string
}

func (e *EmptyPayloadError) Error() string {
	return "No data received from API"
}

func (e *EmptyPayloadError) IsRetriable() bool {
	return true
}

// ParseError is a malformed numeric field. It is recovered by treating the value as zero.
type ParseError struct {
	Symbol string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return "parse " + e.Symbol + "." + e.Field + " " + fmt.Sprintf("%q", e.Value) + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrTickerClosed is returned by operations on a ticker after Shutdown
	ErrTickerClosed = errors.New("ticker closed")

	// ErrConfigNotFound is returned when configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")
)
