package playstore

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid playstore configuration")
	// ErrMissingCredentials indicates neither credentials nor an auth token were supplied
	ErrMissingCredentials = errors.New("username and password or an auth token are required")
	// ErrTooManyPackages indicates a bulk lookup above MaxBulkPackages
	ErrTooManyPackages = errors.New("too many packages for a single bulk lookup")
)

// LoginError indicates the login handshake was rejected or malformed.
// Body holds the raw server response for diagnostics.
type LoginError struct {
	StatusCode int
	Reason     string
	Body       string
}

// Error implements the error interface
func (e *LoginError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("login failed: status %d: %s", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("login failed: status %d: %s", e.StatusCode, e.Body)
}

// RequestError represents a non-200 response from an FDFE endpoint
type RequestError struct {
	Message    string
	StatusCode int
	Header     http.Header
}

// Error implements the error interface
func (e *RequestError) Error() string {
	return fmt.Sprintf("playstore request failed: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound checks if the error indicates a not found response
func (e *RequestError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an expired or rejected
// auth token. Callers typically force a new login and retry.
func (e *RequestError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// AppNotFreeError is returned when acquiring an item requires payment.
type AppNotFreeError struct {
	Package string
	Price   string
}

// Error implements the error interface
func (e *AppNotFreeError) Error() string {
	return fmt.Sprintf("app %s is not free, costs: %s", e.Package, e.Price)
}

// ProtocolError indicates a structurally invalid server artifact: a
// malformed public key blob, a missing delivery field or a malformed
// cookie.
type ProtocolError struct {
	Reason string
}

// Error implements the error interface
func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Reason
}

// IndexError is returned for an out-of-range additional file index.
type IndexError struct {
	Index int
	Len   int
}

// Error implements the error interface
func (e *IndexError) Error() string {
	return fmt.Sprintf("additional file index %d out of range [0,%d)", e.Index, e.Len)
}
