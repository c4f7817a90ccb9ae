package asta

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure classes of an ASTA lookup. Client errors wrap one of them; an
// *APIError unwraps to the class of its status or code.
var (
	ErrNotFound        = errors.New("asta: author or paper not found")
	ErrAuthError       = errors.New("asta: API key missing or rejected")
	ErrRateLimited     = errors.New("asta: too many requests")
	ErrAPIError        = errors.New("asta: request failed")
	ErrNetworkError    = errors.New("asta: service unreachable")
	ErrInvalidResponse = errors.New("asta: unreadable response")
)

// Values of APIError.Code.
const (
	codeNotFound    = "not_found"
	codeAuth        = "auth_error"
	codeRateLimited = "rate_limited"
	codeHTTP        = "api_error"
	codeMCP         = "mcp_error"
)

// APIError is a failed call to the MCP endpoint: either an HTTP status or a
// JSON-RPC error object inside the event stream. AuthorID is set when the
// call was fetching one author's papers.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	AuthorID   string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("asta: %s (status %d, %s)", e.Message, e.StatusCode, e.Code)
	if e.AuthorID != "" {
		msg += " fetching papers of author " + e.AuthorID
	}
	return msg
}

// Unwrap returns the failure class, so errors.Is(err, ErrNotFound) matches a
// 404 or a not_found code.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound || e.Code == codeNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden || e.Code == codeAuth:
		return ErrAuthError
	case e.StatusCode == http.StatusTooManyRequests || e.Code == codeRateLimited:
		return ErrRateLimited
	default:
		return ErrAPIError
	}
}

// IsNotFound reports whether the author or paper does not exist in ASTA.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsAuthError reports whether the API key was missing or rejected.
func IsAuthError(err error) bool { return errors.Is(err, ErrAuthError) }

// IsRateLimited reports whether ASTA throttled the request.
func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }
