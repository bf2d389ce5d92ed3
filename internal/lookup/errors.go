package lookup

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Common errors returned by lookup clients. Callers branch on these:
// NotFound means try the next fallback, Unreachable and Malformed abort the
// current strategy.
var (
	// ErrNotFound indicates the source answered and had no matching work.
	ErrNotFound = errors.New("no matching work found")

	// ErrUnreachable indicates a network or transport failure, including
	// timeouts. The lookup result is unknown, not empty.
	ErrUnreachable = errors.New("metadata source unreachable")

	// ErrMalformed indicates the response could not be mapped into a
	// bibliographic record.
	ErrMalformed = errors.New("malformed response from metadata source")

	// ErrRateLimited indicates the source rejected the request for quota.
	ErrRateLimited = errors.New("metadata source rate limit exceeded")
)

// APIError carries the HTTP-level detail of a failed lookup.
type APIError struct {
	Source     string // "crossref" or "semanticscholar"
	StatusCode int
	Message    string
	Payload    []byte // response body, kept for diagnosing contract violations
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Source, e.StatusCode, e.Message)
}

// IsNotFound reports whether the error indicates an empty, valid result.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// IsUnreachable reports whether the error indicates a transport failure.
func IsUnreachable(err error) bool {
	if errors.Is(err, ErrUnreachable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsMalformed reports whether the error indicates a response that violated
// the source's wire contract.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}
