// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package zotero

import (
	"errors"
	"fmt"
)

// Common errors returned by the Zotero client.
var (
	// ErrNotConfigured indicates missing API key or library ID.
	ErrNotConfigured = errors.New("zotero credentials not configured")

	// ErrAuthError indicates a rejected or under-privileged API key.
	ErrAuthError = errors.New("zotero authentication error")

	// ErrRateLimited indicates the server asked the client to back off.
	ErrRateLimited = errors.New("zotero rate limit exceeded")

	// ErrInvalidResponse indicates a response body that could not be decoded.
	ErrInvalidResponse = errors.New("invalid response from zotero")

	// ErrCreateFailed indicates the server rejected an item in a write request.
	ErrCreateFailed = errors.New("zotero rejected item")
)

// APIError represents a non-2xx response from the Zotero Web API.
type APIError struct {
	StatusCode int
	Message    string
	Path       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("zotero API error (status %d) on %s: %s", e.StatusCode, e.Path, e.Message)
}

// IsAuthError returns true if the error indicates an authentication problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
