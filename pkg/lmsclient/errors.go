package lmsclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches a request that was rejected with 401 after it
	// had already been retried with a refreshed token.
	ErrUnauthorized = errors.New("lmsclient: unauthorized")

	// ErrSessionExpired matches every error caused by a failed token refresh.
	// When it is returned the stored session has already been cleared.
	ErrSessionExpired = errors.New("lmsclient: session expired")

	// ErrNotAuthenticated is returned by operations that need a stored session
	// when none is present.
	ErrNotAuthenticated = errors.New("lmsclient: not authenticated")

	errMissingToken   = errors.New("refresh response missing token")
	errSessionCleared = errors.New("session was cleared while the request was in flight")
)

// ============================================================================
// APIError - non-2xx responses from the LMS backend
// ============================================================================

// APIError represents a non-2xx response from the LMS backend.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int `json:"-"`

	// Code is the machine readable error code, when the backend sends one
	Code string `json:"error"`

	// Message is a human-readable description of the error
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match a final 401.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// ============================================================================
// RefreshError - terminal refresh failures
// ============================================================================

// RefreshError is delivered to the request that triggered a refresh and to
// every request queued behind it when the refresh endpoint fails.
type RefreshError struct {
	Err error
}

// Error implements the error interface.
func (e *RefreshError) Error() string {
	return "session refresh failed: " + e.Err.Error()
}

// Unwrap returns the underlying transport or HTTP error.
func (e *RefreshError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrSessionExpired) match any refresh failure.
func (e *RefreshError) Is(target error) bool { return target == ErrSessionExpired }

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response body into an *APIError.
// Returns nil if the status is 2xx.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp struct {
		Error   string `json:"error"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && (errResp.Error != "" || errResp.Code != "") {
		code := errResp.Error
		if code == "" {
			code = errResp.Code
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       code,
			Message:    errResp.Message,
		}
	}

	// Fallback: create generic error from status code
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}
}
