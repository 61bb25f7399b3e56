package storeapi

import (
	"errors"
	"fmt"
)

// ErrAuthentication is matched by every error caused by rejected
// credentials: a failed sign-in or a call made with an invalid token.
var ErrAuthentication = errors.New("authentication failed")

// APIError is a non-success answer from the remote API.
type APIError struct {
	Path       string
	StatusCode int
	Message    string
	// Payload is the decoded error body, nil when it was not JSON.
	Payload map[string]any
	// Auth marks credential rejections.
	Auth bool
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.StatusCode)
}

// Unwrap exposes ErrAuthentication for credential rejections.
func (e *APIError) Unwrap() error {
	if e.Auth {
		return ErrAuthentication
	}
	return nil
}

// IsAuthError reports whether err was caused by rejected credentials.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// UserMessage returns a message suitable for display. Credential rejections
// get a fixed wording so they read differently from transport failures.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if IsAuthError(err) {
		return "Wrong email or password."
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Network error, please try again."
}
