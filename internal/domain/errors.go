package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrNotLoggedIn indicates no credentials are stored
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrSessionExpired indicates the refresh token was rejected and the user must log in again
	ErrSessionExpired = errors.New("session expired")

	// ErrServerOffline indicates the backend or catalog is unreachable
	ErrServerOffline = errors.New("server is unreachable")

	// ErrUnknownMediaKind indicates a media kind other than movie or tv
	ErrUnknownMediaKind = errors.New("unknown media kind")

	// ErrProfileNotFound indicates the profile id is not on the account
	ErrProfileNotFound = errors.New("profile not found")
)

// HTTPError is a non-2xx response that survived retry policy.
type HTTPError struct {
	Method  string
	URL     string
	Status  int
	Payload []byte
}

func (e *HTTPError) Error() string {
	if detail := e.Detail(); detail != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Status, detail)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Status)
}

// Detail extracts a human-readable message from the payload. The backend
// uses "detail", "error" or "message"; the catalog uses "status_message".
func (e *HTTPError) Detail() string {
	if len(e.Payload) == 0 {
		return ""
	}
	var body map[string]any
	if err := json.Unmarshal(e.Payload, &body); err != nil {
		return ""
	}
	for _, k := range []string{"detail", "error", "message", "status_message"} {
		if s, ok := body[k].(string); ok && s != "" {
			return s
		}
	}
	// DRF validation errors: {"field": ["msg", ...]}
	for k, v := range body {
		if list, ok := v.([]any); ok && len(list) > 0 {
			if s, ok := list[0].(string); ok {
				return strings.TrimSpace(k + ": " + s)
			}
		}
	}
	return ""
}

// IsStatus reports whether err is an HTTPError with the given status.
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == status
}

// AuthExpiredError is returned when a 401 could not be recovered by refreshing.
// It wraps the original 401 and the refresh failure.
type AuthExpiredError struct {
	Original *HTTPError
	Cause    error
}

func (e *AuthExpiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: refresh failed: %v", ErrSessionExpired, e.Cause)
	}
	return ErrSessionExpired.Error()
}

func (e *AuthExpiredError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Original != nil {
		errs = append(errs, e.Original)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func (e *AuthExpiredError) Is(target error) bool {
	return target == ErrSessionExpired
}
