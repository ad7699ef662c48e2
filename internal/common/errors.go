// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Decision errors.
	ErrInvalidOutcome = errors.New("invalid outcome")
	ErrItemOwnership  = errors.New("item does not belong to user")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ConfigurationError means no usable vendor credential or base URL could be resolved.
// It is never retried.
type ConfigurationError struct {
	Provider string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error for provider %s: %s", e.Provider, e.Reason)
}

// Is lets errors.Is(err, ErrMissingConfig) match configuration errors.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrMissingConfig
}

// QuotaScope identifies which ceiling was reached.
type QuotaScope string

// Quota scopes.
const (
	QuotaScopeSystem QuotaScope = "system"
	QuotaScopeUser   QuotaScope = "user"
)

// QuotaExceededError is returned when a monthly spend ceiling has been reached.
// Used and Limit carry the figures so callers can offer a bring-your-own-key path.
type QuotaExceededError struct {
	Scope  QuotaScope
	Used   float64
	Limit  float64
	UserID int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s monthly AI limit reached: $%.4f used of $%.2f", e.Scope, e.Used, e.Limit)
}

// VendorCallError wraps a network failure or non-2xx reply from a vendor.
type VendorCallError struct {
	Err        error
	Provider   string
	StatusCode int
}

func (e *VendorCallError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *VendorCallError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure may clear on its own: a network
// error, a throttled request or a server-side error. Rejected requests and
// bad credentials are not transient.
func (e *VendorCallError) Transient() bool {
	return e.StatusCode == 0 ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError
}

// ResponseParseError means the vendor replied but the content could not be used.
// Raw holds the reply for diagnostics.
type ResponseParseError struct {
	Err error
	Raw string
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("failed to parse vendor response: %v", e.Err)
}

func (e *ResponseParseError) Unwrap() error {
	return e.Err
}

// InvalidAnswerError flags an answer value the strategy has no entry for.
// The scoring engine treats it as a zero contribution.
type InvalidAnswerError struct {
	Dimension string
	Value     string
}

func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("unknown answer %q for dimension %s", e.Value, e.Dimension)
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable reports whether a failed vendor call is worth another attempt.
// An explicit RetryableError wins; otherwise rate limits, deadlines and
// transient vendor failures are retryable.
func IsRetryable(err error) bool {
	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	if errors.Is(err, ErrRateLimit) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var vendorErr *VendorCallError
	return errors.As(err, &vendorErr) && vendorErr.Transient()
}
