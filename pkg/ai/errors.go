package ai

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Package ai provides common types and utilities shared by the generative
// capability providers. It defines standard error classification, retry
// configuration, and the retrying invoker used by the pipeline stages.

// Common error types used across capability providers
var (
	// ErrRecoverable indicates a temporary failure that may succeed if retried.
	// Examples: network timeout, rate limiting, temporary service unavailability.
	ErrRecoverable = errors.New("recoverable provider error")

	// ErrFatal indicates a permanent failure that will not succeed if retried.
	// Examples: invalid API key, unsupported format, malformed request.
	ErrFatal = errors.New("fatal provider error")

	// ErrExhaustedRetries is returned when the retry attempt budget is spent
	// without a successful call.
	ErrExhaustedRetries = errors.New("exhausted retry attempts")

	// ErrRateLimited is returned when the attempt budget is spent and the
	// final failure was a rate-limit rejection from the service.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// IsRecoverable checks if an error is recoverable and should be retried.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrRecoverable)
}

// IsFatal checks if an error is fatal and should not be retried.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatal)
}

// RetryableError wraps an underlying error with retry classification.
type RetryableError struct {
	Underlying error
	Retryable  bool
	Message    string
}

func (e *RetryableError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Underlying.Error()
}

func (e *RetryableError) Unwrap() error {
	if e.Retryable {
		return ErrRecoverable
	}
	return ErrFatal
}

// NewRecoverableError creates a recoverable error with context.
func NewRecoverableError(underlying error, message string) error {
	return &RetryableError{
		Underlying: underlying,
		Retryable:  true,
		Message:    message,
	}
}

// NewFatalError creates a fatal error with context.
func NewFatalError(underlying error, message string) error {
	return &RetryableError{
		Underlying: underlying,
		Retryable:  false,
		Message:    message,
	}
}

var resetHintPattern = regexp.MustCompile(`resets in ~?(\d+)s`)

// IsRateLimit reports whether an error looks like a rate-limit rejection.
// Services phrase this inconsistently, so classification is by substring.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "throttled") || strings.Contains(msg, "rate limit")
}

// ResetHint extracts a "resets in ~Ns" wait hint from a rate-limit error
// message. The second return value is false when no hint is present.
func ResetHint(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}
	m := resetHintPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0, false
	}
	secs, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}
