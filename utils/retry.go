package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"
)

// ErrTransient marks an error as retryable. Wrap with
// fmt.Errorf("...: %w", utils.ErrTransient) to force a retry.
var ErrTransient = errors.New("transient error")

// IsTransient reports whether err looks like a recoverable network failure.
// Permanent errors (bad input, parse failures) must not be retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

// RetryConfig holds the parameters for the retry strategy.
type RetryConfig struct {
	MaxAttempts int           // default 3
	Delay       time.Duration // fixed delay between attempts, default 2s
	Logger      *Logger
}

// DefaultRetry returns the standard policy: 3 attempts, 2s apart.
func DefaultRetry(logger *Logger) *RetryConfig {
	return &RetryConfig{MaxAttempts: 3, Delay: 2 * time.Second, Logger: logger}
}

// Do executes fn, retrying transient failures with a fixed delay.
// Non-transient failures propagate immediately without consuming a retry.
// After MaxAttempts consecutive transient failures the last error is
// wrapped and returned to the caller.
func (r *RetryConfig) Do(operationName string, fn func() error) error {
	attempts := r.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !IsTransient(lastErr) {
			return lastErr
		}

		if attempt < attempts {
			r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v — retrying in %v",
				operationName, attempt, attempts, lastErr, r.Delay)
			time.Sleep(r.Delay)
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, lastErr)
}
