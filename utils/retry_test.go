package utils

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func newTestRetry(attempts int) *RetryConfig {
	return &RetryConfig{MaxAttempts: attempts, Delay: time.Millisecond, Logger: NewLogger()}
}

func TestRetryExhaustion(t *testing.T) {
	r := newTestRetry(3)

	calls := 0
	err := r.Do("always-down", func() error {
		calls++
		return fmt.Errorf("connection dropped: %w", ErrTransient)
	})

	if calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", calls)
	}
	if err == nil {
		t.Fatal("expected error after exhausting retries, got nil")
	}
	if !errors.Is(err, ErrTransient) {
		t.Errorf("final error should wrap the last failure, got: %v", err)
	}
}

func TestRetrySucceedsMidway(t *testing.T) {
	r := newTestRetry(3)

	calls := 0
	err := r.Do("flaky", func() error {
		calls++
		if calls < 2 {
			return fmt.Errorf("timeout: %w", ErrTransient)
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success on second attempt, got: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestRetryPermanentErrorNotRetried(t *testing.T) {
	r := newTestRetry(3)
	permanent := errors.New("malformed input")

	calls := 0
	err := r.Do("bad-input", func() error {
		calls++
		return permanent
	})

	if calls != 1 {
		t.Errorf("permanent error must not be retried, got %d attempts", calls)
	}
	if !errors.Is(err, permanent) {
		t.Errorf("expected the permanent error back unchanged, got: %v", err)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"wrapped marker", fmt.Errorf("x: %w", ErrTransient), true},
		{"plain error", errors.New("parse failure"), false},
	}

	for _, tt := range tests {
		if got := IsTransient(tt.err); got != tt.want {
			t.Errorf("IsTransient(%s) = %v; want %v", tt.name, got, tt.want)
		}
	}
}
