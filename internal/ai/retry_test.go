package ai

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestWithRetry_SucceedsFirstTry(t *testing.T) {
	calls := 0
	got, err := WithRetry(context.Background(), fastRetryConfig(), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 1 {
		t.Fatalf("got %q after %d calls, want ok after 1", got, calls)
	}
}

func TestWithRetry_TransientThenSuccess(t *testing.T) {
	calls := 0
	got, err := WithRetry(context.Background(), fastRetryConfig(), func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, &ServiceError{Code: ErrServiceUnavailable, Retryable: true}
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 || calls != 3 {
		t.Fatalf("got %d after %d calls, want 42 after 3", got, calls)
	}
}

func TestWithRetry_ExhaustsRetries(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), fastRetryConfig(), func(ctx context.Context) (int, error) {
		calls++
		return 0, &ServiceError{Code: ErrRateLimited, Retryable: true}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 4 {
		t.Fatalf("expected 4 calls (1 + 3 retries), got %d", calls)
	}
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) || svcErr.Code != ErrRateLimited {
		t.Fatalf("expected rate limited error, got %v", err)
	}
}

func TestWithRetry_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), fastRetryConfig(), func(ctx context.Context) (int, error) {
		calls++
		return 0, &ServiceError{Code: ErrInvalidDocument}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastRetryConfig()
	cfg.InitialDelay = time.Second
	cfg.MaxDelay = time.Second

	calls := 0
	_, err := WithRetry(ctx, cfg, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetryConfig_DelayCapped(t *testing.T) {
	cfg := RetryConfig{InitialDelay: time.Second, MaxDelay: 3 * time.Second, BackoffFactor: 10}
	if d := cfg.delay(0); d != time.Second {
		t.Fatalf("delay(0) = %v, want 1s", d)
	}
	if d := cfg.delay(5); d != 3*time.Second {
		t.Fatalf("delay(5) = %v, want 3s", d)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(errors.New("plain")) {
		t.Fatal("plain errors should be retryable")
	}
	wrapped := errors.Join(errors.New("ctx"), &ServiceError{Code: ErrBadResponse})
	if IsRetryable(wrapped) {
		t.Fatal("wrapped non-retryable service error should not be retryable")
	}
}
