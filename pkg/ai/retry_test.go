package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
)

// fast removes all waits so the budget logic can be tested in isolation.
var fast = RetryConfig{MaxAttempts: 3}

func TestInvokeSucceedsFirstTry(t *testing.T) {
	is := is.New(t)
	calls := 0
	got, err := Invoke(context.Background(), fast, "test", nil, func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	is.NoErr(err)
	is.Equal(got, "ok")
	is.Equal(calls, 1)
}

func TestInvokeRetriesTransientErrors(t *testing.T) {
	is := is.New(t)
	calls := 0
	got, err := Invoke(context.Background(), fast, "test", nil, func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("flaky")
		}
		return 42, nil
	})
	is.NoErr(err)
	is.Equal(got, 42)
	is.Equal(calls, 3)
}

func TestInvokeExhaustsBudget(t *testing.T) {
	is := is.New(t)
	calls := 0
	_, err := Invoke(context.Background(), fast, "test", nil, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("always broken")
	})
	is.True(errors.Is(err, ErrExhaustedRetries))
	is.Equal(calls, fast.MaxAttempts)
}

func TestInvokeStopsOnFatal(t *testing.T) {
	is := is.New(t)
	calls := 0
	_, err := Invoke(context.Background(), fast, "test", nil, func(ctx context.Context) (int, error) {
		calls++
		return 0, NewFatalError(errors.New("bad credentials"), "invalid API token")
	})
	is.True(errors.Is(err, ErrFatal))
	is.Equal(calls, 1)
}

func TestInvokeRateLimitExhaustion(t *testing.T) {
	is := is.New(t)
	var labels []string
	notify := func(label string) { labels = append(labels, label) }

	calls := 0
	_, err := Invoke(context.Background(), fast, "Voice Synthesis", notify, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("request throttled; resets in ~0s")
	})
	is.True(errors.Is(err, ErrRateLimited))
	is.Equal(calls, fast.MaxAttempts)

	// One wait notification per non-final attempt.
	is.Equal(len(labels), fast.MaxAttempts-1)
}

func TestInvokeHonorsCancellation(t *testing.T) {
	is := is.New(t)
	cfg := RetryConfig{MaxAttempts: 3, BaseWait: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Invoke(ctx, cfg, "test", nil, func(ctx context.Context) (int, error) {
		calls++
		return 0, nil
	})
	is.True(errors.Is(err, context.Canceled))
	is.Equal(calls, 0)
}

func TestInvokeZeroBudget(t *testing.T) {
	is := is.New(t)
	_, err := Invoke(context.Background(), RetryConfig{}, "test", nil, func(ctx context.Context) (int, error) {
		t.Fatal("fn must not be called")
		return 0, nil
	})
	is.True(errors.Is(err, ErrExhaustedRetries))
}
