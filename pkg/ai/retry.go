package ai

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// RetryConfig configures the retrying invoker. The generative services this
// module talks to are aggressively rate limited, so the policy throttles
// proactively: every attempt, including the first, is preceded by a base
// wait plus uniform jitter.
type RetryConfig struct {
	MaxAttempts   int           // Total attempt budget (not extra retries)
	BaseWait      time.Duration // Wait before every attempt
	JitterSpan    time.Duration // Uniform jitter in [0, JitterSpan) added to BaseWait
	RateLimitWait time.Duration // Fallback wait when a rate-limit error carries no reset hint
	SafetyMargin  time.Duration // Added on top of a service-provided reset hint
	FailureWait   time.Duration // Wait after non-rate-limit transient failures
}

// DefaultRetryConfig provides the tuned defaults for the hosted model APIs.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:   3,
	BaseWait:      12 * time.Second,
	JitterSpan:    4 * time.Second,
	RateLimitWait: 20 * time.Second,
	SafetyMargin:  5 * time.Second,
	FailureWait:   8 * time.Second,
}

// ProgressFunc receives user-facing status updates while the invoker waits
// between attempts. It must not block.
type ProgressFunc func(label string)

// Invoke calls fn with jittered-backoff retry and rate-limit-aware waits.
// It is the single point where external-service flakiness is absorbed; the
// pipeline stages themselves never retry.
//
// Failure handling per attempt:
//   - fatal errors (ErrFatal) abort immediately, no retry
//   - rate-limit rejections wait for the service's reset hint plus a safety
//     margin (or a fixed fallback), then retry; after the last attempt the
//     error wraps ErrRateLimited
//   - any other failure waits a fixed shorter interval and retries; after
//     the last attempt the error wraps ErrExhaustedRetries
func Invoke[T any](ctx context.Context, cfg RetryConfig, label string, notify ProgressFunc, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if cfg.MaxAttempts <= 0 {
		return zero, fmt.Errorf("%s: %w", label, ErrExhaustedRetries)
	}
	if notify == nil {
		notify = func(string) {}
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		// Proactive throttle before every attempt.
		if err := sleepCtx(ctx, cfg.BaseWait+jitter(cfg.JitterSpan)); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				slog.Info("call succeeded after retry",
					slog.String("stage", label),
					slog.Int("attempts", attempt))
			}
			return result, nil
		}
		lastErr = err

		if IsFatal(err) {
			slog.Error("fatal error, not retrying",
				slog.String("stage", label),
				slog.String("error", err.Error()))
			return zero, err
		}

		if IsRateLimit(err) {
			wait := cfg.RateLimitWait
			if hint, ok := ResetHint(err); ok {
				wait = hint + cfg.SafetyMargin
			}
			if attempt < cfg.MaxAttempts {
				notify(fmt.Sprintf("Rate limited. Waiting %ds... (%s)", int(wait.Seconds()), label))
				slog.Warn("rate limited, backing off",
					slog.String("stage", label),
					slog.Duration("wait", wait),
					slog.Int("attempt", attempt))
				if err := sleepCtx(ctx, wait); err != nil {
					return zero, err
				}
				continue
			}
			return zero, fmt.Errorf("%w after %d attempts (%s): %w", ErrRateLimited, cfg.MaxAttempts, label, err)
		}

		if attempt < cfg.MaxAttempts {
			notify(fmt.Sprintf("Error: %s. Retrying... (%s)", truncate(err.Error(), 40), label))
			slog.Warn("transient error, retrying",
				slog.String("stage", label),
				slog.String("error", err.Error()),
				slog.Int("attempt", attempt))
			if err := sleepCtx(ctx, cfg.FailureWait); err != nil {
				return zero, err
			}
		}
	}

	return zero, fmt.Errorf("%w after %d attempts (%s): %w", ErrExhaustedRetries, cfg.MaxAttempts, label, lastErr)
}

func jitter(span time.Duration) time.Duration {
	if span <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(span)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
