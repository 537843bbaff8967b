// Package retry retries outbound notification calls with exponential backoff
// and jitter. A reply that names its own delay (HTTP Retry-After) is honoured
// up to the configured maximum.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"net/textproto"
	"syscall"
	"time"

	"newsportal/internal/observability/logging"
)

// Config holds the configuration for retry logic.
type Config struct {
	// Name labels log lines ("smtp", "social", "newsroom").
	Name string

	// MaxAttempts counts the first call.
	MaxAttempts int

	InitialDelay time.Duration

	// MaxDelay caps both the backoff and a server-requested Retry-After.
	MaxDelay time.Duration

	Multiplier float64

	// JitterFraction is the fraction of delay to add as random jitter (0.0 to 1.0)
	JitterFraction float64
}

// SMTPConfig is used for the approval email. Only 4xx replies and network
// faults are retried; a 5xx reply is permanent.
func SMTPConfig() Config {
	return Config{
		Name:           "smtp",
		MaxAttempts:    3,
		InitialDelay:   2 * time.Second,
		MaxDelay:       15 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.2,
	}
}

// SocialConfig is used for posts to the external social feed.
func SocialConfig() Config {
	return Config{
		Name:           "social",
		MaxAttempts:    3,
		InitialDelay:   1 * time.Second,
		MaxDelay:       10 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// NewsroomConfig is used for the newsroom Slack webhook, which allows one
// request per second.
func NewsroomConfig() Config {
	return Config{
		Name:           "newsroom",
		MaxAttempts:    2,
		InitialDelay:   5 * time.Second,
		MaxDelay:       30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// WithBackoff calls fn until it succeeds, returns a permanent error, runs out
// of attempts or ctx is done.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	logger := logging.FromContext(ctx).With(slog.String("channel", cfg.Name))
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			if attempt > 1 {
				logger.Info("operation succeeded after retry", slog.Int("attempt", attempt))
			}
			return nil
		}

		if !IsRetryable(lastErr) {
			logger.Warn("non-retryable error, aborting",
				slog.Int("attempt", attempt),
				slog.Any("error", lastErr))
			return lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		wait := delay
		if requested, ok := retryAfter(lastErr); ok {
			wait = min(requested, cfg.MaxDelay)
		}
		logger.Warn("operation failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", cfg.MaxAttempts),
			slog.Duration("delay", wait),
			slog.Any("error", lastErr))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		}

		delay = addJitter(min(time.Duration(float64(delay)*cfg.Multiplier), cfg.MaxDelay), cfg.JitterFraction)
	}

	return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
}

// IsRetryable reports whether err is transient: network timeouts and resets,
// SMTP 4xx replies, and HTTP 408, 429 and 5xx.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	// 421, 450, 451, 452
	var smtpErr *textproto.Error
	if errors.As(err, &smtpErr) {
		return smtpErr.Code >= 400 && smtpErr.Code < 500
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500 ||
			httpErr.StatusCode == http.StatusTooManyRequests ||
			httpErr.StatusCode == http.StatusRequestTimeout
	}
	return false
}

// HTTPError is a non-2xx reply from a webhook or API.
type HTTPError struct {
	// Service names the remote side in the message ("Slack API").
	Service    string
	StatusCode int
	Message    string
	// RetryAfter is the delay the server asked for, zero when absent.
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	prefix := "HTTP"
	if e.Service != "" {
		prefix = e.Service
	}
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s %d: %s (retry after %v)", prefix, e.StatusCode, e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("%s %d: %s", prefix, e.StatusCode, e.Message)
}

func retryAfter(err error) (time.Duration, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter, true
	}
	return 0, false
}

func addJitter(duration time.Duration, jitterFraction float64) time.Duration {
	if jitterFraction <= 0 {
		return duration
	}
	if jitterFraction > 1.0 {
		jitterFraction = 1.0
	}
	// #nosec G404 -- jitter does not need a cryptographic source
	jitter := time.Duration(rand.Float64() * float64(duration) * jitterFraction)
	return duration + jitter
}
