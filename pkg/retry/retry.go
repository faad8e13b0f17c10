package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
	"syscall"
	"time"
)

type RetryPolicy interface {
	Execute(func() error) error
	ExecuteContext(ctx context.Context, fn func(context.Context) error) error
}

type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64

	// Retryable decides whether a failed attempt is worth repeating.
	// IsTransient is used when nil.
	Retryable func(error) bool
	// OnRetry runs before each wait, with the attempt that just failed.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultConfig suits dependencies that may still be booting next to the
// app: five attempts spread over roughly three seconds.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 5,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Multiplier:  2.0,
	}
}

// ExponentialBackoff retries with exponential delay between attempts.
type ExponentialBackoff struct {
	config *Config
}

// NewExponentialBackoff applies defaults when config is nil and fills any
// zero fields from DefaultConfig.
func NewExponentialBackoff(config *Config) *ExponentialBackoff {
	defaults := DefaultConfig()
	if config == nil {
		return &ExponentialBackoff{config: defaults}
	}

	c := *config
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaults.MaxAttempts
	}
	if c.Multiplier < 1 {
		c.Multiplier = defaults.Multiplier
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = defaults.MaxDelay
	}
	return &ExponentialBackoff{config: &c}
}

func (eb *ExponentialBackoff) Execute(fn func() error) error {
	return eb.ExecuteContext(context.Background(), func(context.Context) error { return fn() })
}

// ExecuteContext stops early when ctx is done, returning ctx's error wrapped
// around the last failure.
func (eb *ExponentialBackoff) ExecuteContext(ctx context.Context, fn func(context.Context) error) error {
	retryable := eb.config.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	var lastErr error
	for attempt := 1; attempt <= eb.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return joinContextErr(err, lastErr)
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == eb.config.MaxAttempts || !retryable(err) {
			break
		}

		delay := eb.delay(attempt)
		if eb.config.OnRetry != nil {
			eb.config.OnRetry(attempt, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return joinContextErr(ctx.Err(), lastErr)
		case <-timer.C:
		}
	}

	if !retryable(lastErr) {
		return lastErr
	}

	return &MaxRetriesExceededError{
		LastError:   lastErr,
		MaxAttempts: eb.config.MaxAttempts,
	}
}

func (eb *ExponentialBackoff) delay(attempt int) time.Duration {
	d := float64(eb.config.BaseDelay) * math.Pow(eb.config.Multiplier, float64(attempt-1))
	if d > float64(eb.config.MaxDelay) {
		return eb.config.MaxDelay
	}
	return time.Duration(d)
}

func joinContextErr(ctxErr, lastErr error) error {
	if lastErr == nil {
		return ctxErr
	}
	return fmt.Errorf("%w (last error: %v)", ctxErr, lastErr)
}

var transientMessages = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"timeout",
	"temporary failure",
	"the database system is starting up",
	"service unavailable",
	"too many requests",
}

// IsTransient reports whether err looks like a dependency that is not ready
// yet, as opposed to bad credentials or a malformed address.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientMessages {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// MaxRetriesExceededError indicates that all retry attempts were exhausted.
type MaxRetriesExceededError struct {
	LastError   error
	MaxAttempts int
}

func (e *MaxRetriesExceededError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.MaxAttempts, e.LastError)
}

func (e *MaxRetriesExceededError) Unwrap() error {
	return e.LastError
}

func IsMaxRetriesExceeded(err error) bool {
	var maxRetriesErr *MaxRetriesExceededError
	return errors.As(err, &maxRetriesErr)
}
