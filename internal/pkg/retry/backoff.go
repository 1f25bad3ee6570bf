package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/piresc/ukdrive/internal/pkg/logger"
)

// RetryableFunc represents a function that can be retried
type RetryableFunc func(ctx context.Context) error

// Config holds retry configuration
type Config struct {
	MaxRetries    int              // Maximum number of retry attempts
	BaseDelay     time.Duration    // Delay before the first retry
	MaxDelay      time.Duration    // Upper bound for any delay
	Multiplier    float64          // Exponential backoff multiplier, ignored when Linear
	Linear        bool             // Grow the delay by BaseDelay per attempt
	Jitter        bool             // Add up to 10% randomization
	RetryableFunc func(error) bool // Function to determine if error is retryable
}

// DefaultConfig returns an exponential configuration for connecting to
// infrastructure at startup
func DefaultConfig() Config {
	return Config{
		MaxRetries: 5,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
	}
}

// AcquisitionConfig is the position acquisition timeout policy:
// min(2s*attempt, 8s), three retries
func AcquisitionConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   8 * time.Second,
		Linear:     true,
	}
}

// Backoff returns the delay before retry number attempt, counting from 1
func (c Config) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	var delay float64
	if c.Linear {
		delay = float64(c.BaseDelay) * float64(attempt)
	} else {
		delay = float64(c.BaseDelay) * math.Pow(c.Multiplier, float64(attempt-1))
	}
	if c.MaxDelay > 0 && delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}
	if c.Jitter {
		delay += delay * 0.1 * rand.Float64()
	}
	return time.Duration(delay)
}

// Exhausted reports whether attempt is past the retry budget
func (c Config) Exhausted(attempt int) bool {
	return attempt > c.MaxRetries
}

// Retrier runs a function until it succeeds or the budget is spent
type Retrier struct {
	config Config
}

// New creates a new retrier with the given configuration
func New(config Config) *Retrier {
	return &Retrier{config: config}
}

// NewWithDefaults creates a new retrier with default configuration
func NewWithDefaults() *Retrier {
	return New(DefaultConfig())
}

// Execute executes the function with retry logic
func (r *Retrier) Execute(ctx context.Context, fn RetryableFunc) error {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				logger.Info("Function succeeded after retries",
					logger.Int("attempt", attempt+1))
			}
			return nil
		}
		lastErr = err

		if r.config.RetryableFunc != nil && !r.config.RetryableFunc(err) {
			return err
		}
		if attempt == r.config.MaxRetries {
			break
		}

		delay := r.config.Backoff(attempt + 1)
		logger.Debug("Function failed, retrying",
			logger.Err(err),
			logger.Int("attempt", attempt+1),
			logger.Duration("delay", delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("retry limit exceeded after %d attempts: %w", r.config.MaxRetries+1, lastErr)
}
