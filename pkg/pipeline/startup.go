package pipeline

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy bounds the startup rebuild loop.
type RetryPolicy struct {
	// Attempts is the total number of rebuilds tried, at least 1.
	Attempts uint

	// InitialBackoff is the wait after the first failure.
	InitialBackoff time.Duration

	// Multiplier grows the wait after each further failure. Values below 1
	// keep it constant.
	Multiplier float64

	// MaxBackoff caps the wait. Zero means no cap.
	MaxBackoff time.Duration
}

// DefaultRetryPolicy retries five times starting at five seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:       5,
		InitialBackoff: 5 * time.Second,
		Multiplier:     2,
		MaxBackoff:     time.Minute,
	}
}

// Startup rebuilds until one succeeds or the policy is exhausted and returns
// the last result. A rebuild already in progress counts as a failed attempt.
func (c *Coordinator) Startup(ctx context.Context, policy RetryPolicy) RebuildResult {
	attempts := max(policy.Attempts, 1)
	backoff := policy.InitialBackoff

	var result RebuildResult
	for attempt := uint(1); attempt <= attempts; attempt++ {
		result = c.Rebuild(ctx)
		if result.OK() {
			return result
		}

		if attempt == attempts {
			break
		}

		c.logger.Warn("startup rebuild failed, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"backoff", backoff,
			"error", result.Err,
		)

		select {
		case <-ctx.Done():
			result.Err = errors.Join(result.Err, ctx.Err())
			return result
		case <-time.After(backoff):
		}

		backoff = nextBackoff(backoff, policy)
	}

	c.logger.Error("startup rebuild attempts exhausted", "attempts", attempts, "error", result.Err)
	return result
}

func nextBackoff(current time.Duration, policy RetryPolicy) time.Duration {
	if policy.Multiplier > 1 {
		current = time.Duration(float64(current) * policy.Multiplier)
	}
	if policy.MaxBackoff > 0 && current > policy.MaxBackoff {
		current = policy.MaxBackoff
	}
	return current
}
