package database

import (
	"math"
	"time"

	"github.com/BradenHooton/dbconn/internal/config"
)

// RetryPolicy bounds connection attempts. After the n-th failed attempt the
// manager waits Unit * Base^(n-1) before trying again, so attempt 1 is never
// delayed and the final attempt is never followed by a wait.
type RetryPolicy struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
	Base           float64
	Unit           time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    5,
		AttemptTimeout: 10 * time.Second,
		Base:           1.5,
		Unit:           time.Second,
	}
}

func RetryPolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    cfg.MaxAttempts,
		AttemptTimeout: cfg.AttemptTimeout,
		Base:           cfg.BackoffBase,
		Unit:           cfg.BackoffUnit,
	}
}

// Backoff returns the wait that follows the n-th failed attempt (1-based).
func (p RetryPolicy) Backoff(failed int) time.Duration {
	if failed < 1 {
		return 0
	}
	return time.Duration(float64(p.Unit) * math.Pow(p.Base, float64(failed-1)))
}
