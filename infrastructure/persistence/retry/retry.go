// Package retry re-runs a whole unit of work when the failure is transient:
// an optimistic lock conflict, a deadlock or a lock wait timeout. The
// payment consumer reuses its backoff for redeliveries.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"ordersvc/config"
	"ordersvc/domain/shared"

	mysqlDriver "github.com/go-sql-driver/mysql"
)

// MySQL error numbers worth another attempt.
const (
	mysqlDeadlock        = 1213
	mysqlLockWaitTimeout = 1205
)

type Config struct {
	Enabled       bool
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterEnabled bool

	RetryOnConcurrentModification bool
	RetryOnDeadlock               bool
	RetryOnLockTimeout            bool
	// RetryPredicate marks extra errors as transient.
	RetryPredicate func(error) bool
}

var DefaultConfig = Config{
	Enabled:                       true,
	MaxAttempts:                   3,
	InitialDelay:                  100 * time.Millisecond,
	MaxDelay:                      2 * time.Second,
	BackoffFactor:                 2.0,
	JitterEnabled:                 true,
	RetryOnConcurrentModification: true,
	RetryOnDeadlock:               true,
	RetryOnLockTimeout:            true,
}

// FromAppConfig reads the database.retry section.
func FromAppConfig(appConfig *config.Config) Config {
	rc := appConfig.Database.Retry
	return Config{
		Enabled:                       rc.Enabled,
		MaxAttempts:                   rc.MaxAttempts,
		InitialDelay:                  rc.InitialDelay,
		MaxDelay:                      rc.MaxDelay,
		BackoffFactor:                 rc.BackoffFactor,
		JitterEnabled:                 rc.JitterEnabled,
		RetryOnConcurrentModification: rc.RetryOnConcurrentModification,
		RetryOnDeadlock:               rc.RetryOnDeadlock,
		RetryOnLockTimeout:            rc.RetryOnLockTimeout,
	}
}

// ExponentialBackoffWithJitter returns the pause before attempt+1.
// The jitter spreads the delay over [0.8, 1.2) of its nominal value.
func ExponentialBackoffWithJitter(attempt int, cfg Config) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := float64(cfg.InitialDelay) * math.Pow(max(cfg.BackoffFactor, 1), float64(attempt-1))
	if cfg.MaxDelay > 0 {
		delay = min(delay, float64(cfg.MaxDelay))
	}
	if cfg.JitterEnabled {
		delay *= 0.8 + rand.Float64()*0.4
	}
	return time.Duration(max(delay, 0))
}

type failureKind int

const (
	permanent failureKind = iota
	conflict
	deadlock
	lockTimeout
)

func classify(err error) failureKind {
	if errors.Is(err, shared.ErrConflict) {
		return conflict
	}
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlDeadlock:
			return deadlock
		case mysqlLockWaitTimeout:
			return lockTimeout
		}
		return permanent
	}
	// wrapped driver errors that lost their type still carry the text
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "deadlock"):
		return deadlock
	case strings.Contains(msg, "lock wait timeout"):
		return lockTimeout
	}
	return permanent
}

func IsRetryableError(err error, cfg Config) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if cfg.RetryPredicate != nil && cfg.RetryPredicate(err) {
		return true
	}
	switch classify(err) {
	case conflict:
		return cfg.RetryOnConcurrentModification
	case deadlock:
		return cfg.RetryOnDeadlock
	case lockTimeout:
		return cfg.RetryOnLockTimeout
	}
	return false
}

// ExecuteWithRetry runs fn until it succeeds, fails with a permanent error,
// exhausts MaxAttempts or ctx is done. The last error is returned as is.
func ExecuteWithRetry(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return fn(ctx)
	}

	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts || !IsRetryableError(err, cfg) {
			return err
		}
		if sleepErr := Sleep(ctx, ExponentialBackoffWithJitter(attempt, cfg)); sleepErr != nil {
			return sleepErr
		}
	}
	return err
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
