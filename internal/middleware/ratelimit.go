package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store is unavailable.
type FailPolicy int

const (
	// FailOpen lets the request through when Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed answers 503 when Redis is unavailable.
	FailClosed
)

var errNoRateStore = errors.New("redis client is nil")

// RateLimiter enforces fixed-window per-caller limits on write endpoints such
// as voting and commenting.
type RateLimiter struct {
	rdb      *redis.Client
	disabled bool
	policy   FailPolicy
}

// NewRateLimiter creates a limiter. Limits are disabled for the development,
// test and stress profiles.
func NewRateLimiter(rdb *redis.Client, env string, policy FailPolicy) *RateLimiter {
	disabled := false
	switch env {
	case "", "test", "development", "stress":
		disabled = true
	}
	return &RateLimiter{rdb: rdb, disabled: disabled, policy: policy}
}

// Allow increments the window counter for (resource, id) and reports whether
// the caller is still under limit.
func (l *RateLimiter) Allow(ctx context.Context, resource, id string, limit int, window time.Duration) (bool, error) {
	if l.disabled {
		return true, nil
	}
	if l.rdb == nil {
		return false, errNoRateStore
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)
	cnt, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		l.rdb.Expire(ctx, key, window)
	}
	return cnt <= int64(limit), nil
}

// Limit returns middleware allowing `limit` requests per `window` for resource,
// keyed by the authenticated caller or the remote IP.
func (l *RateLimiter) Limit(resource string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid := CallerID(c); uid != 0 {
			id = fmt.Sprintf("user:%d", uid)
		}

		allowed, err := l.Allow(c.UserContext(), resource, id, limit, window)
		if err != nil {
			if l.policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit store unavailable",
					slog.String("resource", resource), slog.String("error", err.Error()))
				return models.RespondWithError(c, fiber.StatusServiceUnavailable,
					errors.New("rate limit unavailable"))
			}
			return c.Next()
		}

		if !allowed {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				errors.New("rate limit exceeded"))
		}
		return c.Next()
	}
}
