package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ppl-hub/practicum/internal/shared"
)

// Throttle limits repeated failed logins per username.
type Throttle interface {
	Check(ctx context.Context, login string) error
	Fail(ctx context.Context, login string)
	Reset(ctx context.Context, login string)
}

// RedisThrottle counts failures in Redis with a fixed lockout window.
// Redis errors fail open and are logged as warnings.
type RedisThrottle struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
	logger      *slog.Logger
}

// NewRedisThrottle constructs a RedisThrottle.
func NewRedisThrottle(client *redis.Client, maxAttempts int, window time.Duration, logger *slog.Logger) *RedisThrottle {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisThrottle{client: client, maxAttempts: int64(maxAttempts), window: window, logger: logger}
}

func throttleKey(login string) string {
	return "practicum:login:fail:" + strings.ToLower(strings.TrimSpace(login))
}

// Check returns ErrTooManyAttempts once the failure count reaches the limit.
func (t *RedisThrottle) Check(ctx context.Context, login string) error {
	count, err := t.client.Get(ctx, throttleKey(login)).Int64()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		t.logger.Warn("login throttle unavailable", slog.Any("error", err))
		return nil
	}
	if count >= t.maxAttempts {
		return shared.ErrTooManyAttempts
	}
	return nil
}

// Fail records a failed attempt. The window starts at the first failure; the
// key and its expiry are created together so a counter never outlives it.
func (t *RedisThrottle) Fail(ctx context.Context, login string) {
	key := throttleKey(login)
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, t.window)
		pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		t.logger.Warn("login throttle record failure", slog.Any("error", err))
	}
}

// Reset clears the failure counter after a successful login.
func (t *RedisThrottle) Reset(ctx context.Context, login string) {
	if err := t.client.Del(ctx, throttleKey(login)).Err(); err != nil {
		t.logger.Warn("login throttle reset", slog.Any("error", err))
	}
}

type noopThrottle struct{}

func (noopThrottle) Check(context.Context, string) error { return nil }
func (noopThrottle) Fail(context.Context, string) {}
func (noopThrottle) Reset(context.Context, string) {}
