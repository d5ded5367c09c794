package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"carapi/internal/config"
)

// ErrRateLimited means the caller is over quota and may retry after a
// backoff. ErrPolicyBlocked means the caller is denied for policy
// reasons and retrying will not help. The distinction matters for
// retry-after semantics, so both survive to the HTTP layer.
var (
	ErrRateLimited   = errors.New("too many requests")
	ErrPolicyBlocked = errors.New("request blocked by policy")
)

// RateLimitError carries the time until the caller's quota window resets.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// Limiter is the admission check gating the image extraction endpoints.
type Limiter interface {
	// Allow admits or denies one request for the given caller key.
	Allow(ctx context.Context, caller string) error
}

// RedisLimiter implements a fixed-window counter per caller on Redis,
// with a blocklist set for policy denials.
type RedisLimiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
}

const (
	counterPrefix = "ratelimit:"
	blocklistKey  = "ratelimit:blocked"
)

// NewRedisLimiter creates a limiter from config.
func NewRedisLimiter(client *redis.Client, cfg config.RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		requests: cfg.Requests,
		window:   time.Duration(cfg.WindowSec) * time.Second,
	}
}

var _ Limiter = (*RedisLimiter)(nil)

// Allow admits one request for the caller. Redis outages fail open: an
// unavailable limiter must not take the extraction endpoints down with it.
func (l *RedisLimiter) Allow(ctx context.Context, caller string) error {
	blocked, err := l.client.SIsMember(ctx, blocklistKey, caller).Result()
	if err != nil {
		log.Warn().Err(err).Str("caller", caller).Msg("blocklist check failed, admitting request")
		return nil
	}
	if blocked {
		log.Info().Str("caller", caller).Msg("request denied by blocklist")
		return ErrPolicyBlocked
	}

	key := counterPrefix + caller
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		log.Warn().Err(err).Str("caller", caller).Msg("rate limit counter failed, admitting request")
		return nil
	}
	if count == 1 {
		l.client.Expire(ctx, key, l.window)
	}

	if count > int64(l.requests) {
		ttl, err := l.client.TTL(ctx, key).Result()
		if err != nil || ttl < 0 {
			ttl = l.window
		}
		log.Info().
			Str("caller", caller).
			Int64("requests", count).
			Int("remaining", 0).
			Dur("resetIn", ttl).
			Msg("rate limit exceeded")
		return &RateLimitError{RetryAfter: ttl}
	}
	return nil
}
