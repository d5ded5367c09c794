package viewcache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Invalidator signals that a named cached view is stale and should be
// recomputed on next read. The signal is fire and forget: failures are
// logged and never propagated, so mutation workflows cannot be blocked
// by a cache outage.
type Invalidator interface {
	Invalidate(ctx context.Context, view string)
}

// RedisInvalidator drops every cached render of a view, stored under
// views:<name>:* keys by the page layer.
type RedisInvalidator struct {
	client *redis.Client
}

// NewRedisInvalidator creates an Invalidator over the given client.
func NewRedisInvalidator(client *redis.Client) *RedisInvalidator {
	return &RedisInvalidator{client: client}
}

var _ Invalidator = (*RedisInvalidator)(nil)

// Invalidate scans for the view's keys and deletes them.
func (r *RedisInvalidator) Invalidate(ctx context.Context, view string) {
	pattern := "views:" + view + ":*"

	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			log.Warn().Err(err).Str("view", view).Msg("view cache scan failed")
			return
		}
		if len(keys) > 0 {
			n, err := r.client.Del(ctx, keys...).Result()
			if err != nil {
				log.Warn().Err(err).Str("view", view).Msg("view cache delete failed")
				return
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	log.Debug().Str("view", view).Int64("deleted", deleted).Msg("view cache invalidated")
}
