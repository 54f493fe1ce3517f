package services

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/lighttribe-backend/internal/logging"
	"github.com/AnshRaj112/lighttribe-backend/internal/metrics"
)

const (
	// SessionKeyPrefix maps a token to its user id
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix maps a user id to its current token
	UserSessionKeyPrefix = "user_session:"
)

// SessionCache is a Redis read-through cache in front of the token lookup.
// MongoDB stays authoritative; every cache failure degrades to a miss.
type SessionCache struct {
	rdb *redis.Client
}

// NewSessionCache returns a cache; a nil client yields a cache that always misses.
func NewSessionCache(rdb *redis.Client) *SessionCache {
	return &SessionCache{rdb: rdb}
}

// Remember caches token -> userID and userID -> token for ttl, replacing
// any previously cached token of the user.
func (c *SessionCache) Remember(ctx context.Context, token, userID string, ttl time.Duration) {
	if c.rdb == nil || ttl <= 0 {
		return
	}
	userKey := UserSessionKeyPrefix + userID

	if old, err := c.rdb.Get(ctx, userKey).Result(); err == nil && old != "" && old != token {
		c.rdb.Del(ctx, SessionKeyPrefix+old)
	}

	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, SessionKeyPrefix+token, userID, ttl)
		pipe.Set(ctx, userKey, token, ttl)
		return nil
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("session cache write failed")
	}
}

// Lookup returns the cached user id for token.
func (c *SessionCache) Lookup(ctx context.Context, token string) (string, bool) {
	if c.rdb == nil {
		return "", false
	}
	userID, err := c.rdb.Get(ctx, SessionKeyPrefix+token).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.Ctx(ctx).Warn().Err(err).Msg("session cache read failed")
		}
		metrics.TokenCacheLookups.WithLabelValues("miss").Inc()
		return "", false
	}
	metrics.TokenCacheLookups.WithLabelValues("hit").Inc()
	return userID, true
}

// Forget drops token and, when it is still the user's current token, the
// reverse mapping.
func (c *SessionCache) Forget(ctx context.Context, token string) {
	if c.rdb == nil || token == "" {
		return
	}
	key := SessionKeyPrefix + token
	if userID, err := c.rdb.Get(ctx, key).Result(); err == nil && userID != "" {
		userKey := UserSessionKeyPrefix + userID
		if cur, err := c.rdb.Get(ctx, userKey).Result(); err == nil && cur == token {
			c.rdb.Del(ctx, userKey)
		}
	}
	c.rdb.Del(ctx, key)
}
