// Package redis caches the settings table in Redis. Reads go to Redis first
// and fall back to PostgreSQL; writes go to PostgreSQL first and then replace
// the cached entry.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"fulfillment/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keyPrefix  = "fulfillment:setting:"
	DefaultTTL = 5 * time.Minute
)

type cachedSetting struct {
	Value   string `json:"value"`
	Present bool   `json:"present"`
}

// SettingsCache implements ports.SettingsStore. Redis failures are logged and
// served from the backing store, so an unavailable cache only costs latency.
type SettingsCache struct {
	client  *goredis.Client
	backing ports.SettingsStore
	ttl     time.Duration
	log     zerolog.Logger
}

func NewSettingsCache(
	client *goredis.Client,
	backing ports.SettingsStore,
	ttl time.Duration,
	log zerolog.Logger,
) *SettingsCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SettingsCache{
		client:  client,
		backing: backing,
		ttl:     ttl,
		log:     log.With().Str("component", "settings_cache").Logger(),
	}
}

func settingKey(key string) string {
	return keyPrefix + key
}

// Get returns the setting, caching absent keys as well.
func (c *SettingsCache) Get(ctx context.Context, key string) (string, bool, error) {
	data, err := c.client.Get(ctx, settingKey(key)).Bytes()
	switch {
	case err == nil:
		var cached cachedSetting
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
			return cached.Value, cached.Present, nil
		}
		c.log.Warn().Str("key", key).Msg("dropping undecodable cache entry")
	case errors.Is(err, goredis.Nil):
	default:
		c.log.Warn().Err(err).Str("key", key).Msg("redis read failed, using database")
	}

	value, ok, err := c.backing.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	c.fill(ctx, key, cachedSetting{Value: value, Present: ok})
	return value, ok, nil
}

// Put writes through to the backing store and then replaces the cached entry.
// If Redis refuses the write the entry is dropped instead.
func (c *SettingsCache) Put(ctx context.Context, key, value string, now time.Time) error {
	if err := c.backing.Put(ctx, key, value, now); err != nil {
		return err
	}

	data, err := json.Marshal(cachedSetting{Value: value, Present: true})
	if err == nil {
		err = c.client.Set(ctx, settingKey(key), data, c.ttl).Err()
	}
	if err == nil {
		return nil
	}
	c.log.Warn().Err(err).Str("key", key).Msg("redis write failed, dropping entry")
	if err = c.client.Del(ctx, settingKey(key)).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("redis invalidation failed, entry expires with its ttl")
	}
	return nil
}

// fill caches a value read from the backing store only when no entry exists.
// A Put that lands while the read is in flight has already stored the newer
// value, and SETNX keeps the stale read from overwriting it.
func (c *SettingsCache) fill(ctx context.Context, key string, entry cachedSetting) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err = c.client.SetNX(ctx, settingKey(key), data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("redis write failed")
	}
}
