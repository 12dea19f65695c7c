package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const versionSuffix = ":ver"

// fillIfVersionScript writes the view only while the version key still holds
// the value observed before the backing read.
var fillIfVersionScript = goredis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[2] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

// ViewCache is a JSON-backed Redis cache for read projections of type T.
// A ttl of 0 keeps keys until they are deleted.
//
// Delete bumps a per-key version so a read-through fill that started before
// the delete is discarded by Fill instead of caching the stale value.
type ViewCache[T any] struct {
	client *goredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewViewCache[T any](client *goredis.Client, ttl time.Duration, logger *zap.Logger) *ViewCache[T] {
	return &ViewCache[T]{client: client, ttl: ttl, logger: logger}
}

// Get returns (nil, false) on any miss or decoding error.
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.logger.Warn("view cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		c.logger.Warn("view cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &v, true
}

// Version returns the invalidation counter of key. Read it before loading
// the value that will be passed to Fill.
func (c *ViewCache[T]) Version(ctx context.Context, key string) string {
	v, err := c.client.Get(ctx, key+versionSuffix).Result()
	if err == goredis.Nil {
		return "0"
	}
	if err != nil {
		c.logger.Warn("view cache version read failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return v
}

// Fill stores value unless key was deleted since version was read. It
// reports whether the value was cached.
func (c *ViewCache[T]) Fill(ctx context.Context, key, version string, value *T) bool {
	if version == "" {
		return false
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("view cache marshal failed", zap.String("key", key), zap.Error(err))
		return false
	}
	n, err := fillIfVersionScript.Run(ctx, c.client, []string{key, key + versionSuffix},
		data, version, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.logger.Warn("view cache write failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return n == 1
}

// Delete drops key and bumps its version.
func (c *ViewCache[T]) Delete(ctx context.Context, key string) {
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Incr(ctx, key+versionSuffix)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		c.logger.Warn("view cache delete failed", zap.String("key", key), zap.Error(err))
	}
}
