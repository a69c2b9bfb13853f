package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
)

const redisKeyPrefix = "rate:"

// hitScript runs the whole read-modify-write of one key atomically.
// Times are unix milliseconds. Returns {allowed, retry_after_ms, reason}.
var hitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
local cooldown = tonumber(ARGV[4])

local data = redis.call('HMGET', key, 'count', 'first', 'last')
local count = tonumber(data[1])
if count == nil or (now - tonumber(data[2])) > window then
	redis.call('HSET', key, 'count', 1, 'first', now, 'last', now)
	redis.call('PEXPIRE', key, window + 1)
	return {1, 0, ''}
end

local first = tonumber(data[2])
local last = tonumber(data[3])
if cooldown > 0 and (now - last) < cooldown then
	return {0, cooldown - (now - last), 'cooldown'}
end

if count >= max then
	return {0, window - (now - first), 'window'}
end

redis.call('HSET', key, 'count', count + 1, 'last', now)
return {1, 0, ''}
`)

// RedisStore shares counters between processes through Redis. Keys expire
// with their window so no sweep is needed.
type RedisStore struct {
	client redis.Scripter
}

// NewRedisStore builds a store on top of an existing client.
func NewRedisStore(client redis.Scripter) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Hit(ctx context.Context, key string, now time.Time, p Policy) (Decision, error) {
	res, err := hitScript.Run(ctx, s.client, []string{redisKeyPrefix + key},
		now.UnixMilli(), p.Window.Milliseconds(), p.MaxCount, p.MinInterval.Milliseconds()).Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	allowed, _ := res[0].(int64)
	if allowed == 1 {
		return Decision{Allowed: true}, nil
	}

	retryMs, _ := res[1].(int64)
	reason, _ := res[2].(string)
	d := Decision{
		RetryAfterSec: ceilSeconds(time.Duration(retryMs) * time.Millisecond),
		Reason:        domainErrors.RateLimitReason(reason),
	}
	if d.Reason == domainErrors.ReasonWindow {
		d.RetryAfterSec = max(1, d.RetryAfterSec)
	}
	return d, nil
}

// Sweep is a no-op; Redis expires keys itself.
func (s *RedisStore) Sweep(time.Time) {}
