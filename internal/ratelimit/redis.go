package ratelimit

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// windowTTLSeconds keeps counter keys around slightly longer than the
// one-second window they cover, so slow replies still resolve.
const windowTTLSeconds = 2

var incrWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisLimiter is the shared fixed-window limiter. Counters live in Redis
// keyed by limiter key and window second, so the limit holds across
// instances.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter constructs a RedisLimiter.
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: strings.TrimSpace(prefix)}
}

// Allow counts the request against the key's current one-second window.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error) {
	if l == nil || l.client == nil || limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	sec := now.Unix()
	reset := time.Unix(sec+1, 0).UTC()

	count, errEval := incrWindowScript.Run(ctx, l.client, []string{l.windowKey(key, sec)}, windowTTLSeconds).Int64()
	if errEval != nil {
		return Result{}, errEval
	}
	if count > int64(limit) {
		return Result{Reset: reset}, nil
	}
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: remaining, Reset: reset}, nil
}

func (l *RedisLimiter) windowKey(key string, sec int64) string {
	slot := key + ":" + strconv.FormatInt(sec, 10)
	if l.prefix == "" {
		return slot
	}
	return l.prefix + ":" + slot
}
