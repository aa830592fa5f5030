package ratelimit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edumedsolutions/edumed/core"
)

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter shares its windows between every API instance. It fails open when redis is unavailable,
// warning once per outage.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	script *redis.Script
	logger core.Logger

	degraded atomic.Bool
}

var _ Limiter = (*RedisLimiter)(nil)

func NewRedisLimiter(client *redis.Client, prefix string, logger core.Logger) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		script: redis.NewScript(rateLimitScript),
		logger: logger,
	}
}

func (l *RedisLimiter) Allow(key string, limit int, window time.Duration) bool {
	if l == nil || l.client == nil {
		return true
	}
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	redisKey := key
	if l.prefix != "" {
		redisKey = l.prefix + ":" + key
	}
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{redisKey}, ttl, limit).Int64()
	if err != nil {
		if l.degraded.CompareAndSwap(false, true) {
			l.logger.Warn(fmt.Sprintf("rate limiter unavailable, allowing requests: %v", err), err)
		}
		return true
	}
	if l.degraded.CompareAndSwap(true, false) {
		l.logger.Info("rate limiter recovered")
	}
	return allowed == 1
}
