package ratelimit

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumedsolutions/edumed/tests"
)

func TestMemoryLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	NowFunc = func() time.Time { return now }
	defer func() { NowFunc = time.Now }()

	l := NewMemoryLimiter()
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("contact:1.2.3.4", 3, time.Minute), "hit %d", i+1)
	}
	assert.False(t, l.Allow("contact:1.2.3.4", 3, time.Minute))
	assert.True(t, l.Allow("contact:5.6.7.8", 3, time.Minute), "keys are independent")

	now = now.Add(time.Minute + time.Second)
	assert.True(t, l.Allow("contact:1.2.3.4", 3, time.Minute), "new window")

	assert.True(t, l.Allow("", 1, time.Minute))
	assert.True(t, l.Allow("k", 0, time.Minute))
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	var nilLimiter *RedisLimiter
	assert.True(t, nilLimiter.Allow("k", 1, time.Minute))

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()
	logger := testutil.NewLogger(t)
	l := NewRedisLimiter(client, "edumed", logger)
	assert.True(t, l.Allow("k", 1, time.Minute))
	assert.True(t, l.Allow("k", 1, time.Minute))

	entries := logger.Entries()
	require.Len(t, entries, 1, "one warning per outage")
	assert.Contains(t, entries[0], "WARN: rate limiter unavailable")
}
