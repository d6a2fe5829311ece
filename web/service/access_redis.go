package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const accessKeyPrefix = "todo:access:"

// allowScript returns 1 and stores ARGV[1] when the stored timestamp is at
// least ARGV[2] milliseconds old or missing, 0 otherwise.
var allowScript = redis.NewScript(`
local last = redis.call("GET", KEYS[1])
local now = tonumber(ARGV[1])
if last and now - tonumber(last) < tonumber(ARGV[2]) then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1])
return 1
`)

// RedisAccessLimiter keeps access records in Redis.
type RedisAccessLimiter struct {
	client redis.Scripter
	window time.Duration
}

func NewRedisAccessLimiter(client redis.Scripter) *RedisAccessLimiter {
	return &RedisAccessLimiter{client: client, window: AccessWindow}
}

func (l *RedisAccessLimiter) Allow(ctx context.Context, userId string, now time.Time) (bool, error) {
	n, err := allowScript.Run(ctx, l.client,
		[]string{accessKeyPrefix + userId},
		now.UnixMilli(), l.window.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
