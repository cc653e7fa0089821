package bucket

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"fooddrop/internal/ratelimit/models"
)

const redisKeyPrefix = "ratelimit:"

// slidingWindowScript trims the window, admits the request when there is
// room and returns {allowed, count, oldest score}. Running it as one script
// keeps concurrent checks from overshooting the limit.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)
local count = redis.call("ZCARD", key)
local allowed = 0
if count < limit then
  redis.call("ZADD", key, now, member)
  count = count + 1
  allowed = 1
end
redis.call("PEXPIRE", key, window)
local oldest = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
local first = now
if oldest[2] then first = tonumber(oldest[2]) end
return {allowed, count, tostring(first)}
`)

// RedisBucketStore shares sliding windows between server instances.
type RedisBucketStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedis(client *redis.Client) *RedisBucketStore {
	return &RedisBucketStore{client: client, now: time.Now}
}

func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	now := s.now()
	res, err := slidingWindowScript.Run(ctx, s.client, []string{redisKeyPrefix + key},
		now.UnixMilli(), window.Milliseconds(), limit, uuid.NewString(),
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	allowed, _ := res[0].(int64)
	count, _ := res[1].(int64)
	firstMs, err := strconv.ParseFloat(fmt.Sprint(res[2]), 64)
	if err != nil {
		return nil, fmt.Errorf("rate limit script: parse oldest score: %w", err)
	}
	resetAt := time.UnixMilli(int64(firstMs)).Add(window)

	result := &models.RateLimitResult{
		Allowed:   allowed == 1,
		Limit:     limit,
		Remaining: max(limit-int(count), 0),
		ResetAt:   resetAt,
	}
	if !result.Allowed {
		result.RetryAfter = retryAfter(now, resetAt)
	}
	return result, nil
}

func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}
