package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow keeps one sorted set per client, scored by acceptance time in
// milliseconds. The key expires one window after the last accepted request,
// which replaces the clear-all bound of the memory store.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  local oldest = now
  if first[2] then
    oldest = tonumber(first[2])
  end
  return {0, count, oldest}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, count + 1, 0}
`)

// RedisStore shares quota across relay instances.
type RedisStore struct {
	client redis.UniversalClient
	policy Policy
	prefix string
}

func NewRedisStore(client redis.UniversalClient, policy Policy, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "neurix:ratelimit:"
	}
	return &RedisStore{client: client, policy: policy, prefix: prefix}
}

func (s *RedisStore) Allow(ctx context.Context, key string, now time.Time) (Decision, error) {
	nowMS := now.UnixMilli()
	res, err := slidingWindow.Run(ctx, s.client, []string{s.prefix + key},
		nowMS,
		s.policy.Window.Milliseconds(),
		s.policy.Limit,
		// members must be unique even for requests in the same millisecond
		fmt.Sprintf("%d-%s", nowMS, uuid.NewString()),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script failed: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("rate limit script returned %d values", len(res))
	}

	if res[0] == 0 {
		oldest := time.UnixMilli(res[2])
		return Decision{Allowed: false, RetryAfter: oldest.Add(s.policy.Window).Sub(now)}, nil
	}
	return Decision{Allowed: true, Remaining: s.policy.Limit - int(res[1])}, nil
}

// Clients counts tracked keys with SCAN, so it is only meant for diagnostics.
func (s *RedisStore) Clients(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 500).Result()
		if err != nil {
			return 0, err
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}
