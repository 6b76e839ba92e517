package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/whytehoux-projecty/MIS/internal/logger"
)

// Token-bucket limiter backed by Redis, applied to the public submission and
// redemption routes. The bucket state lives in a hash and is refilled
// atomically by a Lua script, so every node shares one budget per client IP.
// With no Redis client the middleware degrades to pass-through.

var bucketScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])

    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    if interval_ms > 0 and refill_tokens > 0 then
        local elapsed = math.max(0, now_ms - last_refill)
        local intervals = math.floor(elapsed / interval_ms)
        if intervals > 0 then
            tokens = math.min(capacity, tokens + (intervals * refill_tokens))
            last_refill = last_refill + (intervals * interval_ms)
        end
    end

    local allowed = 0
    local retry_after_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        local until_next = interval_ms - (now_ms - last_refill)
        if until_next < 0 then until_next = 0 end
        retry_after_ms = until_next
    end

    redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)

    return { allowed, tokens, retry_after_ms }
`)

type RateLimiter struct {
	rdb            *redis.Client
	prefix         string
	capacity       int
	refillTokens   int
	refillInterval time.Duration
	ttl            time.Duration
}

func NewRateLimiter(rdb *redis.Client, prefix string, capacity int, refillInterval time.Duration) *RateLimiter {
	return &RateLimiter{
		rdb:            rdb,
		prefix:         prefix,
		capacity:       capacity,
		refillTokens:   1,
		refillInterval: refillInterval,
		ttl:            time.Hour,
	}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	if l == nil || l.rdb == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := l.prefix + ":ip:" + remoteIP(r)
		args := []interface{}{
			time.Now().UnixMilli(),
			l.capacity,
			l.refillTokens,
			l.refillInterval.Milliseconds(),
			int64(l.ttl / time.Second),
		}

		vals, err := bucketScript.Run(r.Context(), l.rdb, []string{key}, args...).Result()
		if err != nil {
			// A limiter outage must not take the service down with it.
			logger.Warn("rate limiter unavailable, passing through", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		arr, ok := vals.([]interface{})
		if !ok || len(arr) != 3 {
			next.ServeHTTP(w, r)
			return
		}
		allowed := asInt64(arr[0]) == 1
		remaining := asInt64(arr[1])
		retryMs := asInt64(arr[2])

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.capacity))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			secs := int(math.Ceil(float64(retryMs) / 1000.0))
			if secs < 0 {
				secs = 0
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			logger.Audit(logger.AuditRateLimit, false, "key", key)
			writeError(w, http.StatusTooManyRequests, "too_many_requests", "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
