package security

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// UploadLimiter enforces rate limits on resume uploads using a Redis sliding window
type UploadLimiter struct {
	client       *goredis.Client
	maxPerMinute int // Max uploads per minute per IP
	maxPerDay    int // Max uploads per day per user
}

// Lua script for sliding window rate limiting
// KEYS[1] = rate limit key
// ARGV[1] = max count allowed
// ARGV[2] = window size in seconds
// ARGV[3] = current timestamp
// Returns: 1 if allowed, 0 if rate limited
const uploadRateLimitScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

-- Remove expired entries outside the window
redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

-- Get current count
local count = redis.call('ZCARD', key)

if count >= limit then
    return 0
end

-- Add new entry with unique member
redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
redis.call('EXPIRE', key, window)
return 1
`

// NewUploadLimiter creates an upload rate limiter. client may be nil, in
// which case every upload is allowed.
// Default: 10 uploads/min per IP, 50 uploads/day per user
func NewUploadLimiter(client *goredis.Client, perMin, perDay int) *UploadLimiter {
	if perMin <= 0 {
		perMin = 10
	}
	if perDay <= 0 {
		perDay = 50
	}
	return &UploadLimiter{
		client:       client,
		maxPerMinute: perMin,
		maxPerDay:    perDay,
	}
}

// AllowUpload checks if an upload is allowed based on rate limits
// Returns (allowed, retryAfterSeconds, error)
// Without Redis the limiter fails open and reports why in err.
func (ul *UploadLimiter) AllowUpload(ctx context.Context, ip, userID string) (bool, int, error) {
	client := ul.client
	if client == nil {
		return true, 0, fmt.Errorf("rate limiter unavailable - Redis not connected")
	}

	now := time.Now().Unix()

	// Check per-IP rate limit (per minute)
	ipKey := fmt.Sprintf("ratelimit:resume:ip:%s", ip)
	allowed, err := ul.checkLimit(ctx, client, ipKey, ul.maxPerMinute, 60, now)
	if err != nil {
		// A broken Redis must not block resume uploads
		return true, 0, fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		return false, 60, nil // Retry after 60 seconds
	}

	// Check per-user rate limit (per day) if user is authenticated
	if userID != "" {
		userKey := fmt.Sprintf("ratelimit:resume:user:%s", userID)
		allowed, err = ul.checkLimit(ctx, client, userKey, ul.maxPerDay, 86400, now)
		if err != nil {
			return true, 0, fmt.Errorf("rate limit check failed: %w", err)
		}
		if !allowed {
			return false, 3600, nil // Retry after 1 hour
		}
	}

	return true, 0, nil
}

// checkLimit performs the atomic sliding window rate limit check
func (ul *UploadLimiter) checkLimit(ctx context.Context, client *goredis.Client, key string, limit, window int, now int64) (bool, error) {
	result, err := client.Eval(ctx, uploadRateLimitScript, []string{key}, limit, window, now).Result()
	if err != nil {
		return false, err
	}
	allowed, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected result type from rate limit script")
	}
	return allowed == 1, nil
}
