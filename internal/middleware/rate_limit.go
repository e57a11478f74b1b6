package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/pageza/vinoteca/backend/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// KeyFunc picks the identity a request is counted against.
type KeyFunc func(c *gin.Context) string

// RateLimiter counts requests per identity in fixed windows stored in redis. A nil
// RateLimiter allows everything.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	key    KeyFunc
}

func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig, key KeyFunc) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		key:    key,
	}
}

// NewAIRateLimiter limits the model-backed endpoints. It returns nil, and so disables
// limiting, when redis is not configured or limit is zero.
func NewAIRateLimiter(redisClient *redis.Client, limit int, window time.Duration) *RateLimiter {
	if redisClient == nil || limit <= 0 {
		return nil
	}
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:ai",
	}, UsernameOrIP)
}

// UsernameOrIP counts requests against the "username" field of a JSON body, falling back
// to the client IP. The body stays available to handlers through ShouldBindBodyWith.
func UsernameOrIP(c *gin.Context) string {
	var body struct {
		Username string `json:"username"`
	}
	if c.Request.Body != nil && strings.HasPrefix(c.ContentType(), "application/json") {
		_ = c.ShouldBindBodyWith(&body, binding.JSON)
	}
	if username := strings.TrimSpace(body.Username); username != "" {
		return "user:" + username
	}
	return "ip:" + c.ClientIP()
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	if rl == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), rl.key(c))
		if err != nil {
			// fail open
			logger.FromContext(c.Request.Context()).Warn("rate limit check failed", zap.Error(err))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(time.Until(resetTime).Seconds())
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":                "rate limit exceeded",
				"message":              fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", rl.config.Limit, rl.config.Window),
				"rate_limit_remaining": remaining,
				"rate_limit_reset":     resetTime.Unix(),
				"retry_after":          retryAfter,
			})
			return
		}

		c.Next()
	}
}

// IsAllowed counts one request for identity.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, identity string) (bool, int, time.Time, error) {
	key, windowStart := rl.windowKey(identity)

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	return count <= rl.config.Limit, max(rl.config.Limit-count, 0), windowStart.Add(rl.config.Window), nil
}

// GetRemainingRequests reports the quota left for identity without counting a request.
func (rl *RateLimiter) GetRemainingRequests(ctx context.Context, identity string) (int, time.Time, error) {
	key, windowStart := rl.windowKey(identity)
	resetTime := windowStart.Add(rl.config.Window)

	count, err := rl.redis.Get(ctx, key).Int()
	if err == redis.Nil {
		return rl.config.Limit, resetTime, nil
	}
	if err != nil {
		return 0, time.Time{}, err
	}
	return max(rl.config.Limit-count, 0), resetTime, nil
}

// Limit is the number of requests allowed per window.
func (rl *RateLimiter) Limit() int {
	return rl.config.Limit
}

func (rl *RateLimiter) windowKey(identity string) (string, time.Time) {
	windowStart := time.Now().Truncate(rl.config.Window)
	return fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, identity, windowStart.Unix()), windowStart
}
