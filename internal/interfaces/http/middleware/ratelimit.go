package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/gymdesk/gymdesk/internal/shared/errors"
	"github.com/gymdesk/gymdesk/internal/shared/logger"
	"github.com/gymdesk/gymdesk/internal/shared/utils"
)

// RateLimiter is a Redis fixed-window counter per client IP. Counters live
// in Redis so every instance shares them.
type RateLimiter struct {
	redisClient *redis.Client
	limit       int
	window      time.Duration
	prefix      string
	logger      logger.Interface
	now         func() time.Time
}

// NewRateLimiter allows limit requests per window for each client IP.
// prefix separates counters of independently limited route groups.
func NewRateLimiter(redisClient *redis.Client, prefix string, limit int, window time.Duration, log logger.Interface) *RateLimiter {
	return &RateLimiter{
		redisClient: redisClient,
		limit:       limit,
		window:      window,
		prefix:      prefix,
		logger:      log,
		now:         time.Now,
	}
}

func (rl *RateLimiter) key(clientIP string) string {
	bucket := rl.now().Unix() / int64(rl.window.Seconds())
	return fmt.Sprintf("ratelimit:%s:%s:%d", rl.prefix, clientIP, bucket)
}

// Limit returns the gin middleware. Requests pass through when Redis is
// unreachable.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := rl.key(c.ClientIP())

		count, err := rl.redisClient.Incr(ctx, key).Result()
		if err != nil {
			rl.logger.Warnw("rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}

		if count == 1 {
			rl.redisClient.Expire(ctx, key, rl.window+time.Second)
		}

		if count > int64(rl.limit) {
			c.Header("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
			utils.ErrorResponseWithError(c, apperrors.NewTooManyRequestsError("Rate limit exceeded, please try again later"))
			c.Abort()
			return
		}

		c.Next()
	}
}
