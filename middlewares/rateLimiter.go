package middlewares

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window request counter per client ip kept in redis.
type RateLimiter struct {
	client func() *redis.Client
	limit  int64
	window time.Duration
}

// NewRateLimiter resolves the redis client per request so it can be installed before redis connects.
func NewRateLimiter(client func() *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		client := rl.client()
		if client == nil {
			c.Next()
			return
		}
		key := "RateLimit:" + c.ClientIP()
		ctx := c.Request.Context()

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			// limiter is best effort
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(ctx, key, rl.window)
		}

		if count > rl.limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
			})
			return
		}
		c.Next()
	}
}
