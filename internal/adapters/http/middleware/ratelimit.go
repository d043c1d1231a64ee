package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rafaelleal24/catalog/internal/core/logger"
	"github.com/rafaelleal24/catalog/internal/core/serviceerrors"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit rejects requests once a client exceeds limit calls per window.
// Limiter failures let the request through.
func RateLimit(limiter RateLimiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s:%s", c.Request.Method, c.FullPath(), c.ClientIP())

		allowed, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limiter unavailable", map[string]any{
				"key":   key,
				"error": err.Error(),
			})
			c.Next()
			return
		}
		if !allowed {
			_ = c.Error(serviceerrors.NewTooManyRequestsError("rate limit exceeded"))
			c.Abort()
			return
		}
		c.Next()
	}
}
