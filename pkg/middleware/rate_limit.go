package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/techboost-server-go/pkg/apperrors"
	"github.com/mo-amir99/techboost-server-go/pkg/cache"
	"github.com/mo-amir99/techboost-server-go/pkg/response"
)

// RateLimiter implements a fixed window limiter keyed by client IP.
// Counters live in the cache so every instance behind a load balancer shares them.
type RateLimiter struct {
	store    cache.Client
	logger   *slog.Logger
	rate     int
	duration time.Duration
	prefix   string
}

// NewRateLimiter creates a new rate limiter.
// rate: maximum number of requests per duration
// duration: time window for rate limiting
func NewRateLimiter(store cache.Client, logger *slog.Logger, rate int, duration time.Duration) *RateLimiter {
	return &RateLimiter{
		store:    store,
		logger:   logger,
		rate:     rate,
		duration: duration,
		prefix:   "ratelimit:",
	}
}

// Middleware returns a Gin middleware that enforces rate limiting.
// Counter failures let the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rate <= 0 {
			c.Next()
			return
		}

		key := rl.prefix + c.ClientIP()
		count, err := rl.store.IncrementWindow(c.Request.Context(), key, rl.duration)
		if err != nil {
			rl.logger.Warn("rate limiter unavailable", slog.String("error", err.Error()))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.rate))
		remaining := int64(rl.rate) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(rl.rate) {
			c.Header("Retry-After", strconv.Itoa(int(rl.duration.Seconds())))
			response.Error(c, http.StatusTooManyRequests, "Too many requests. Please try again later.",
				&response.ErrorBody{Code: apperrors.ErrTooMany})
			c.Abort()
			return
		}

		c.Next()
	}
}
