package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

// NewRateLimitStore keeps counters in Redis when a client is given so that
// every API replica shares them; otherwise counters are per process.
func NewRateLimitStore(client *redis.Client) (limiter.Store, error) {
	if client == nil {
		return memory.NewStore(), nil
	}
	return sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   "profile_api_limiter",
		MaxRetry: 3,
	})
}

// RateLimitMiddleware limits requests per client IP.
func RateLimitMiddleware(store limiter.Store, limit int64, period time.Duration, log logger.Logger) gin.HandlerFunc {
	if limit <= 0 {
		limit = 10
	}
	if period <= 0 {
		period = time.Minute
	}

	instance := limiter.New(store, limiter.Rate{Period: period, Limit: limit})

	return func(c *gin.Context) {
		key := c.ClientIP()
		lctx, err := instance.Get(c.Request.Context(), key)
		if err != nil {
			// Store errors let the request through.
			log.Error("Rate limiter unavailable", err, zap.String("client_ip", key))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			log.Warn("Rate limit reached", zap.String("client_ip", key), zap.String("path", c.FullPath()))
			c.Header("Retry-After", strconv.FormatInt(max(lctx.Reset-time.Now().Unix(), 1), 10))
			_ = c.Error(apperror.NewRateLimited("limit of " + strconv.FormatInt(lctx.Limit, 10) + " requests reached"))
			c.Abort()
			return
		}

		c.Next()
	}
}
