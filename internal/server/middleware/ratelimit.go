package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/nulzo/neurix/internal/ratelimit"
	"github.com/nulzo/neurix/pkg/api"
	"go.uber.org/zap"
)

const clientIDKey = "neurix.client_id"

// UnknownClient is the shared id used when the trusted header is missing.
const UnknownClient = "unknown"

// ClientID returns the id the rate limiter keyed this request on.
func ClientID(c *gin.Context) string {
	if id := c.GetString(clientIDKey); id != "" {
		return id
	}
	return UnknownClient
}

// RateLimit enforces a sliding-window quota keyed by the value of header.
// If the store itself fails the request is let through.
func RateLimit(limiter *ratelimit.Limiter, header string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if id == "" {
			id = UnknownClient
		}
		c.Set(clientIDKey, id)

		decision, err := limiter.Allow(c.Request.Context(), id)
		if err != nil {
			logger.Error("Rate limit store failed, allowing request", zap.String("client", id), zap.Error(err))
			c.Next()
			return
		}

		if !decision.Allowed {
			logger.Warn("Rate limit exceeded",
				zap.String("client", id),
				zap.String("path", c.Request.URL.Path),
				zap.Duration("retry_after", decision.RetryAfter),
			)
			_ = c.Error(api.RateLimitError(decision.RetryAfterSeconds()))
			c.Abort()
			return
		}

		c.Next()
	}
}
