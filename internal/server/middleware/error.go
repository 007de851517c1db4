package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/neurix/pkg/api"
	"go.uber.org/zap"
)

// ErrorHandler renders the last error pushed with c.Error as a relay envelope.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var apiErr *api.Error
		if !errors.As(err, &apiErr) {
			logger.Error("Unhandled error", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{
				Success: false,
				Error:   "Internal server error",
				Model:   "unknown",
			})
			return
		}

		if apiErr.Log != nil {
			logger.Warn("Request failed",
				zap.Int("status", apiErr.Status),
				zap.String("message", apiErr.Message),
				zap.Error(apiErr.Log),
			)
		}
		if apiErr.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(apiErr.RetryAfter))
		}

		c.AbortWithStatusJSON(apiErr.Status, apiErr.Envelope())
	}
}
