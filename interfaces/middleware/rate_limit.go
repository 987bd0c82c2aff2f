package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"subtitle-credit/domain/apperror"
	"subtitle-credit/domain/repository"
	"subtitle-credit/infrastructure/logger"
)

// RateLimit keys on the authenticated user when present, otherwise the client ip.
func RateLimit(limiter repository.IRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(ContextUserID)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		allowed, remaining, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.FromContext(c.Request.Context()).WithField("error", err).Warn("Rate limiter unavailable")
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if !allowed {
			HandleError(c, apperror.RateLimited("too many requests, please try again later"))
			return
		}
		c.Next()
	}
}
