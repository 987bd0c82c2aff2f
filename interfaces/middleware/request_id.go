package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"subtitle-credit/infrastructure/logger"
)

const HeaderRequestID = "X-Request-ID"

// RequestID tags the request context so every log line of a call shares one id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}
