package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"subtitle-credit/domain/apperror"
	"subtitle-credit/domain/dto"
	"subtitle-credit/infrastructure/logger"
)

const internalMessage = "internal server error"

// ErrorHandler turns panics into the standard error body.
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.FromContext(c.Request.Context()).WithFields(map[string]interface{}{
			"recovered": recovered,
			"path":      c.Request.URL.Path,
			"method":    c.Request.Method,
		}).Error("Panic recovered")

		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Res{
			StatusCode: http.StatusInternalServerError,
			Message:    internalMessage,
		})
	})
}

// HandleError renders err as {status_code, message}. Details of internal and
// upstream failures are logged, not returned.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	status := http.StatusInternalServerError
	message := internalMessage
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		status = appErr.HTTPStatus()
		if appErr.Kind != apperror.KindInternal {
			message = appErr.Message
		}
	}

	log := logger.FromContext(c.Request.Context()).WithFields(map[string]interface{}{
		"error":  err,
		"status": status,
		"path":   c.Request.URL.Path,
	})
	if status >= http.StatusInternalServerError {
		log.Error("Request failed")
	} else {
		log.Info("Request rejected")
	}

	c.AbortWithStatusJSON(status, dto.Res{StatusCode: status, Message: message})
}
