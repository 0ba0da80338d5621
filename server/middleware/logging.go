package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/lyricsync/logger"
)

// GinRequestLogger emits one structured log line per completed request.
// Server errors log at error level, client errors at warn.
func GinRequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := logger.Fields(
			"method", c.Request.Method,
			logger.FieldPath, c.Request.URL.Path,
			logger.FieldStatus, status,
			logger.FieldDuration, time.Since(start).Milliseconds(),
			logger.FieldRequestID, GetRequestID(c),
			"bytes", c.Writer.Size(),
		)

		switch {
		case status >= 500:
			logger.Error("request completed", fields)
		case status >= 400:
			logger.Warn("request completed", fields)
		default:
			logger.Info("request completed", fields)
		}
	}
}
