package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/lyricsync/logger"
)

// Recovery converts panics in downstream handlers into 500 responses and
// logs the stack trace. Without it a panic tears down the whole connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered in request handler", logger.Fields(
					"panic", fmt.Sprintf("%v", rec),
					logger.FieldPath, c.Request.URL.Path,
					logger.FieldRequestID, GetRequestID(c),
					"stack", string(debug.Stack()),
				))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"detail": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
