package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/lyricsync/util"
)

// defaultMaxBodySize caps uploads at 100MB when the configured size cannot
// be parsed. Audio uploads are the largest payload this service handles.
const defaultMaxBodySize = 100 * 1024 * 1024

// GinBodySizeLimit caps request bodies at the given size (e.g. "100MB").
func GinBodySizeLimit(maxSize string) gin.HandlerFunc {
	limit := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"detail": "Request body too large",
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
