package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/lyricsync/errors"
	"github.com/skillsenselab/lyricsync/logger"
	"github.com/skillsenselab/lyricsync/server/middleware"
)

// RespondResult writes a 200 response wrapping data under a "result" key.
func RespondResult(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"result": data})
}

// RespondWithError renders err as a JSON error body. Application errors
// carry their own HTTP status and detail message; anything else becomes an
// opaque 500.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.Internal(err)
	}

	fields := logger.Fields(
		"code", string(appErr.Code),
		logger.FieldPath, c.Request.URL.Path,
		logger.FieldRequestID, middleware.GetRequestID(c),
	)
	if appErr.Cause != nil {
		fields[logger.FieldError] = appErr.Cause.Error()
	}
	if appErr.HTTPStatus >= 500 {
		logger.Error(appErr.Message, fields)
	} else {
		logger.Warn(appErr.Message, fields)
	}

	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}
