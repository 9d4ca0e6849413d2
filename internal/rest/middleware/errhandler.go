package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/logger"
	"github.com/walaka/walaka/internal/types"
)

// ErrorHandler middleware renders the last error attached to the context
// with the hint and safe details it carries
func ErrorHandler(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := ierr.HTTPStatusFromErr(err)
		if status >= http.StatusInternalServerError {
			logger.Errorw("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", status,
				"request_id", types.GetRequestID(c.Request.Context()),
				"session_id", types.GetSessionID(c.Request.Context()),
				"error", err,
			)
		}

		c.JSON(status, ierr.NewErrorResponse(err))
	}
}
