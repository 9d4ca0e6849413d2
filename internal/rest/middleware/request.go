package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/walaka/walaka/internal/types"
)

// RequestIDMiddleware tags the request context with a request id, taken from
// the caller when present, and with the session id of /v1/sessions/:id routes
// so that failures can be traced back to a session.
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	ctx := types.SetRequestID(c.Request.Context(), requestID)
	if strings.HasPrefix(c.FullPath(), "/v1/sessions/:id") {
		ctx = types.SetSessionID(ctx, c.Param("id"))
	}
	c.Request = c.Request.WithContext(ctx)

	c.Header(types.HeaderRequestID, requestID)
	c.Next()
}
