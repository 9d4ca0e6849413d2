package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/walaka/walaka/internal/auth"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/logger"
	"github.com/walaka/walaka/internal/types"
)

// AuthenticateMiddleware authenticates requests with the bearer token in the
// Authorization header. It sets the user ID and the token in the request
// context for downstream handlers.
func AuthenticateMiddleware(authProvider auth.Provider, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(types.HeaderAuthorization)
		if authHeader == "" {
			abortUnauthorized(c, "Please sign in to continue")
			return
		}

		// Check if the authorization header is in the correct format
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := authProvider.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			logger.Debugw("failed to validate token", "error", err, "provider", authProvider.GetProvider())
			c.AbortWithStatusJSON(ierr.HTTPStatusFromErr(err), ierr.NewErrorResponse(err))
			return
		}

		if claims == nil || claims.UserID == "" {
			abortUnauthorized(c, "Invalid token claims")
			return
		}

		// Set user ID and token in context
		ctx := c.Request.Context()
		ctx = context.WithValue(ctx, types.CtxUserID, claims.UserID)
		ctx = context.WithValue(ctx, types.CtxJWT, tokenString)

		// Set additional headers for downstream handlers
		environmentID := c.GetHeader(types.HeaderEnvironment)
		if environmentID != "" {
			ctx = context.WithValue(ctx, types.CtxEnvironmentID, environmentID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, hint string) {
	err := ierr.NewError("unauthorized").
		WithHint(hint).
		Mark(ierr.ErrUnauthorized)
	c.AbortWithStatusJSON(http.StatusUnauthorized, ierr.NewErrorResponse(err))
}
