package middleware

import (
	"context"
	"net/http"

	"zayana-be/internal/auth"
	"zayana-be/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context key for user ID
type contextKey string

const (
	UserIDKey    contextKey = "userID"
	UserEmailKey contextKey = "userEmail"
)

// TokenParser verifies an access token.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

func WithUser(ctx context.Context, id int64, email string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, id)
	return context.WithValue(ctx, UserEmailKey, email)
}

// UserIDFrom retrieves the authenticated user's id.
func UserIDFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok && id > 0
}

// UserID is UserIDFrom for gin handlers.
func UserID(c *gin.Context) (int64, bool) {
	return UserIDFrom(c.Request.Context())
}

// OptionalAuth attaches the user when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := auth.ExtractAccessToken(c.Request); raw != "" {
			if claims, err := tokens.Parse(raw); err == nil {
				c.Request = c.Request.WithContext(WithUser(c.Request.Context(), claims.UserID, claims.Email))
			}
		}
		c.Next()
	}
}

// RequireAuth rejects requests without a valid access token.
func RequireAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); ok {
			c.Next()
			return
		}

		raw := auth.ExtractAccessToken(c.Request)
		if raw == "" {
			abortUnauthorized(c, "missing access token")
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			logger.FromCtx(c.Request.Context()).Debug("token rejected", zap.Error(err))
			abortUnauthorized(c, "invalid or expired access token")
			return
		}

		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), claims.UserID, claims.Email))
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ERR_UNAUTHORIZED",
			"message": msg,
		},
	})
}
