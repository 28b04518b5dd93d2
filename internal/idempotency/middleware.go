package idempotency

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"zayana-be/internal/logger"
	"zayana-be/internal/metrics"
	"zayana-be/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	HeaderKey    = "Idempotency-Key"
	maxKeyLength = 255
)

// Middleware rejects a second request carrying the same Idempotency-Key
// from the same user while the first reservation lives. Requests without
// the header pass untouched. A reservation is released when the handler
// responds with an error status or panics so the client can retry.
//
// Store failures are logged and the request proceeds unguarded.
func Middleware(store Store, ttl time.Duration, m *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderKey)
		if raw == "" {
			c.Next()
			return
		}

		if len(raw) > maxKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorBody(
				"ERR_VALIDATION",
				fmt.Sprintf("%s must be at most %d characters", HeaderKey, maxKeyLength),
			))
			return
		}

		ctx := c.Request.Context()
		log := logger.FromCtx(ctx).With(zap.String("idempotency_key", raw))

		scope := "anon"
		if id, ok := middleware.UserID(c); ok {
			scope = fmt.Sprintf("user:%d", id)
		}
		key := scope + ":" + c.Request.Method + ":" + c.FullPath() + ":" + raw

		reserved, err := store.Reserve(ctx, key, ttl)
		if err != nil {
			log.Warn("idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			m.Inc(metrics.IdempotentReplays)
			log.Info("duplicate submission rejected")
			c.AbortWithStatusJSON(http.StatusConflict, errorBody(
				"ERR_DUPLICATE_REQUEST",
				"a request with this Idempotency-Key was already submitted",
			))
			return
		}

		// Release also runs while a handler panic unwinds.
		completed := false
		defer func() {
			if completed && c.Writer.Status() < http.StatusBadRequest {
				return
			}
			if err := store.Release(context.WithoutCancel(ctx), key); err != nil {
				log.Warn("failed to release idempotency key", zap.Error(err))
			}
		}()

		c.Next()
		completed = true
	}
}

func errorBody(code, msg string) gin.H {
	return gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": msg,
		},
	}
}
