package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/checkout/internal/platform/token"
	"github.com/fatflowers/checkout/pkg/logctx"
)

// RequestLoggerMiddleware attaches a request-scoped logger to the gin context
// and the request context. The caller id is read from the bearer token
// without verification and is used for log correlation only.
func RequestLoggerMiddleware(base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		fields := []interface{}{"trace_id", c.GetString(logctx.KeyTraceID)}
		ctx := c.Request.Context()

		if raw := token.FromAuthorizationHeader(c.GetHeader("Authorization")); raw != "" {
			if claims, err := token.DecodeUnverified(raw); err == nil && claims.UserID != "" {
				fields = append(fields, "user_id", claims.UserID)
				ctx = context.WithValue(ctx, logctx.KeyUserID, claims.UserID)
			}
		}

		reqLogger := base.With(fields...)
		c.Set(logctx.KeyLogger, reqLogger)
		c.Request = c.Request.WithContext(context.WithValue(ctx, logctx.KeyLogger, reqLogger))

		c.Next()
	}
}
