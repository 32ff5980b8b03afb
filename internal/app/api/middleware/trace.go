package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/checkout/pkg/logctx"
	"github.com/fatflowers/checkout/pkg/tool"
)

const traceHeader = "X-Request-ID"

// TraceMiddleware stores a trace id under "traceID" on both the gin context
// and the request context. A client supplied X-Request-ID wins over a fresh
// UUIDv7 so gateway retries can be correlated.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceHeader)
		if traceID == "" {
			traceID = tool.GenerateUUIDV7()
		}

		c.Set(logctx.KeyTraceID, traceID)
		ctx := context.WithValue(c.Request.Context(), logctx.KeyTraceID, traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(traceHeader, traceID)

		c.Next()
	}
}
