package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/checkout/pkg/logctx"
)

// AccessLogMiddleware writes one line per request through the logger set by
// RequestLoggerMiddleware. Server errors are logged at error level.
func AccessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		v, ok := c.Get(logctx.KeyLogger)
		if !ok {
			return
		}
		log, ok := v.(*zap.SugaredLogger)
		if !ok || log == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", c.Request.Method,
			"path", route,
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			fields = append(fields, "errors", errs.String())
		}
		if c.Writer.Status() >= 500 {
			log.Errorw("http_access", fields...)
			return
		}
		log.Infow("http_access", fields...)
	}
}
