package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Audit logs one line per successful console mutation. Form handlers
// always redirect, so a request that recorded gin errors is not audited. An empty resource is
// taken from the :resource route parameter.
func Audit(logger *zap.Logger, action, resource string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Writer.Status() >= 400 || len(c.Errors) > 0 {
			return
		}

		target := resource
		if target == "" {
			target = c.Param("resource")
		}
		fields := []zap.Field{
			zap.String("action", action),
			zap.String("resource", target),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if id := c.Param("id"); id != "" {
			fields = append(fields, zap.String("resource_id", id))
		}
		if claims := Claims(c); claims != nil {
			fields = append(fields, zap.String("username", claims.Username))
		}
		logger.Info("console_audit", fields...)
	}
}
