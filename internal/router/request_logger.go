package router

import (
	"time"

	"velum-go/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// accessFields describes a finished request. The route is the registered
// pattern so ids in the path do not fan out into separate log keys.
func accessFields(c *gin.Context, latency time.Duration) []zap.Field {
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	fields := []zap.Field{
		zap.String("request_id", c.GetString(ContextKeyRequestID)),
		zap.String("method", c.Request.Method),
		zap.String("route", route),
		zap.Int("status", c.Writer.Status()),
		zap.Int("bytes", c.Writer.Size()),
		zap.Duration("latency", latency),
		zap.String("client_ip", c.ClientIP()),
	}
	if claims, ok := auth.ClaimsFrom(c); ok {
		fields = append(fields, zap.String("user", claims.Subject), zap.String("role", claims.Role))
	}
	if len(c.Errors) > 0 {
		fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
	}
	return fields
}

// RequestLogger writes one access entry per request. Health probes are
// logged only when they fail.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if c.FullPath() == "/health" && status < 400 {
			return
		}
		fields := accessFields(c, time.Since(start))
		switch {
		case status >= 500:
			log.Error("API request failed", fields...)
		case status >= 400:
			log.Warn("API request rejected", fields...)
		default:
			log.Debug("API request", fields...)
		}
	}
}
