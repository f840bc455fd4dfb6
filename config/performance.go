package config

import (
	"log/slog"
	"time"

	"restopos-backend/utils"

	"github.com/gin-gonic/gin"
)

const slowRequestThreshold = 200 * time.Millisecond

// PerformanceLogger logs request timing and records it in the latency histogram.
func PerformanceLogger(logger *slog.Logger, metrics *utils.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.ObserveRequest(c.Request.Method, route, status, latency)

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", latency.String(),
		}
		if latency > slowRequestThreshold {
			logger.Warn("slow request", attrs...)
			return
		}
		logger.Debug("request", attrs...)
	}
}
