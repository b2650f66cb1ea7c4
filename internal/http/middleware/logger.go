package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"heroes/internal/logger"
)

// Logger is a middleware that logs each HTTP request through lggr.
// Fields:
// - request_id (taken from context locals set by RequestID middleware)
// - method
// - path
// - status
// - latency (in milliseconds, as float)
func Logger(lggr *zap.Logger) fiber.Handler {
	lggr = lggr.Named("http")

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		// Collect fields after handler executed to capture final status
		rid, _ := c.Locals(RequestIDLocalKey).(string)
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		latency := float64(time.Since(start).Microseconds()) / 1000

		lggr.Info("http_request",
			zap.String("request_id", rid),
			zap.String("method", c.Method()),
			// path only, no query string
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Float64("latency", latency),
		)

		return err
	}
}

// LoggerWithWriter is Logger writing JSON lines to w with timestamps in loc.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return Logger(logger.NewWriter(w, loc))
}
