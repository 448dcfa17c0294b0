// Package middleware provides Echo middleware for the gateway's HTTP surface.
package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// probePaths are logged at debug level so liveness checks do not flood the log.
var probePaths = map[string]bool{
	"/healthz":      true,
	"/proxy/status": true,
}

// RequestLogger returns an Echo middleware that logs each request with slog.
// The matched route is logged rather than the raw path; query strings carry
// checkout identifiers and are never written.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			level := slog.LevelInfo
			switch {
			case probePaths[req.URL.Path]:
				level = slog.LevelDebug
			case res.Status >= 500:
				level = slog.LevelWarn
			}

			logger.Log(req.Context(), level, "request",
				"method", req.Method,
				"route", c.Path(),
				"status", res.Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
				"remote_ip", c.RealIP(),
				"bytes_in", req.ContentLength,
				"bytes_out", res.Size,
			)

			return err
		}
	}
}
