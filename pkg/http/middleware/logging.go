package middleware

import (
	"time"

	applogger "SignalDesk/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs every request with method, path, status and latency.
func RequestLogging(log *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)

			log.Debug("http request",
				applogger.String("method", req.Method),
				applogger.String("path", req.URL.Path),
				applogger.Int("status", c.Response().Status),
				applogger.Duration("latency", time.Since(start)),
			)
			return err
		}
	}
}
