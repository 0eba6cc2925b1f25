package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/KRGANESH/vendor-management/pkg/logger"
)

// RequestLogger logs every request once it has been served
func RequestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			// Let echo write the response so the logged status is final
			c.Error(err)
		}

		logger.FromEcho(c).Info("HTTP Request",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", c.Response().Status),
			zap.Float64("duration_s", time.Since(start).Seconds()),
			zap.String("ip", c.RealIP()),
		)
		return nil
	}
}
