package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/KRGANESH/vendor-management/prometheus"
)

// HTTPMetrics records request counts and durations labelled by route template
func HTTPMetrics(metrics *prometheus.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			metrics.RecordHTTPRequest(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(c.Response().Status),
				time.Since(start),
			)
			return nil
		}
	}
}
