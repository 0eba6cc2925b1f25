package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/KRGANESH/vendor-management/pkg/logger"
	"github.com/KRGANESH/vendor-management/prometheus"
)

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(RequestIDMiddleware)

	var fromContext bool
	e.GET("/", func(c echo.Context) error {
		fromContext = logger.FromContext(c.Request().Context()) == logger.FromEcho(c)
		return c.String(http.StatusOK, c.Get("request_id").(string))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
	assert.Equal(t, rec.Header().Get(HeaderRequestID), rec.Body.String())
	assert.True(t, fromContext, "request context carries the request logger")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "caller-id")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "caller-id", rec.Header().Get(HeaderRequestID))
}

func TestHTTPMetricsUsesRouteTemplate(t *testing.T) {
	metrics := prometheus.NewMetrics("test", prom.NewRegistry())
	e := echo.New()
	e.Use(HTTPMetrics(metrics), RequestLogger)
	e.GET("/vendors/:id/", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "missing")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/vendors/42/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HttpRequestsTotal.WithLabelValues("GET", "/vendors/:id/", "404")))
}
