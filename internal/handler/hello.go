package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Hello reports that the service is up. Used for the health check endpoint.
func Hello(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Vendor Management API is running",
		"version": "1.0.0",
	})
}
