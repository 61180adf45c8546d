package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HomeHandler struct {
	name    string
	version string
}

func NewHomeHandler(name, version string) *HomeHandler {
	return &HomeHandler{name: name, version: version}
}

// Index handles GET /
func (h *HomeHandler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": h.name,
		"version": h.version,
		"endpoints": echo.Map{
			"health":    "/api/health",
			"trips":     "/api/trips",
			"zones":     "/api/zones",
			"stats":     "/api/stats",
			"analytics": "/api/analytics",
			"metrics":   "/metrics",
		},
	})
}
