package router

import (
	"github.com/Nishank-123/biller/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes mounts health, API docs and static assets.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	r.Static("/static", "static")

	r.GET("/docs", h.Pages.APIDocs)
}
