package router

// This file registers the layout editor routes and the per-event activity
// feed.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// RegisterLayout mounts the layout endpoints.  Every role may read a layout;
// the response is cached and purged by the write handlers.  Writes and the
// activity feed need ORGANIZER or ADMIN.
func RegisterLayout(e *echo.Echo, h *handler.LayoutHandler, a *handler.ActivityHandler, opt Options) {
	g := e.Group("/v1/eventos/:eventoID", protected(opt)...)
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleOrganizer)

	var read []echo.MiddlewareFunc
	if opt.Cache != nil {
		read = append(read, opt.Cache.Middleware())
	}
	g.GET("/layout", h.Get, read...)
	g.PUT("/layout", h.Put, staff)
	g.DELETE("/areas/:areaID", h.DeleteArea, staff)

	if a != nil {
		g.GET("/actividad", a.List, staff)
	}
}
