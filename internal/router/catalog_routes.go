package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// RegisterCatalog registers venue, event, area and seat administration under
// /v1.  Reads are open to every authenticated role; writes need ADMIN for
// venues and ORGANIZER or ADMIN for the rest.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, opt Options) {
	g := e.Group("/v1", protected(opt)...)
	admin := middleware.RequireRole(model.RoleAdmin)
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleOrganizer)

	// ---- Venues ----
	g.GET("/venues", h.ListVenues)
	g.GET("/venues/:id", h.GetVenue)
	g.POST("/venues", h.CreateVenue, admin)
	g.PUT("/venues/:id", h.UpdateVenue, admin)
	g.DELETE("/venues/:id", h.DeleteVenue, admin)

	// ---- Events ----
	g.GET("/eventos", h.ListEvents)
	g.GET("/eventos/:eventoID", h.GetEvent)
	g.POST("/eventos", h.CreateEvent, staff)
	g.PUT("/eventos/:eventoID", h.UpdateEvent, staff)
	g.DELETE("/eventos/:eventoID", h.DeleteEvent, staff)

	// ---- Areas ----
	g.GET("/venues/:id/areas", h.ListAreas)
	g.POST("/venues/:id/areas", h.CreateArea, staff)
	g.PUT("/areas/:areaID", h.UpdateArea, staff)

	// ---- Seats ----
	g.GET("/areas/:areaID/asientos", h.ListSeats)
	g.GET("/areas/:areaID/asientos/grid", h.ListSeatGrid)
	g.POST("/areas/:areaID/asientos", h.CreateSeat, staff)
	g.PUT("/asientos/:seatID", h.UpdateSeat, staff)
	g.DELETE("/asientos/:seatID", h.DeleteSeat, staff)
}
