package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/handler"
)

// RegisterTickets registers ticket rendering endpoints.  Any authenticated
// role may call them; the handler restricts attendees to their own tickets.
func RegisterTickets(e *echo.Echo, h *handler.TicketHandler, opt Options) {
	g := e.Group("/v1/tickets", protected(opt)...)
	g.GET("/:id/qr", h.QR)
	g.GET("/:id/pdf", h.PDF)
}
