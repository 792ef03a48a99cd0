package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/ticketing"
)

// TicketLookup loads a ticket with its printable details.
type TicketLookup interface {
	GetDetail(ctx context.Context, id uint64) (*model.TicketDetail, error)
}

// TicketHandler serves QR and PDF renderings of issued tickets.
type TicketHandler struct {
	Tickets TicketLookup
}

func NewTicketHandler(t TicketLookup) *TicketHandler {
	return &TicketHandler{Tickets: t}
}

// load returns the ticket when the caller owns it or is staff.
func (h *TicketHandler) load(c echo.Context) (*model.TicketDetail, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	t, err := h.Tickets.GetDetail(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	switch getRole(c) {
	case model.RoleAdmin, model.RoleOrganizer:
		return t, nil
	}
	if uid, err := getUserID(c); err != nil || uid != t.UserID {
		// Hide the ticket's existence from other attendees.
		return nil, apperr.NotFound("ticket not found")
	}
	return t, nil
}

// QR handles GET /v1/tickets/:id/qr.  ?size= selects the edge in pixels.
func (h *TicketHandler) QR(c echo.Context) error {
	t, err := h.load(c)
	if err != nil {
		return respondError(c, err)
	}
	size := ticketing.QRSizeStandard
	if s := c.QueryParam("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 64 || n > 1024 {
			return respondError(c, apperr.Validation("size must be between 64 and 1024"))
		}
		size = n
	}
	png, err := ticketing.QRPNG(t.Code, size)
	if err != nil {
		return respondError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// PDF handles GET /v1/tickets/:id/pdf.
func (h *TicketHandler) PDF(c echo.Context) error {
	t, err := h.load(c)
	if err != nil {
		return respondError(c, err)
	}
	doc, err := ticketing.TicketPDF(t)
	if err != nil {
		return respondError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`inline; filename="ticket-%d.pdf"`, t.ID))
	return c.Blob(http.StatusOK, "application/pdf", doc)
}
