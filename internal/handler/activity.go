package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// ActivityLister reads the activity feed of an event.
type ActivityLister interface {
	ListByEvent(ctx context.Context, eventID uint64, limit int) ([]model.ActivityLog, error)
}

// ActivityHandler serves the per-event activity feed written by the queue
// consumer.
type ActivityHandler struct {
	Events   EventLookup
	Activity ActivityLister
}

func NewActivityHandler(events EventLookup, activity ActivityLister) *ActivityHandler {
	return &ActivityHandler{Events: events, Activity: activity}
}

// List handles GET /v1/eventos/:eventoID/actividad?limit=.
func (h *ActivityHandler) List(c echo.Context) error {
	eventID, err := parseID(c, "eventoID")
	if err != nil {
		return respondError(c, err)
	}
	limit := 50
	if s := c.QueryParam("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil || limit <= 0 {
			return respondError(c, apperr.Validation("limit must be a positive integer"))
		}
	}
	ctx := c.Request().Context()
	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		return respondError(c, err)
	}
	if !canManage(c, ev) {
		return respondError(c, apperr.Forbidden("event belongs to another organizer"))
	}
	list, err := h.Activity.ListByEvent(ctx, eventID, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
