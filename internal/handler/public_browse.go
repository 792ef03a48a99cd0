// This file defines handlers for the public browsing API.  These routes let
// unauthenticated users find published events without an account.  Internal
// fields (organizer ids, timestamps) are left out of responses.

package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/repository"
)

// EventSearcher pages through published events.
type EventSearcher interface {
	SearchPublished(ctx context.Context, q repository.EventSearchQuery) ([]repository.PublicEventRow, int64, error)
}

// PublicHandler serves unauthenticated browsing.
type PublicHandler struct {
	Events EventSearcher
}

func NewPublicHandler(events EventSearcher) *PublicHandler {
	return &PublicHandler{Events: events}
}

// SearchEvents handles GET /v1/public/eventos.
// time: "upcoming" (default), "active" (not yet over), "any" (no time filter)
func (h *PublicHandler) SearchEvents(c echo.Context) error {
	timeFilter := strings.ToLower(strings.TrimSpace(c.QueryParam("time")))
	switch timeFilter {
	case "":
		timeFilter = "upcoming"
	case "upcoming", "active", "any":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time must be upcoming, active or any", "code": "VALIDATION"})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))
	if ps < 1 {
		ps = 20
	}
	if ps > 100 {
		ps = 100
	}

	q := repository.EventSearchQuery{
		Name:       strings.TrimSpace(c.QueryParam("nombre")),
		Venue:      strings.TrimSpace(c.QueryParam("venue")),
		TimeFilter: timeFilter,
		Page:       page,
		PageSize:   ps,
	}
	items, total, err := h.Events.SearchPublished(c.Request().Context(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":      items,
		"total":     total,
		"page":      page,
		"page_size": ps,
	})
}
