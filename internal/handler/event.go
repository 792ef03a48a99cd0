package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/model"
)

type eventReq struct {
	Name     string     `json:"nombre" validate:"required,max=200"`
	StartsAt time.Time  `json:"fechaInicio" validate:"required"`
	EndsAt   *time.Time `json:"fechaFin"`
	Price    float64    `json:"precio" validate:"gte=0"`
	Capacity uint32     `json:"capacidad"`
	Status   string     `json:"estado"`
	VenueID  *uint64    `json:"venueID"`
}

// toModel validates the cross-field rules the struct tags cannot express.
func (r eventReq) toModel() (*model.Event, error) {
	status, ok := model.ParseEventStatus(r.Status)
	if !ok {
		return nil, apperr.Validationf("estado must be one of %s, %s, %s, %s",
			model.EventDraft, model.EventPublished, model.EventCancelled, model.EventFinished)
	}
	if r.EndsAt != nil && r.EndsAt.Before(r.StartsAt) {
		return nil, apperr.Validation("fechaFin must not precede fechaInicio")
	}
	if r.VenueID != nil && *r.VenueID == 0 {
		r.VenueID = nil
	}
	return &model.Event{
		Name:     strings.TrimSpace(r.Name),
		StartsAt: r.StartsAt,
		EndsAt:   r.EndsAt,
		Price:    r.Price,
		Capacity: r.Capacity,
		Status:   status,
		VenueID:  r.VenueID,
	}, nil
}

// CreateEvent handles POST /v1/eventos.  The caller becomes the organizer.
func (h *CatalogHandler) CreateEvent(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "code": "UNAUTHORIZED"})
	}
	var req eventReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	ev, err := req.toModel()
	if err != nil {
		return respondError(c, err)
	}
	ev.OrganizerID = uid
	if err := h.Events.Create(c.Request().Context(), ev); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, ev)
}

// ListEvents handles GET /v1/eventos.  Organizers see their own events,
// everyone else sees all of them.
func (h *CatalogHandler) ListEvents(c echo.Context) error {
	var organizer uint64
	if getRole(c) == model.RoleOrganizer {
		organizer, _ = getUserID(c)
	}
	list, err := h.Events.List(c.Request().Context(), organizer)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// GetEvent handles GET /v1/eventos/:eventoID.
func (h *CatalogHandler) GetEvent(c echo.Context) error {
	id, err := parseID(c, "eventoID")
	if err != nil {
		return respondError(c, err)
	}
	ev, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ev)
}

// loadManaged loads an event the caller is allowed to modify.
func (h *CatalogHandler) loadManaged(c echo.Context) (*model.Event, error) {
	id, err := parseID(c, "eventoID")
	if err != nil {
		return nil, err
	}
	ev, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if !canManage(c, ev) {
		return nil, apperr.Forbidden("event belongs to another organizer")
	}
	return ev, nil
}

// UpdateEvent handles PUT /v1/eventos/:eventoID.
func (h *CatalogHandler) UpdateEvent(c echo.Context) error {
	cur, err := h.loadManaged(c)
	if err != nil {
		return respondError(c, err)
	}
	var req eventReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	ev, err := req.toModel()
	if err != nil {
		return respondError(c, err)
	}
	ev.ID, ev.OrganizerID = cur.ID, cur.OrganizerID
	if err := h.Events.Update(c.Request().Context(), ev); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ev)
}

// DeleteEvent handles DELETE /v1/eventos/:eventoID.  The layout document
// cascades with it.
func (h *CatalogHandler) DeleteEvent(c echo.Context) error {
	ev, err := h.loadManaged(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Events.Delete(c.Request().Context(), ev.ID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
