package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
)

type venueReq struct {
	Name        string `json:"nombre" validate:"required,max=150"`
	Address     string `json:"direccion" validate:"max=255"`
	MaxCapacity uint32 `json:"capacidadMaxima" validate:"gte=0"`
}

// CreateVenue handles POST /v1/venues.
func (h *CatalogHandler) CreateVenue(c echo.Context) error {
	var req venueReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	v := &model.Venue{
		Name:        strings.TrimSpace(req.Name),
		Address:     strings.TrimSpace(req.Address),
		MaxCapacity: req.MaxCapacity,
	}
	if err := h.Venues.Create(c.Request().Context(), v); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

// ListVenues handles GET /v1/venues.
func (h *CatalogHandler) ListVenues(c echo.Context) error {
	list, err := h.Venues.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// GetVenue handles GET /v1/venues/:id.
func (h *CatalogHandler) GetVenue(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	v, err := h.Venues.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// UpdateVenue handles PUT /v1/venues/:id.
func (h *CatalogHandler) UpdateVenue(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req venueReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	v := &model.Venue{ID: id, Name: strings.TrimSpace(req.Name), Address: strings.TrimSpace(req.Address), MaxCapacity: req.MaxCapacity}
	if err := h.Venues.Update(ctx, v); err != nil {
		return respondError(c, err)
	}
	got, err := h.Venues.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, got)
}

// DeleteVenue handles DELETE /v1/venues/:id.  Venues still hosting events
// answer 409.
func (h *CatalogHandler) DeleteVenue(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Venues.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
