package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/model"
)

type areaReq struct {
	Name     string `json:"nombre" validate:"required,max=100"`
	Capacity uint32 `json:"capacidad" validate:"required,gt=0"`
	Type     string `json:"tipo"`
}

func (r areaReq) areaType() (model.AreaType, error) {
	if strings.TrimSpace(r.Type) == "" {
		return model.DefaultAreaType, nil
	}
	t, ok := model.ParseAreaType(r.Type)
	if !ok {
		return "", apperr.Validationf("tipo must be one of %s, %s, %s, %s",
			model.AreaGeneral, model.AreaVIP, model.AreaStage, model.AreaReserved)
	}
	return t, nil
}

// CreateArea handles POST /v1/venues/:id/areas.
func (h *CatalogHandler) CreateArea(c echo.Context) error {
	venueID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req areaReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	typ, err := req.areaType()
	if err != nil {
		return respondError(c, err)
	}
	a := &model.Area{VenueID: venueID, Name: strings.TrimSpace(req.Name), Capacity: req.Capacity, Type: typ}
	if err := h.Areas.Create(c.Request().Context(), a); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

// ListAreas handles GET /v1/venues/:id/areas.
func (h *CatalogHandler) ListAreas(c echo.Context) error {
	venueID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	if _, err := h.Venues.GetByID(ctx, venueID); err != nil {
		return respondError(c, err)
	}
	list, err := h.Areas.ListByVenue(ctx, venueID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// UpdateArea handles PUT /v1/areas/:areaID.  The venue of an area never
// changes.
func (h *CatalogHandler) UpdateArea(c echo.Context) error {
	id, err := parseID(c, "areaID")
	if err != nil {
		return respondError(c, err)
	}
	var req areaReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	typ, err := req.areaType()
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	if _, err := h.Areas.GetByID(ctx, id); err != nil {
		return respondError(c, err)
	}
	a := &model.Area{ID: id, Name: strings.TrimSpace(req.Name), Capacity: req.Capacity, Type: typ}
	if err := h.Areas.Update(ctx, a); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}
