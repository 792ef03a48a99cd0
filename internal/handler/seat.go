package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/model"
)

type seatReq struct {
	Code   string  `json:"codigo" validate:"required,max=20"`
	Row    *int    `json:"fila" validate:"omitempty,gte=0"`
	Col    *int    `json:"columna" validate:"omitempty,gte=0"`
	State  string  `json:"estado"`
	AreaID *uint64 `json:"areaID"`
}

func (r seatReq) state() (model.SeatState, error) {
	if strings.TrimSpace(r.State) == "" {
		return model.SeatAvailable, nil
	}
	st, ok := model.ParseSeatState(r.State)
	if !ok {
		return "", apperr.Validationf("estado must be one of %s, %s, %s, %s",
			model.SeatAvailable, model.SeatOccupied, model.SeatReserved, model.SeatBlocked)
	}
	return st, nil
}

// CreateSeat handles POST /v1/areas/:areaID/asientos.
func (h *CatalogHandler) CreateSeat(c echo.Context) error {
	areaID, err := parseID(c, "areaID")
	if err != nil {
		return respondError(c, err)
	}
	var req seatReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	st, err := req.state()
	if err != nil {
		return respondError(c, err)
	}
	s := &model.Seat{AreaID: areaID, Code: strings.TrimSpace(req.Code), Row: req.Row, Col: req.Col, State: st}
	if err := h.Seats.Create(c.Request().Context(), s); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

// ListSeats handles GET /v1/areas/:areaID/asientos, ordered by row and column.
func (h *CatalogHandler) ListSeats(c echo.Context) error {
	areaID, err := parseID(c, "areaID")
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	if _, err := h.Areas.GetByID(ctx, areaID); err != nil {
		return respondError(c, err)
	}
	seats, err := h.Seats.ListByArea(ctx, areaID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, seats)
}

// UpdateSeat handles PUT /v1/asientos/:seatID.  Every field is overwritten;
// areaID may move the seat to another area of the same venue.
func (h *CatalogHandler) UpdateSeat(c echo.Context) error {
	id, err := parseID(c, "seatID")
	if err != nil {
		return respondError(c, err)
	}
	var req seatReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	st, err := req.state()
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	cur, err := h.Seats.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	areaID := cur.AreaID
	if req.AreaID != nil && *req.AreaID != cur.AreaID {
		from, err := h.Areas.VenueOf(ctx, cur.AreaID)
		if err != nil {
			return respondError(c, err)
		}
		to, err := h.Areas.VenueOf(ctx, *req.AreaID)
		if err != nil {
			return respondError(c, err)
		}
		if from != to {
			return respondError(c, apperr.Validation("areaID belongs to another venue"))
		}
		areaID = *req.AreaID
	}
	s := &model.Seat{ID: id, AreaID: areaID, Code: strings.TrimSpace(req.Code), Row: req.Row, Col: req.Col, State: st}
	if err := h.Seats.Update(ctx, s); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// DeleteSeat handles DELETE /v1/asientos/:seatID.
func (h *CatalogHandler) DeleteSeat(c echo.Context) error {
	id, err := parseID(c, "seatID")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Seats.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
