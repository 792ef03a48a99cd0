package handler // handler package contains seat listing handlers

import (
	"net/http" // http defines status code constants
	"sort"     // sort provides sorting helpers
	"strconv"  // strconv formats seat columns
	"strings"  // strings builds the pretty row strings

	"github.com/labstack/echo/v4" // echo provides request context and JSON helpers

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/model"
)

type gridRow struct {
	Row     int            `json:"fila"`
	Label   string         `json:"etiqueta"`
	Columns []int          `json:"columnas"`
	Seats   []gridRowEntry `json:"asientos"`
}

type gridRowEntry struct {
	ID    uint64          `json:"id"`
	Code  string          `json:"codigo"`
	Col   int             `json:"columna"`
	State model.SeatState `json:"estado"`
}

// ListSeatGrid handles GET /v1/areas/:areaID/asientos/grid and returns the
// seats of an area grouped per row.  Seats without coordinates are listed
// under "sinUbicar".  ?estado= filters by state.
func (h *CatalogHandler) ListSeatGrid(c echo.Context) error {
	areaID, err := parseID(c, "areaID") // parse area ID from path
	if err != nil {
		return respondError(c, err)
	}
	var want model.SeatState // optional state filter
	if v := strings.TrimSpace(c.QueryParam("estado")); v != "" {
		st, ok := model.ParseSeatState(v)
		if !ok {
			return respondError(c, apperr.Validation("invalid estado"))
		}
		want = st
	}
	ctx := c.Request().Context()
	if _, err := h.Areas.GetByID(ctx, areaID); err != nil { // verify the area exists
		return respondError(c, err)
	}
	seats, err := h.Seats.ListByArea(ctx, areaID) // seats come ordered by row and column
	if err != nil {
		return respondError(c, err)
	}
	if want != "" {
		filtered := make([]model.Seat, 0, len(seats))
		for _, s := range seats {
			if s.State == want {
				filtered = append(filtered, s)
			}
		}
		seats = filtered
	}
	rows, unplaced, maxCols := buildSeatGrid(seats)

	// pretty strings like "A: 1, 2, 3" for quick display
	pretty := make([]string, 0, len(rows))
	for _, r := range rows {
		var b strings.Builder
		b.WriteString(r.Label)
		b.WriteString(": ")
		for i, n := range r.Columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Itoa(n))
		}
		pretty = append(pretty, b.String())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"areaID":    areaID,
		"count":     len(seats),
		"maxCols":   maxCols,
		"filas":     rows,
		"sinUbicar": unplaced,
		"pretty":    pretty,
	})
}

// buildSeatGrid groups seats by row.  Rows and columns are sorted ascending;
// seats missing either coordinate are returned separately.
func buildSeatGrid(seats []model.Seat) ([]gridRow, []model.Seat, int) {
	byRow := make(map[int]*gridRow) // row number -> grouped seats
	unplaced := []model.Seat{}
	maxCols := 0
	for _, s := range seats {
		if s.Row == nil || s.Col == nil {
			unplaced = append(unplaced, s)
			continue
		}
		r, ok := byRow[*s.Row]
		if !ok {
			r = &gridRow{Row: *s.Row, Label: indexToRowLabel(*s.Row)}
			byRow[*s.Row] = r
		}
		r.Columns = append(r.Columns, *s.Col)
		r.Seats = append(r.Seats, gridRowEntry{ID: s.ID, Code: s.Code, Col: *s.Col, State: s.State})
		if *s.Col > maxCols {
			maxCols = *s.Col
		}
	}
	out := make([]gridRow, 0, len(byRow))
	for _, r := range byRow {
		sort.Ints(r.Columns)
		sort.Slice(r.Seats, func(i, j int) bool { return r.Seats[i].Col < r.Seats[j].Col })
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Row < out[j].Row })
	return out, unplaced, maxCols
}

// indexToRowLabel converts a zero-based index to an alphabetical row label like A, B, AA
func indexToRowLabel(i int) string {
	if i < 0 { // negative indices are invalid
		return ""
	}
	res := []rune{}
	for {
		rem := i % 26
		res = append(res, rune('A'+rem))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 { // reverse the runes to build the label
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}
