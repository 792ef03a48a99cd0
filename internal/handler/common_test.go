package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

func TestRespondErrorMapsRepositorySentinels(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   apperr.Code
	}{
		{repository.ErrVenueNotFound, 404, apperr.CodeNotFound},
		{repository.ErrSeatNotFound, 404, apperr.CodeNotFound},
		{repository.ErrConflict, 409, apperr.CodeConflict},
		{apperr.Validation("bad"), 400, apperr.CodeValidation},
		{context.DeadlineExceeded, 500, apperr.CodeInternal},
	}
	for _, tt := range tests {
		rec := call(func(c echo.Context) error { return respondError(c, tt.err) }, http.MethodGet, "", 0, "", nil)
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
		assert.Contains(t, rec.Body.String(), string(tt.code))
	}
}

func TestHTTPErrorHandler(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/nope", nil), rec)
	HTTPErrorHandler(echo.ErrNotFound, c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "Not Found", "code": "NOT_FOUND"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	HTTPErrorHandler(apperr.Integrity("event has no venue"), c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "venue")
}

func TestValidator(t *testing.T) {
	v := NewValidator()
	err := v.Validate(&areaReq{Name: "", Capacity: 4})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
	assert.NoError(t, v.Validate(&areaReq{Name: "Mesa", Capacity: 4}))
}

func TestParseID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	for raw, ok := range map[string]bool{"12": true, "0": false, "-1": false, "x": false} {
		c.SetParamValues(raw)
		_, err := parseID(c, "id")
		assert.Equal(t, ok, err == nil, raw)
	}
}

func TestSelfRegisterRole(t *testing.T) {
	assert.Equal(t, model.RoleOrganizer, selfRegisterRole(" organizer "))
	assert.Equal(t, model.RoleAttendee, selfRegisterRole("ADMIN"))
	assert.Equal(t, model.RoleAttendee, selfRegisterRole(""))
}

func TestCanManage(t *testing.T) {
	e := echo.New()
	ev := &model.Event{ID: 1, OrganizerID: 5}
	for _, tt := range []struct {
		uid  uint64
		role string
		want bool
	}{
		{1, model.RoleAdmin, true},
		{5, model.RoleOrganizer, true},
		{6, model.RoleOrganizer, false},
		{5, model.RoleAttendee, false},
	} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.Set(middleware.CtxUserID, tt.uid)
		c.Set(middleware.CtxRole, tt.role)
		assert.Equal(t, tt.want, canManage(c, ev), "%d %s", tt.uid, tt.role)
	}
}

func TestEventReqValidation(t *testing.T) {
	_, err := eventReq{Name: "X", Status: "ABIERTO"}.toModel()
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	zero := uint64(0)
	ev, err := eventReq{Name: " Gala ", VenueID: &zero}.toModel()
	require.NoError(t, err)
	assert.Equal(t, "Gala", ev.Name)
	assert.Equal(t, model.EventDraft, ev.Status)
	assert.Nil(t, ev.VenueID)
}
