package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/layout"
	"github.com/iliyamo/event-ticketing/internal/layout/layouttest"
	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

type fakeEvents map[uint64]*model.Event

func (f fakeEvents) GetByID(_ context.Context, id uint64) (*model.Event, error) {
	if ev, ok := f[id]; ok {
		return ev, nil
	}
	return nil, repository.ErrEventNotFound
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, ev queue.ActivityEvent) error {
	return m.Called(ev).Error(0)
}

type recordingPurger struct{ paths []string }

func (p *recordingPurger) Purge(_ context.Context, path string) error {
	p.paths = append(p.paths, path)
	return nil
}

const (
	organizerID = uint64(10)
	testEvent   = uint64(1)
	testVenue   = uint64(7)
)

type layoutFixture struct {
	store  *layouttest.MemStore
	h      *LayoutHandler
	pub    *mockPublisher
	purger *recordingPurger
}

func newLayoutFixture(t *testing.T) *layoutFixture {
	t.Helper()
	st := layouttest.New()
	v := testVenue
	st.AddEvent(testEvent, &v)
	events := fakeEvents{testEvent: {ID: testEvent, VenueID: &v, OrganizerID: organizerID}}
	pub := &mockPublisher{}
	purger := &recordingPurger{}
	return &layoutFixture{
		store:  st,
		h:      NewLayoutHandler(layout.NewReconciler(st), events, pub, purger),
		pub:    pub,
		purger: purger,
	}
}

// call runs fn with the given identity and path parameters.
func call(fn echo.HandlerFunc, method, body string, uid uint64, role string, params map[string]string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for k, v := range params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	if role != "" {
		c.Set(middleware.CtxUserID, uid)
		c.Set(middleware.CtxRole, role)
	}
	_ = fn(c)
	return rec
}

type layoutBody struct {
	Message      string          `json:"message"`
	LayoutConfig json.RawMessage `json:"layoutConfig"`
	Seats        []model.Seat    `json:"seats"`
	Version      uint32          `json:"version"`
	Skipped      []layout.Skip   `json:"skipped"`
}

func decodeLayout(t *testing.T, rec *httptest.ResponseRecorder) layoutBody {
	t.Helper()
	var b layoutBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	return b
}

func TestLayoutPutThenGetRoundTrip(t *testing.T) {
	f := newLayoutFixture(t)
	f.pub.On("Publish", mock.MatchedBy(func(ev queue.ActivityEvent) bool {
		return ev.Action == queue.ActionLayoutChanged && ev.EventID == testEvent &&
			ev.UserID == organizerID && ev.AreasCreated == 1 && ev.SeatsCreated == 1
	})).Return(nil).Once()

	body := `{
		"configuracionCroquis": {"tables": [{"id": "new-table-1", "areaid": 1111111111, "nombre": "Mesa 1", "capacidad": 8, "tipo": "GENERAL"}]},
		"asientos": [{"codigo": "A1", "estado": "disponible", "areaID": 1111111111, "isNew": true}]
	}`
	params := map[string]string{"eventoID": "1"}
	put := call(f.h.Put, http.MethodPut, body, organizerID, model.RoleOrganizer, params)
	require.Equal(t, http.StatusOK, put.Code, put.Body.String())
	saved := decodeLayout(t, put)
	assert.Equal(t, "layout saved", saved.Message)
	assert.Equal(t, uint32(1), saved.Version)
	require.Len(t, saved.Seats, 1)
	assert.Equal(t, model.SeatAvailable, saved.Seats[0].State)

	get := call(f.h.Get, http.MethodGet, "", 99, model.RoleAttendee, params)
	require.Equal(t, http.StatusOK, get.Code)
	read := decodeLayout(t, get)
	assert.JSONEq(t, string(saved.LayoutConfig), string(read.LayoutConfig))
	assert.Equal(t, saved.Seats, read.Seats)
	assert.Equal(t, saved.Version, read.Version)

	assert.Equal(t, []string{"/v1/eventos/1/layout"}, f.purger.paths)
	f.pub.AssertExpectations(t)
}

func TestLayoutPutErrors(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		uid    uint64
		role   string
		body   string
		status int
		code   string
	}{
		{"invalid id", map[string]string{"eventoID": "abc"}, organizerID, model.RoleOrganizer, `{"asientos": []}`, 400, "VALIDATION"},
		{"unknown event", map[string]string{"eventoID": "404"}, organizerID, model.RoleOrganizer, `{"asientos": []}`, 404, "NOT_FOUND"},
		{"other organizer", map[string]string{"eventoID": "1"}, 11, model.RoleOrganizer, `{"asientos": []}`, 403, "FORBIDDEN"},
		{"malformed body", map[string]string{"eventoID": "1"}, organizerID, model.RoleOrganizer, `{"asientos": {}}`, 400, "VALIDATION"},
		{"missing seats", map[string]string{"eventoID": "1"}, organizerID, model.RoleOrganizer, `{}`, 400, "VALIDATION"},
		{"stale version", map[string]string{"eventoID": "1"}, 1, model.RoleAdmin, `{"asientos": [], "version": 3}`, 409, "CONFLICT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLayoutFixture(t)
			rec := call(f.h.Put, http.MethodPut, tt.body, tt.uid, tt.role, tt.params)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), tt.code)
			assert.Empty(t, f.purger.paths)
			f.pub.AssertNotCalled(t, "Publish", mock.Anything)
		})
	}
}

func TestLayoutPutIntegrityFaultIsOpaque(t *testing.T) {
	st := layouttest.New()
	st.AddEvent(2, nil)
	events := fakeEvents{2: {ID: 2, OrganizerID: organizerID}}
	h := NewLayoutHandler(layout.NewReconciler(st), events, nil, nil)

	rec := call(h.Put, http.MethodPut, `{"asientos": []}`, organizerID, model.RoleOrganizer, map[string]string{"eventoID": "2"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "internal server error", "code": "INTEGRITY"}`, rec.Body.String())
}

func TestLayoutPublishFailureDoesNotFailRequest(t *testing.T) {
	f := newLayoutFixture(t)
	f.pub.On("Publish", mock.Anything).Return(errors.New("broker down")).Once()

	rec := call(f.h.Put, http.MethodPut, `{"asientos": []}`, organizerID, model.RoleOrganizer, map[string]string{"eventoID": "1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	f.pub.AssertExpectations(t)
}

func TestLayoutDeleteArea(t *testing.T) {
	f := newLayoutFixture(t)
	areaID := f.store.AddArea(model.Area{VenueID: testVenue, Name: "Mesa 1", Capacity: 4, Type: model.AreaGeneral})
	keep := f.store.AddArea(model.Area{VenueID: testVenue, Name: "Mesa 2", Capacity: 4, Type: model.AreaGeneral})
	f.store.AddSeat(model.Seat{AreaID: areaID, Code: "A1", State: model.SeatAvailable})
	f.store.SetLayout(testEvent, `{"tables":[{"id":"area-1","areaid":1},{"id":"area-2","areaid":2}]}`, 4)
	f.pub.On("Publish", mock.MatchedBy(func(ev queue.ActivityEvent) bool {
		return ev.Action == queue.ActionAreaDeleted && ev.AreaID == areaID
	})).Return(nil).Once()

	rec := call(f.h.DeleteArea, http.MethodDelete, "", organizerID, model.RoleOrganizer,
		map[string]string{"eventoID": "1", "areaID": "1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	b := decodeLayout(t, rec)
	assert.Equal(t, "area deleted", b.Message)
	assert.Equal(t, uint32(5), b.Version)
	assert.Empty(t, b.Seats)
	assert.JSONEq(t, `{"tables":[{"id":"area-2","areaid":2}]}`, string(b.LayoutConfig))

	_, ok := f.store.Area(keep)
	assert.True(t, ok)
	assert.Equal(t, []string{"/v1/eventos/1/layout"}, f.purger.paths)
	f.pub.AssertExpectations(t)
}

func TestLayoutDeleteForeignAreaIsNotFound(t *testing.T) {
	f := newLayoutFixture(t)
	foreign := f.store.AddArea(model.Area{VenueID: 99, Name: "X", Capacity: 1, Type: model.AreaGeneral})
	commits := f.store.Commits

	rec := call(f.h.DeleteArea, http.MethodDelete, "", organizerID, model.RoleOrganizer,
		map[string]string{"eventoID": "1", "areaID": "1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	_, ok := f.store.Area(foreign)
	assert.True(t, ok)
	assert.Equal(t, commits, f.store.Commits)
	assert.Empty(t, f.purger.paths)
}

func TestLayoutGetWithoutLayout(t *testing.T) {
	f := newLayoutFixture(t)
	rec := call(f.h.Get, http.MethodGet, "", 5, model.RoleAttendee, map[string]string{"eventoID": "1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"layoutConfig": null, "seats": [], "version": 0}`, rec.Body.String())

	rec = call(f.h.Get, http.MethodGet, "", 5, model.RoleAttendee, map[string]string{"eventoID": "3"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLayoutDeleteAreaParsesIDsBeforeLookup(t *testing.T) {
	f := newLayoutFixture(t)
	for name, params := range map[string]map[string]string{
		"bad area on unknown event":  {"eventoID": "404", "areaID": "abc"},
		"zero area on unknown event": {"eventoID": "404", "areaID": "0"},
		"bad event":                  {"eventoID": "x", "areaID": "1"},
	} {
		t.Run(name, func(t *testing.T) {
			rec := call(f.h.DeleteArea, http.MethodDelete, "", organizerID, model.RoleOrganizer, params)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
	assert.Zero(t, f.store.Commits)
}

func TestLayoutPutReportsDroppedTables(t *testing.T) {
	f := newLayoutFixture(t)
	f.pub.On("Publish", mock.Anything).Return(nil)
	body := `{"configuracionCroquis": {"tables": [{"id": "t", "areaid": 999}]}, "asientos": []}`
	rec := call(f.h.Put, http.MethodPut, body, organizerID, model.RoleOrganizer, map[string]string{"eventoID": "1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var b struct {
		LayoutConfig json.RawMessage    `json:"layoutConfig"`
		Dropped      []layout.TableSkip `json:"droppedTables"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.JSONEq(t, `{"tables":[]}`, string(b.LayoutConfig))
	require.Len(t, b.Dropped, 1)
	assert.Equal(t, layout.SkipAreaNotFound, b.Dropped[0].Reason)
}
