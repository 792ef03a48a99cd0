package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/repository"
)

type fakeSearcher struct {
	got repository.EventSearchQuery
}

func (f *fakeSearcher) SearchPublished(_ context.Context, q repository.EventSearchQuery) ([]repository.PublicEventRow, int64, error) {
	f.got = q
	return []repository.PublicEventRow{{ID: 1, Name: "Gala"}}, 1, nil
}

func TestSearchEventsNormalisesPaging(t *testing.T) {
	s := &fakeSearcher{}
	h := NewPublicHandler(s)
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/public/eventos?nombre=%20gala%20&page=0&page_size=500", nil), rec)
	require.NoError(t, h.SearchEvents(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, repository.EventSearchQuery{Name: "gala", TimeFilter: "upcoming", Page: 1, PageSize: 100}, s.got)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/public/eventos?time=past", nil), rec)
	require.NoError(t, h.SearchEvents(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
