package handler // handler package contains the venue/event/area/seat administration handlers

import (
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// CatalogHandler bundles repositories for administering venues, events,
// areas and seats.
type CatalogHandler struct {
	Venues *repository.VenueRepo // Venues provides venue persistence
	Events *repository.EventRepo // Events provides event persistence
	Areas  *repository.AreaRepo  // Areas provides area persistence
	Seats  *repository.SeatRepo  // Seats provides seat persistence
}

// NewCatalogHandler constructs a CatalogHandler and panics if any dependency is nil
func NewCatalogHandler(venues *repository.VenueRepo, events *repository.EventRepo, areas *repository.AreaRepo, seats *repository.SeatRepo) *CatalogHandler {
	if venues == nil || events == nil || areas == nil || seats == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Venues: venues, Events: events, Areas: areas, Seats: seats}
}
