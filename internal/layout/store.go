package layout

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// ErrNotFound is returned by stores for a missing event, area or seat.
var ErrNotFound = errors.New("layout: not found")

// Reader is the read side used outside transactions.
type Reader interface {
	// VenueOfEvent returns ErrNotFound for an unknown event and a nil id for
	// an event without a venue.
	VenueOfEvent(ctx context.Context, eventID uint64) (*uint64, error)
	// GetLayout returns nil when the event has no stored layout.
	GetLayout(ctx context.Context, eventID uint64) (*model.EventLayout, error)
	// ListVenueSeats returns every seat of the venue ordered by id.
	ListVenueSeats(ctx context.Context, venueID uint64) ([]model.Seat, error)
}

// Tx is the set of primitives a reconciliation runs inside one transaction.
type Tx interface {
	Reader
	// LockLayout reads the layout and holds it until the transaction ends.
	LockLayout(ctx context.Context, eventID uint64) (*model.EventLayout, error)
	SaveLayout(ctx context.Context, eventID uint64, config json.RawMessage, version uint32) error

	CreateArea(ctx context.Context, a *model.Area) error
	AreaVenue(ctx context.Context, areaID uint64) (uint64, error)
	DeleteArea(ctx context.Context, areaID uint64) error

	CreateSeat(ctx context.Context, s *model.Seat) error
	SeatVenue(ctx context.Context, seatID uint64) (uint64, error)
	UpdateSeatState(ctx context.Context, seatID uint64, state model.SeatState) error
}

// Store runs fn in a transaction: committed when fn returns nil, rolled back
// otherwise.
type Store interface {
	Reader() Reader
	Update(ctx context.Context, fn func(Tx) error) error
}
