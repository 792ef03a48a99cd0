package layout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// SQLStore implements Store over the MySQL repositories.
type SQLStore struct {
	db      *sql.DB
	events  *repository.EventRepo
	areas   *repository.AreaRepo
	seats   *repository.SeatRepo
	layouts *repository.LayoutRepo
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		db:      db,
		events:  repository.NewEventRepo(db),
		areas:   repository.NewAreaRepo(db),
		seats:   repository.NewSeatRepo(db),
		layouts: repository.NewLayoutRepo(db),
	}
}

func (s *SQLStore) Reader() Reader {
	return &sqlTx{events: s.events, areas: s.areas, seats: s.seats, layouts: s.layouts}
}

func (s *SQLStore) Update(ctx context.Context, fn func(Tx) error) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(&sqlTx{
			events:  s.events.WithTx(tx),
			areas:   s.areas.WithTx(tx),
			seats:   s.seats.WithTx(tx),
			layouts: s.layouts.WithTx(tx),
		})
	})
}

type sqlTx struct {
	events  *repository.EventRepo
	areas   *repository.AreaRepo
	seats   *repository.SeatRepo
	layouts *repository.LayoutRepo
}

// notFound folds the repository sentinels into ErrNotFound.
func notFound(err error) error {
	switch {
	case errors.Is(err, repository.ErrEventNotFound),
		errors.Is(err, repository.ErrAreaNotFound),
		errors.Is(err, repository.ErrSeatNotFound):
		return ErrNotFound
	}
	return err
}

func (t *sqlTx) VenueOfEvent(ctx context.Context, eventID uint64) (*uint64, error) {
	id, err := t.events.VenueOf(ctx, eventID)
	return id, notFound(err)
}

func (t *sqlTx) GetLayout(ctx context.Context, eventID uint64) (*model.EventLayout, error) {
	l, err := t.layouts.GetByEvent(ctx, eventID)
	if errors.Is(err, repository.ErrLayoutNotFound) {
		return nil, nil
	}
	return l, err
}

func (t *sqlTx) ListVenueSeats(ctx context.Context, venueID uint64) ([]model.Seat, error) {
	return t.seats.ListByVenue(ctx, venueID)
}

func (t *sqlTx) LockLayout(ctx context.Context, eventID uint64) (*model.EventLayout, error) {
	l, err := t.layouts.LockByEvent(ctx, eventID)
	if errors.Is(err, repository.ErrLayoutNotFound) {
		return nil, nil
	}
	return l, err
}

func (t *sqlTx) SaveLayout(ctx context.Context, eventID uint64, config json.RawMessage, version uint32) error {
	return notFound(t.layouts.Save(ctx, eventID, config, version))
}

func (t *sqlTx) CreateArea(ctx context.Context, a *model.Area) error {
	return t.areas.Create(ctx, a)
}

func (t *sqlTx) AreaVenue(ctx context.Context, areaID uint64) (uint64, error) {
	id, err := t.areas.VenueOf(ctx, areaID)
	return id, notFound(err)
}

func (t *sqlTx) DeleteArea(ctx context.Context, areaID uint64) error {
	return notFound(t.areas.Delete(ctx, areaID))
}

func (t *sqlTx) CreateSeat(ctx context.Context, s *model.Seat) error {
	return notFound(t.seats.Create(ctx, s))
}

func (t *sqlTx) SeatVenue(ctx context.Context, seatID uint64) (uint64, error) {
	id, err := t.seats.VenueOf(ctx, seatID)
	return id, notFound(err)
}

func (t *sqlTx) UpdateSeatState(ctx context.Context, seatID uint64, state model.SeatState) error {
	return notFound(t.seats.UpdateState(ctx, seatID, state))
}
