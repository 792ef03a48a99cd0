package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// ErrEventNotFound is returned when an event lookup fails.
var ErrEventNotFound = errors.New("event not found")

// EventRepo provides CRUD over events and the event -> venue lookup the
// layout reconciler depends on.
type EventRepo struct {
	db database.DBTX
}

func NewEventRepo(db database.DBTX) *EventRepo {
	return &EventRepo{db: db}
}

// WithTx returns a copy bound to tx.
func (r *EventRepo) WithTx(tx *sql.Tx) *EventRepo {
	return &EventRepo{db: tx}
}

const eventColumns = `id, name, starts_at, ends_at, price, capacity, sold_count, status, venue_id, organizer_id, created_at, updated_at`

func scanEvent(sc interface{ Scan(...interface{}) error }) (*model.Event, error) {
	var (
		e       model.Event
		endsAt  sql.NullTime
		venueID sql.NullInt64
	)
	if err := sc.Scan(&e.ID, &e.Name, &e.StartsAt, &endsAt, &e.Price, &e.Capacity, &e.SoldCount,
		&e.Status, &venueID, &e.OrganizerID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if endsAt.Valid {
		t := endsAt.Time
		e.EndsAt = &t
	}
	if venueID.Valid {
		id := uint64(venueID.Int64)
		e.VenueID = &id
	}
	return &e, nil
}

// Create inserts an event.  A venue that does not exist yields
// ErrVenueNotFound.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO events (name, starts_at, ends_at, price, capacity, status, venue_id, organizer_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Name, e.StartsAt, e.EndsAt, e.Price, e.Capacity, e.Status, e.VenueID, e.OrganizerID)
	if err != nil {
		if isForeignKey(err) {
			return ErrVenueNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*e = *got
	return nil
}

// GetByID returns ErrEventNotFound when no row matches.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return e, err
}

// List returns events ordered by start time.  organizerID == 0 lists all.
func (r *EventRepo) List(ctx context.Context, organizerID uint64) ([]*model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events`
	var args []interface{}
	if organizerID != 0 {
		q += ` WHERE organizer_id = ?`
		args = append(args, organizerID)
	}
	q += ` ORDER BY starts_at, id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update overwrites the mutable fields of an event.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE events SET name = ?, starts_at = ?, ends_at = ?, price = ?, capacity = ?, status = ?, venue_id = ?
		 WHERE id = ?`,
		e.Name, e.StartsAt, e.EndsAt, e.Price, e.Capacity, e.Status, e.VenueID, e.ID)
	if err != nil {
		if isForeignKey(err) {
			return ErrVenueNotFound
		}
		return err
	}
	got, err := r.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	*e = *got
	return nil
}

// Delete removes an event; its layout document and activity cascade.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// VenueOf resolves the venue of an event.  A nil id with a nil error means the
// event exists but has no venue.
func (r *EventRepo) VenueOf(ctx context.Context, eventID uint64) (*uint64, error) {
	var venueID sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT venue_id FROM events WHERE id = ?`, eventID).Scan(&venueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if !venueID.Valid {
		return nil, nil
	}
	id := uint64(venueID.Int64)
	return &id, nil
}
