package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// ErrVenueNotFound is returned when a venue lookup fails.
var ErrVenueNotFound = errors.New("venue not found")

// VenueRepo provides CRUD over the venues table.
type VenueRepo struct {
	db database.DBTX
}

func NewVenueRepo(db database.DBTX) *VenueRepo {
	return &VenueRepo{db: db}
}

const venueColumns = `id, name, address, max_capacity, created_at, updated_at`

func scanVenue(sc interface{ Scan(...interface{}) error }) (*model.Venue, error) {
	var v model.Venue
	if err := sc.Scan(&v.ID, &v.Name, &v.Address, &v.MaxCapacity, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a venue and reloads it so timestamps are populated.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO venues (name, address, max_capacity) VALUES (?, ?, ?)`,
		v.Name, v.Address, v.MaxCapacity)
	if err != nil {
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
	*v = *got
	return nil
}

// GetByID returns ErrVenueNotFound when no row matches.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*model.Venue, error) {
	v, err := scanVenue(r.db.QueryRowContext(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVenueNotFound
	}
	return v, err
}

// List returns all venues ordered by id.
func (r *VenueRepo) List(ctx context.Context) ([]*model.Venue, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+venueColumns+` FROM venues ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Update overwrites the mutable fields of a venue.
func (r *VenueRepo) Update(ctx context.Context, v *model.Venue) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE venues SET name = ?, address = ?, max_capacity = ? WHERE id = ?`,
		v.Name, v.Address, v.MaxCapacity, v.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, v.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a venue together with its areas and seats.  Venues still
// referenced by events yield ErrConflict.
func (r *VenueRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM venues WHERE id = ?`, id)
	if err != nil {
		if isForeignKey(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVenueNotFound
	}
	return nil
}
