package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// ErrAreaNotFound is returned when an area lookup fails.
var ErrAreaNotFound = errors.New("area not found")

// AreaRepo persists the zones of a venue.
type AreaRepo struct {
	db database.DBTX
}

func NewAreaRepo(db database.DBTX) *AreaRepo {
	return &AreaRepo{db: db}
}

// WithTx returns a copy bound to tx.
func (r *AreaRepo) WithTx(tx *sql.Tx) *AreaRepo {
	return &AreaRepo{db: tx}
}

// Create inserts an area and sets its ID.  Capacity and type are validated by
// the caller.
func (r *AreaRepo) Create(ctx context.Context, a *model.Area) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO areas (venue_id, name, capacity, type) VALUES (?, ?, ?, ?)`,
		a.VenueID, a.Name, a.Capacity, a.Type)
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
	a.ID = uint64(id)
	return nil
}

// GetByID returns ErrAreaNotFound when no row matches.
func (r *AreaRepo) GetByID(ctx context.Context, id uint64) (*model.Area, error) {
	var a model.Area
	err := r.db.QueryRowContext(ctx,
		`SELECT id, venue_id, name, capacity, type FROM areas WHERE id = ?`, id).
		Scan(&a.ID, &a.VenueID, &a.Name, &a.Capacity, &a.Type)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAreaNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListByVenue returns the areas of a venue ordered by id.
func (r *AreaRepo) ListByVenue(ctx context.Context, venueID uint64) ([]*model.Area, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, venue_id, name, capacity, type FROM areas WHERE venue_id = ? ORDER BY id`, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Area{}
	for rows.Next() {
		a := new(model.Area)
		if err := rows.Scan(&a.ID, &a.VenueID, &a.Name, &a.Capacity, &a.Type); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Update overwrites name, capacity and type.
func (r *AreaRepo) Update(ctx context.Context, a *model.Area) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE areas SET name = ?, capacity = ?, type = ? WHERE id = ?`,
		a.Name, a.Capacity, a.Type, a.ID); err != nil {
		return err
	}
	got, err := r.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	*a = *got
	return nil
}

// VenueOf returns the venue an area belongs to.
func (r *AreaRepo) VenueOf(ctx context.Context, areaID uint64) (uint64, error) {
	var venueID uint64
	err := r.db.QueryRowContext(ctx, `SELECT venue_id FROM areas WHERE id = ?`, areaID).Scan(&venueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrAreaNotFound
		}
		return 0, err
	}
	return venueID, nil
}

// Delete removes an area.  Its seats are removed first so the operation does
// not depend on the foreign key's cascade policy.
func (r *AreaRepo) Delete(ctx context.Context, id uint64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM seats WHERE area_id = ?`, id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM areas WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAreaNotFound
	}
	return nil
}
