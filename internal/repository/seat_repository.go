package repository // repository defines data access for seats

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// SeatRepo provides methods to work with seats in the database.
type SeatRepo struct {
	db database.DBTX
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db database.DBTX) *SeatRepo {
	return &SeatRepo{db: db}
}

// WithTx returns a copy bound to tx.
func (r *SeatRepo) WithTx(tx *sql.Tx) *SeatRepo {
	return &SeatRepo{db: tx}
}

const seatColumns = `s.id, s.area_id, s.code, s.seat_row, s.seat_col, s.state`

func scanSeat(sc interface{ Scan(...interface{}) error }) (model.Seat, error) {
	var (
		s        model.Seat
		row, col sql.NullInt64
	)
	if err := sc.Scan(&s.ID, &s.AreaID, &s.Code, &row, &col, &s.State); err != nil {
		return s, err
	}
	if row.Valid {
		v := int(row.Int64)
		s.Row = &v
	}
	if col.Valid {
		v := int(col.Int64)
		s.Col = &v
	}
	return s, nil
}

func collectSeats(rows *sql.Rows) ([]model.Seat, error) {
	defer rows.Close()
	out := []model.Seat{}
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Create inserts a single seat record. On success the seat's ID is populated.
func (r *SeatRepo) Create(ctx context.Context, s *model.Seat) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO seats (area_id, code, seat_row, seat_col, state) VALUES (?, ?, ?, ?, ?)`,
		s.AreaID, s.Code, s.Row, s.Col, s.State)
	if err != nil {
		if isForeignKey(err) {
			return ErrAreaNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID retrieves a seat by its id.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	s, err := scanSeat(r.db.QueryRowContext(ctx, `SELECT `+seatColumns+` FROM seats s WHERE s.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByArea returns the seats of an area ordered by row then column.  Seats
// without coordinates sort last.
func (r *SeatRepo) ListByArea(ctx context.Context, areaID uint64) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+seatColumns+` FROM seats s
		 WHERE s.area_id = ?
		 ORDER BY s.seat_row IS NULL, s.seat_row, s.seat_col IS NULL, s.seat_col, s.id`, areaID)
	if err != nil {
		return nil, err
	}
	return collectSeats(rows)
}

// ListByVenue returns every seat in the venue's areas ordered by seat id.
func (r *SeatRepo) ListByVenue(ctx context.Context, venueID uint64) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+seatColumns+` FROM seats s
		 JOIN areas a ON a.id = s.area_id
		 WHERE a.venue_id = ?
		 ORDER BY s.id`, venueID)
	if err != nil {
		return nil, err
	}
	return collectSeats(rows)
}

// VenueOf resolves the venue of a seat through its area.
func (r *SeatRepo) VenueOf(ctx context.Context, seatID uint64) (uint64, error) {
	var venueID uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT a.venue_id FROM seats s JOIN areas a ON a.id = s.area_id WHERE s.id = ?`, seatID).Scan(&venueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrSeatNotFound
		}
		return 0, err
	}
	return venueID, nil
}

// UpdateState changes only the occupancy state.
func (r *SeatRepo) UpdateState(ctx context.Context, id uint64, state model.SeatState) error {
	res, err := r.db.ExecContext(ctx, `UPDATE seats SET state = ? WHERE id = ?`, state, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 when the value is unchanged.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Update overwrites every mutable field of a seat.
func (r *SeatRepo) Update(ctx context.Context, s *model.Seat) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE seats SET area_id = ?, code = ?, seat_row = ?, seat_col = ?, state = ? WHERE id = ?`,
		s.AreaID, s.Code, s.Row, s.Col, s.State, s.ID); err != nil {
		if isForeignKey(err) {
			return ErrAreaNotFound
		}
		return err
	}
	got, err := r.GetByID(ctx, s.ID)
	if err != nil {
		return err
	}
	*s = *got
	return nil
}

// Delete removes a seat.
func (r *SeatRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM seats WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSeatNotFound
	}
	return nil
}
