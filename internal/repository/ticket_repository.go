package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// ErrTicketNotFound is returned when a ticket lookup fails.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketRepo reads issued tickets.  Issuing happens in the payment flow,
// which lives outside this service.
type TicketRepo struct {
	db database.DBTX
}

func NewTicketRepo(db database.DBTX) *TicketRepo {
	return &TicketRepo{db: db}
}

// GetDetail loads a ticket with the event, venue, area and seat names printed
// on it.  Venue, area and seat are optional.
func (r *TicketRepo) GetDetail(ctx context.Context, id uint64) (*model.TicketDetail, error) {
	const q = `SELECT t.id, t.code, t.event_id, t.seat_id, t.user_id, t.price, t.created_at,
	                  e.name, e.starts_at,
	                  COALESCE(v.name, ''), COALESCE(v.address, ''),
	                  COALESCE(a.name, ''), COALESCE(s.code, ''),
	                  u.email
	           FROM tickets t
	           JOIN events e ON e.id = t.event_id
	           JOIN users u ON u.id = t.user_id
	           LEFT JOIN venues v ON v.id = e.venue_id
	           LEFT JOIN seats s ON s.id = t.seat_id
	           LEFT JOIN areas a ON a.id = s.area_id
	           WHERE t.id = ?`
	var (
		d      model.TicketDetail
		seatID sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.Code, &d.EventID, &seatID, &d.UserID, &d.Price, &d.CreatedAt,
		&d.EventName, &d.StartsAt, &d.VenueName, &d.VenueAddr, &d.AreaName, &d.SeatCode, &d.OwnerEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	if seatID.Valid {
		sid := uint64(seatID.Int64)
		d.SeatID = &sid
	}
	return &d, nil
}
