package repository

import (
	"context"
	"strings"
)

// EventSearchQuery defines filters & pagination for searching published
// events.
type EventSearchQuery struct {
	Name       string
	Venue      string
	TimeFilter string // "upcoming" (default), "active" or "any"
	Page       int
	PageSize   int
}

// PublicEventRow is the browse projection of a published event.
type PublicEventRow struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"nombre"`
	VenueID   *uint64 `json:"venueID"`
	VenueName string  `json:"venue"`
	StartsAt  string  `json:"fechaInicio"`
	EndsAt    *string `json:"fechaFin"`
	Price     float64 `json:"precio"`
	Available int64   `json:"disponibles"`
}

// SearchPublished returns a page of PUBLICADO events plus the total match
// count.
func (r *EventRepo) SearchPublished(ctx context.Context, q EventSearchQuery) ([]PublicEventRow, int64, error) {
	where := []string{"e.status = 'PUBLICADO'"}
	args := []any{}

	switch strings.ToLower(q.TimeFilter) {
	case "any":
	case "active":
		where = append(where, "COALESCE(e.ends_at, e.starts_at) >= NOW()")
	default:
		where = append(where, "e.starts_at >= NOW()")
	}

	if q.Name != "" {
		where = append(where, "LOWER(e.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Name)+"%")
	}
	if q.Venue != "" {
		where = append(where, "LOWER(v.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Venue)+"%")
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := `SELECT COUNT(*)
		FROM events e
		LEFT JOIN venues v ON v.id = e.venue_id
		WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if q.Page < 1 {
		q.Page = 1
	}
	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			e.id,
			e.name,
			e.venue_id,
			COALESCE(v.name, '') AS venue_name,
			DATE_FORMAT(e.starts_at, '%Y-%m-%d %T') AS starts_at,
			DATE_FORMAT(e.ends_at,   '%Y-%m-%d %T') AS ends_at,
			e.price,
			CAST(e.capacity AS SIGNED) - CAST(e.sold_count AS SIGNED) AS available
		FROM events e
		LEFT JOIN venues v ON v.id = e.venue_id
		WHERE ` + cond + `
		ORDER BY e.starts_at ASC, e.id ASC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]PublicEventRow, 0, limit)
	for rows.Next() {
		var d PublicEventRow
		var venueID *int64
		if err := rows.Scan(
			&d.ID,
			&d.Name,
			&venueID,
			&d.VenueName,
			&d.StartsAt,
			&d.EndsAt,
			&d.Price,
			&d.Available,
		); err != nil {
			return nil, 0, err
		}
		if venueID != nil {
			id := uint64(*venueID)
			d.VenueID = &id
		}
		if d.Available < 0 {
			d.Available = 0
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
