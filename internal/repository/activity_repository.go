package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// ActivityRepo appends to and reads the activity feed.
type ActivityRepo struct {
	db database.DBTX
}

func NewActivityRepo(db database.DBTX) *ActivityRepo {
	return &ActivityRepo{db: db}
}

// Insert appends an entry and sets its ID.
func (r *ActivityRepo) Insert(ctx context.Context, a *model.ActivityLog) error {
	var details interface{}
	if len(a.Details) > 0 {
		details = []byte(a.Details)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_logs (event_id, user_id, action, details) VALUES (?, ?, ?, ?)`,
		a.EventID, a.UserID, a.Action, details)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// ListByEvent returns the newest entries of an event first.
func (r *ActivityRepo) ListByEvent(ctx context.Context, eventID uint64, limit int) ([]model.ActivityLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_id, user_id, action, details, created_at
		 FROM activity_logs WHERE event_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`, eventID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ActivityLog{}
	for rows.Next() {
		var (
			a            model.ActivityLog
			evID, userID sql.NullInt64
			details      []byte
		)
		if err := rows.Scan(&a.ID, &evID, &userID, &a.Action, &details, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.EventID, a.UserID = uint64Ptr(evID), uint64Ptr(userID)
		if len(details) > 0 {
			a.Details = json.RawMessage(details)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func uint64Ptr(n sql.NullInt64) *uint64 {
	if !n.Valid {
		return nil
	}
	v := uint64(n.Int64)
	return &v
}
