package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// ErrLayoutNotFound is returned when an event has no stored layout document.
var ErrLayoutNotFound = errors.New("layout not found")

// LayoutRepo stores one JSON layout document per event.
type LayoutRepo struct {
	db database.DBTX
}

func NewLayoutRepo(db database.DBTX) *LayoutRepo {
	return &LayoutRepo{db: db}
}

// WithTx returns a copy bound to tx.
func (r *LayoutRepo) WithTx(tx *sql.Tx) *LayoutRepo {
	return &LayoutRepo{db: tx}
}

const layoutSelect = `SELECT id, event_id, config, version, updated_at FROM event_layouts WHERE event_id = ?`

func (r *LayoutRepo) get(ctx context.Context, q string, eventID uint64) (*model.EventLayout, error) {
	var (
		l   model.EventLayout
		cfg []byte
	)
	err := r.db.QueryRowContext(ctx, q, eventID).Scan(&l.ID, &l.EventID, &cfg, &l.Version, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLayoutNotFound
		}
		return nil, err
	}
	l.Config = json.RawMessage(cfg)
	return &l, nil
}

// GetByEvent reads the layout of an event.
func (r *LayoutRepo) GetByEvent(ctx context.Context, eventID uint64) (*model.EventLayout, error) {
	return r.get(ctx, layoutSelect, eventID)
}

// LockByEvent reads the layout row with FOR UPDATE so concurrent edits of the
// same event serialize.  Must run inside a transaction.
func (r *LayoutRepo) LockByEvent(ctx context.Context, eventID uint64) (*model.EventLayout, error) {
	return r.get(ctx, layoutSelect+` FOR UPDATE`, eventID)
}

// Save inserts or replaces the document of an event with an explicit version.
func (r *LayoutRepo) Save(ctx context.Context, eventID uint64, config json.RawMessage, version uint32) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_layouts (event_id, config, version) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE config = VALUES(config), version = VALUES(version)`,
		eventID, []byte(config), version)
	if err != nil && isForeignKey(err) {
		return ErrEventNotFound
	}
	return err
}
