package model

import (
	"encoding/json"
	"time"
)

// ActivityLog is one persisted entry of the activity feed.
type ActivityLog struct {
	ID        uint64          `json:"id"`
	EventID   *uint64         `json:"eventoID"`
	UserID    *uint64         `json:"usuarioID"`
	Action    string          `json:"accion"`
	Details   json.RawMessage `json:"detalles,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
