package model

import (
	"encoding/json"
	"time"
)

// EventLayout is the stored layout document of one event.  Config holds the
// raw JSON exactly as persisted.
type EventLayout struct {
	ID        uint64
	EventID   uint64
	Config    json.RawMessage
	Version   uint32
	UpdatedAt time.Time
}
