// Package queue defines message payloads exchanged over the message broker
// and the consumer that persists them.
package queue

import "time"

// Activity actions.
const (
	ActionLayoutChanged = "layout.changed"
	ActionAreaDeleted   = "layout.area_deleted"
)

// ActivityEvent is published after a layout write commits.  It carries enough
// for the activity feed without querying the primary database.
type ActivityEvent struct {
	Action        string    `json:"action"`
	EventID       uint64    `json:"event_id"`
	UserID        uint64    `json:"user_id,omitempty"`
	AreaID        uint64    `json:"area_id,omitempty"`
	AreasCreated  int       `json:"areas_created"`
	SeatsCreated  int       `json:"seats_created"`
	SeatsUpdated  int       `json:"seats_updated"`
	SeatsSkipped  int       `json:"seats_skipped"`
	Version       uint32    `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
