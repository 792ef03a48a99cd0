package model

import (
	"strings"
	"time"
)

// EventStatus is the publication state of an event.
type EventStatus string

const (
	EventDraft     EventStatus = "BORRADOR"
	EventPublished EventStatus = "PUBLICADO"
	EventCancelled EventStatus = "CANCELADO"
	EventFinished  EventStatus = "FINALIZADO"
)

// ParseEventStatus normalises s.  An empty string yields EventDraft.
func ParseEventStatus(s string) (EventStatus, bool) {
	switch st := EventStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case "":
		return EventDraft, true
	case EventDraft, EventPublished, EventCancelled, EventFinished:
		return st, true
	}
	return "", false
}

// Event is a scheduled happening at a venue.  VenueID is nullable in storage;
// an event without a venue cannot have its layout edited.
type Event struct {
	ID          uint64      `json:"id"`
	Name        string      `json:"nombre"`
	StartsAt    time.Time   `json:"fechaInicio"`
	EndsAt      *time.Time  `json:"fechaFin,omitempty"`
	Price       float64     `json:"precio"`
	Capacity    uint32      `json:"capacidad"`
	SoldCount   uint32      `json:"vendidos"`
	Status      EventStatus `json:"estado"`
	VenueID     *uint64     `json:"venueID"`
	OrganizerID uint64      `json:"organizadorID"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
