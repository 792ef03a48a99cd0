package model

import "time"

// Ticket is an issued admission.  Code is the value encoded in the QR image.
type Ticket struct {
	ID        uint64    `json:"id"`
	Code      string    `json:"codigo"`
	EventID   uint64    `json:"eventoID"`
	SeatID    *uint64   `json:"asientoID"`
	UserID    uint64    `json:"usuarioID"`
	Price     float64   `json:"precio"`
	CreatedAt time.Time `json:"createdAt"`
}

// TicketDetail joins a ticket with the names printed on it.
type TicketDetail struct {
	Ticket
	EventName  string
	StartsAt   time.Time
	VenueName  string
	VenueAddr  string
	AreaName   string
	SeatCode   string
	OwnerEmail string
}
