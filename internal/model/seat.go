package model

import "strings"

// SeatState is the occupancy state of a seat.
type SeatState string

const (
	SeatAvailable SeatState = "DISPONIBLE"
	SeatOccupied  SeatState = "OCUPADO"
	SeatReserved  SeatState = "RESERVADO"
	SeatBlocked   SeatState = "BLOQUEADO"
)

// ParseSeatState accepts the stored names case-insensitively plus English
// synonyms.
func ParseSeatState(s string) (SeatState, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DISPONIBLE", "AVAILABLE":
		return SeatAvailable, true
	case "OCUPADO", "OCCUPIED":
		return SeatOccupied, true
	case "RESERVADO", "RESERVED":
		return SeatReserved, true
	case "BLOQUEADO", "BLOCKED":
		return SeatBlocked, true
	}
	return "", false
}

// Seat is a single spot inside an area.  Row and Col are optional grid
// coordinates.
type Seat struct {
	ID     uint64    `json:"id"`
	AreaID uint64    `json:"areaID"`
	Code   string    `json:"codigo"`
	Row    *int      `json:"fila"`
	Col    *int      `json:"columna"`
	State  SeatState `json:"estado"`
}
