package model

import "strings"

// AreaType is the closed set of zone kinds a venue can contain.
type AreaType string

const (
	AreaGeneral     AreaType = "GENERAL"
	AreaVIP         AreaType = "VIP"
	AreaStage       AreaType = "ESCENARIO"
	AreaReserved    AreaType = "RESERVADO"
	DefaultAreaType          = AreaGeneral
)

// ParseAreaType accepts the stored names case-insensitively plus the English
// aliases used by older clients.
func ParseAreaType(s string) (AreaType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GENERAL":
		return AreaGeneral, true
	case "VIP":
		return AreaVIP, true
	case "ESCENARIO", "STAGE":
		return AreaStage, true
	case "RESERVADO", "RESERVED":
		return AreaReserved, true
	}
	return "", false
}

// Area is a named zone within a venue, such as a table or a section.
type Area struct {
	ID       uint64   `json:"id"`
	VenueID  uint64   `json:"venueID"`
	Name     string   `json:"nombre"`
	Capacity uint32   `json:"capacidad"`
	Type     AreaType `json:"tipo"`
}
