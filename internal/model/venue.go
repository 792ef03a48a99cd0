package model

import "time"

// Venue is a physical location that hosts events and owns areas.
type Venue struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"nombre"`
	Address     string    `json:"direccion"`
	MaxCapacity uint32    `json:"capacidadMaxima"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
