package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSeatState(t *testing.T) {
	tests := map[string]SeatState{
		"disponible": SeatAvailable,
		" Ocupado ":  SeatOccupied,
		"reserved":   SeatReserved,
		"BLOCKED":    SeatBlocked,
	}
	for in, want := range tests {
		got, ok := ParseSeatState(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseSeatState("roto")
	assert.False(t, ok)
}

func TestParseAreaType(t *testing.T) {
	got, ok := ParseAreaType("stage")
	assert.True(t, ok)
	assert.Equal(t, AreaStage, got)
	_, ok = ParseAreaType("balcony")
	assert.False(t, ok)
}

func TestParseEventStatus(t *testing.T) {
	got, ok := ParseEventStatus("")
	assert.True(t, ok)
	assert.Equal(t, EventDraft, got)
	got, ok = ParseEventStatus("publicado")
	assert.True(t, ok)
	assert.Equal(t, EventPublished, got)
	_, ok = ParseEventStatus("ARCHIVADO")
	assert.False(t, ok)
}
