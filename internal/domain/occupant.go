// Package domain contains entities without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const (
	MaxNameLen = 36
	MaxRoomLen = 36
)

var (
	ErrNameRequired = errors.New("name is required")
	ErrNameTooLong  = errors.New("name too long")
	ErrRoomRequired = errors.New("room is required")
	ErrRoomTooLong  = errors.New("room too long")
)

// ConnID is the opaque connection identity supplied by the transport.
// Stable for the life of one connection.
type ConnID string

type RoomName string

// NormalizeRoom maps user-supplied room identifiers onto their canonical
// uppercase form, so "lobby" and "LOBBY" are the same broadcast group.
func NormalizeRoom(raw string) RoomName {
	return RoomName(strings.ToUpper(strings.TrimSpace(raw)))
}

// Occupant is one active chat participant: a (connection, name, room) triple.
type Occupant struct {
	ID   ConnID   `json:"id"`
	Name string   `json:"name"`
	Room RoomName `json:"room"`
}

// NewOccupant is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewOccupant(id ConnID, name string, room RoomName) (*Occupant, error) {
	if len(name) == 0 {
		return nil, ErrNameRequired
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	if len(room) == 0 {
		return nil, ErrRoomRequired
	}
	if len(room) > MaxRoomLen {
		return nil, ErrRoomTooLong
	}
	return &Occupant{ID: id, Name: name, Room: room}, nil
}
