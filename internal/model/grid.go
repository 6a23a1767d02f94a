// Package model defines domain entities for the application.
package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// CollectionName is the name the grid collection/table/key space is stored under.
const CollectionName = "covers"

// Grid is a user-owned, named list of manga entries.
// Grids are only ever created and listed; nothing updates or deletes them.
type Grid struct {
	ID        string
	UserID    string
	Name      string
	Manga     json.RawMessage
	CreatedAt time.Time
}

// NewGrid builds a grid for owner with a UTC creation timestamp.
// The ID is left empty; the store assigns it on insert.
func NewGrid(userID, name string, manga json.RawMessage, now time.Time) *Grid {
	return &Grid{
		UserID:    userID,
		Name:      name,
		Manga:     NormalizeManga(manga),
		CreatedAt: now.UTC(),
	}
}

var jsonNull = json.RawMessage("null")

// NormalizeManga returns raw unchanged unless it is empty, in which case it is JSON null.
// The entries are opaque; no shape is imposed on them.
func NormalizeManga(raw json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 {
		return jsonNull
	}
	return raw
}
