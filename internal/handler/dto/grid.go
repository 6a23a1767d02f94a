// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/tsunderebot/covers/internal/model"
)

// ErrNameNotScalar is returned when a grid name is an object or array.
var ErrNameNotScalar = errors.New("grid name must be a string, number or boolean")

// timestampLayout renders UTC times with millisecond precision and a Z suffix.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// CreateGridRequest is the body of POST /api/grids.
type CreateGridRequest struct {
	Grid *GridInput `json:"grid"`
}

// GridInput carries the client-supplied grid fields. Manga is kept verbatim.
// Name is decoded raw so scalar non-strings can be stored as their text.
type GridInput struct {
	Name  json.RawMessage `json:"name"`
	Manga json.RawMessage `json:"manga"`
}

// NameText returns the name as stored. Strings pass through, numbers and
// booleans become their literal text, and null or absent yields "".
func (g *GridInput) NameText() (string, error) {
	raw := bytes.TrimSpace(g.Name)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case 't', 'f':
		return string(raw), nil
	case '{', '[':
		return "", ErrNameNotScalar
	}

	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

// CreateGridResponse is returned after a grid is stored.
type CreateGridResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// GridResponse is one grid as clients see it. ID appears under both _id and id.
type GridResponse struct {
	MongoID   string          `json:"_id"`
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Name      string          `json:"name"`
	Manga     json.RawMessage `json:"manga"`
	CreatedAt string          `json:"createdAt"`
}

// ListGridsResponse wraps an owner's grids.
type ListGridsResponse struct {
	Grids []GridResponse `json:"grids"`
}

// ToGridResponse converts a model.Grid to its API shape.
func ToGridResponse(grid *model.Grid) GridResponse {
	return GridResponse{
		MongoID:   grid.ID,
		ID:        grid.ID,
		UserID:    grid.UserID,
		Name:      grid.Name,
		Manga:     model.NormalizeManga(grid.Manga),
		CreatedAt: grid.CreatedAt.UTC().Format(timestampLayout),
	}
}

// ToListGridsResponse converts grids, producing an empty array rather than null.
func ToListGridsResponse(grids []*model.Grid) ListGridsResponse {
	out := make([]GridResponse, 0, len(grids))
	for _, g := range grids {
		out = append(out, ToGridResponse(g))
	}
	return ListGridsResponse{Grids: out}
}
