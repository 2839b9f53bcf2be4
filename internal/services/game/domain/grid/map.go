package grid

import (
	"math"
	"slices"
	"strconv"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
)

// BlockedCost marks a tile as impassable.
const BlockedCost = 1e9

// MaxDimension bounds either side of a map.
const MaxDimension = 200

// Point is a tile coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Tile is one grid cell's terrain record.
type Tile struct {
	Terrain      string  `json:"terrain,omitempty"`
	Elevation    int     `json:"elevation,omitempty"`
	MovementCost float64 `json:"movement_cost"`
	Difficult    bool    `json:"difficult,omitempty"`
	Cover        bool    `json:"cover,omitempty"`
	CoverType    string  `json:"cover_type,omitempty"`
	Feature      string  `json:"feature,omitempty"`
}

// Blocked reports whether the tile cannot be entered.
func (t Tile) Blocked() bool {
	return t.MovementCost >= BlockedCost || math.IsInf(t.MovementCost, 1) || math.IsNaN(t.MovementCost)
}

// Open is the default walkable tile.
var Open = Tile{Terrain: "open", MovementCost: 1}

// Map is a Width x Height grid stored row-major.
type Map struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Tiles  []Tile `json:"tiles"`
}

// NewMap returns a map of open tiles.
func NewMap(width, height int) (*Map, error) {
	if width < 1 || height < 1 || width > MaxDimension || height > MaxDimension {
		return nil, invalidDimensions(width, height)
	}
	tiles := make([]Tile, width*height)
	for i := range tiles {
		tiles[i] = Open
	}
	return &Map{Width: width, Height: height, Tiles: tiles}, nil
}

// Validate checks dimensions and tile costs. Negative or missing costs
// are rejected; a short tile slice is padded with open tiles.
func (m *Map) Validate() error {
	if m == nil || m.Width < 1 || m.Height < 1 || m.Width > MaxDimension || m.Height > MaxDimension {
		if m == nil {
			return invalidDimensions(0, 0)
		}
		return invalidDimensions(m.Width, m.Height)
	}
	size := m.Width * m.Height
	if len(m.Tiles) > size {
		return apperrors.WithMetadata(apperrors.CodeMapInvalidDimensions, "more tiles than cells",
			map[string]string{"X": strconv.Itoa(m.Width), "Y": strconv.Itoa(m.Height)})
	}
	for len(m.Tiles) < size {
		m.Tiles = append(m.Tiles, Open)
	}
	for i, tile := range m.Tiles {
		if tile.MovementCost < 0 || math.IsNaN(tile.MovementCost) {
			return apperrors.WithMetadata(apperrors.CodeMapInvalidDimensions, "negative movement cost",
				map[string]string{"X": strconv.Itoa(i % m.Width), "Y": strconv.Itoa(i / m.Width)})
		}
	}
	return nil
}

// Clone returns a deep copy.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	out := *m
	out.Tiles = slices.Clone(m.Tiles)
	return &out
}

// InBounds reports whether p lies on the map.
func (m *Map) InBounds(p Point) bool {
	return m != nil && p.X >= 0 && p.Y >= 0 && p.X < m.Width && p.Y < m.Height
}

// Tile returns the tile at p.
func (m *Map) Tile(p Point) (Tile, bool) {
	if !m.InBounds(p) {
		return Tile{}, false
	}
	return m.Tiles[p.Y*m.Width+p.X], true
}

// SetTile replaces the tile at p.
func (m *Map) SetTile(p Point, tile Tile) error {
	if !m.InBounds(p) {
		return OutOfBounds(p)
	}
	if tile.MovementCost < 0 || math.IsNaN(tile.MovementCost) {
		return apperrors.WithMetadata(apperrors.CodeMapInvalidDimensions, "negative movement cost",
			map[string]string{"X": strconv.Itoa(p.X), "Y": strconv.Itoa(p.Y)})
	}
	m.Tiles[p.Y*m.Width+p.X] = tile
	return nil
}

// OutOfBounds builds the error for a position off the map.
func OutOfBounds(p Point) error {
	return apperrors.WithMetadata(apperrors.CodePositionOutOfBounds, "position out of bounds",
		map[string]string{"X": strconv.Itoa(p.X), "Y": strconv.Itoa(p.Y)})
}

func invalidDimensions(width, height int) error {
	return apperrors.WithMetadata(apperrors.CodeMapInvalidDimensions, "invalid map dimensions",
		map[string]string{"X": strconv.Itoa(width), "Y": strconv.Itoa(height)})
}
