package grid

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds reports a coordinate outside [0, Size).
var ErrOutOfBounds = errors.New("out of bounds")

// Grid is the fixed-size tile grid, indexed [y][x]. It is never resized;
// all mutation goes through SetTile, which replaces exactly one tile and
// returns a new grid sharing every untouched row with its parent. Holding
// a *Grid therefore gives a stable snapshot that no later edit can change.
type Grid struct {
	size    int
	rows    [][]Tile
	version uint64
}

// New creates an empty size×size grid with tile coordinates filled in.
func New(size int) *Grid {
	rows := make([][]Tile, size)
	for y := range rows {
		rows[y] = make([]Tile, size)
		for x := range rows[y] {
			rows[y][x] = Tile{X: x, Y: y}
		}
	}
	return &Grid{size: size, rows: rows}
}

// Size returns the grid dimension.
func (g *Grid) Size() int {
	return g.size
}

// Version returns the grid revision counter. Each SetTile increments it,
// so readers can cheaply detect that the grid changed.
func (g *Grid) Version() uint64 {
	return g.version
}

// InBounds reports whether (x, y) is inside the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.size && y >= 0 && y < g.size
}

// At returns the tile at (x, y).
func (g *Grid) At(x, y int) (Tile, error) {
	if !g.InBounds(x, y) {
		return Tile{}, fmt.Errorf("tile (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	return g.rows[y][x], nil
}

// SetTile returns a new grid with the tile at (x, y) replaced. The
// replacement's coordinates are normalized to (x, y). Only the affected
// row is copied; the receiver is left untouched.
func (g *Grid) SetTile(x, y int, t Tile) (*Grid, error) {
	if !g.InBounds(x, y) {
		return nil, fmt.Errorf("set tile (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	t.X, t.Y = x, y

	rows := make([][]Tile, g.size)
	copy(rows, g.rows)
	row := make([]Tile, g.size)
	copy(row, g.rows[y])
	row[x] = t
	rows[y] = row

	return &Grid{size: g.size, rows: rows, version: g.version + 1}, nil
}

// Each calls fn for every tile in row-major order.
func (g *Grid) Each(fn func(Tile)) {
	for _, row := range g.rows {
		for _, t := range row {
			fn(t)
		}
	}
}

// Rows exposes the underlying tile rows for serialization. Callers must
// treat the result as read-only.
func (g *Grid) Rows() [][]Tile {
	return g.rows
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(size=%d, version=%d)", g.size, g.version)
}
