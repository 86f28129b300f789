// Player interaction: the tool set and the click rules for buying and
// selling land, placing buildings, and bulldozing. Every mutation swaps
// in a new grid revision and adjusts money in the same critical section,
// so no reader ever sees a half-applied action.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/mini-city/internal/grid"
)

// Tool is the player's selected interaction mode.
type Tool uint8

const (
	ToolBulldoze Tool = iota // Clears a building for a flat fee
	ToolLand                 // Buys unowned lots, sells owned empty ones
	ToolRoad
	ToolResidential
	ToolCommercial
	ToolIndustrial
	ToolPark
	ToolRail
	ToolStation
	ToolBridge
)

var toolNames = map[Tool]string{
	ToolBulldoze:    "bulldoze",
	ToolLand:        "land",
	ToolRoad:        "road",
	ToolResidential: "residential",
	ToolCommercial:  "commercial",
	ToolIndustrial:  "industrial",
	ToolPark:        "park",
	ToolRail:        "rail",
	ToolStation:     "station",
	ToolBridge:      "bridge",
}

// String returns the tool's wire name.
func (t Tool) String() string {
	if n, ok := toolNames[t]; ok {
		return n
	}
	return "unknown"
}

// ToolFromString maps a wire name onto a tool.
func ToolFromString(s string) (Tool, bool) {
	for t, n := range toolNames {
		if n == s {
			return t, true
		}
	}
	return ToolBulldoze, false
}

// building returns what a placement tool lays down; false for the
// bulldozer and the land tool.
func (t Tool) building() (grid.BuildingType, bool) {
	switch t {
	case ToolRoad:
		return grid.BuildingRoad, true
	case ToolResidential:
		return grid.BuildingResidential, true
	case ToolCommercial:
		return grid.BuildingCommercial, true
	case ToolIndustrial:
		return grid.BuildingIndustrial, true
	case ToolPark:
		return grid.BuildingPark, true
	case ToolRail:
		return grid.BuildingRail, true
	case ToolStation:
		return grid.BuildingStation, true
	case ToolBridge:
		return grid.BuildingBridge, true
	default:
		return grid.BuildingNone, false
	}
}

// Rejection reasons. ApplyClick wraps these with tile context; match
// with errors.Is.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotOwned          = errors.New("you don't own this land")
	ErrNotAdjacent       = errors.New("land must border something you own")
	ErrOccupied          = errors.New("clear the building first")
	ErrProtectedWater    = errors.New("waterways are protected")
	ErrNeedBridge        = errors.New("build a bridge to cross water")
	ErrBridgeOnLand      = errors.New("bridges must be on water")
)

// ApplyClick applies a tool to the tile at (x, y). Rejections come back
// as errors carrying a player-facing message and leave the city
// untouched; clicks outside the grid are ignored entirely. Rules apply
// in order, first match wins.
func (e *Engine) ApplyClick(x, y int, tool Tool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tile, err := e.grid.At(x, y)
	if err != nil {
		return nil // Off the map: not an error, just nothing
	}

	// The land tool trades ownership and never places anything.
	if tool == ToolLand {
		return e.applyLand(tile)
	}

	// Everything else needs the tile first.
	if !tile.Owned {
		return fmt.Errorf("tile (%d,%d): %w", x, y, ErrNotOwned)
	}

	// Terrain gates: water accepts only rail and bridge work, and
	// bridges have no business on dry land.
	if tile.Water && tool != ToolRail && tool != ToolBridge {
		return fmt.Errorf("tile (%d,%d): %w", x, y, ErrNeedBridge)
	}
	if !tile.Water && tool == ToolBridge {
		return fmt.Errorf("tile (%d,%d): %w", x, y, ErrBridgeOnLand)
	}

	if tool == ToolBulldoze {
		return e.applyBulldoze(tile)
	}
	return e.applyPlacement(tile, tool)
}

// applyLand buys or sells the lot under the cursor.
func (e *Engine) applyLand(tile grid.Tile) error {
	if tile.Water {
		return fmt.Errorf("tile (%d,%d): %w", tile.X, tile.Y, ErrProtectedWater)
	}

	if tile.Owned {
		// Selling. Only empty lots can go back on the market, at
		// half what the land is worth.
		if tile.Building != grid.BuildingNone {
			return fmt.Errorf("cannot sell (%d,%d): %w", tile.X, tile.Y, ErrOccupied)
		}
		refund := tile.LandPrice / 2
		tile.Owned = false
		if err := e.swapTile(tile); err != nil {
			return err
		}
		e.stats.Money += refund
		slog.Info("land sold", "x", tile.X, "y", tile.Y, "refund", refund)
		return nil
	}

	// Buying. The city grows outward from what the player already owns.
	if !e.hasOwnedNeighbor(tile.X, tile.Y) {
		return fmt.Errorf("tile (%d,%d): %w", tile.X, tile.Y, ErrNotAdjacent)
	}
	if e.stats.Money < tile.LandPrice {
		return fmt.Errorf("land at (%d,%d) costs %d: %w", tile.X, tile.Y, tile.LandPrice, ErrInsufficientFunds)
	}
	tile.Owned = true
	if err := e.swapTile(tile); err != nil {
		return err
	}
	e.stats.Money -= tile.LandPrice
	slog.Info("land bought", "x", tile.X, "y", tile.Y, "price", tile.LandPrice)
	return nil
}

// applyBulldoze clears a building for the flat demolition fee. An empty
// tile is a silent no-op.
func (e *Engine) applyBulldoze(tile grid.Tile) error {
	if tile.Building == grid.BuildingNone {
		return nil
	}
	if e.stats.Money < grid.DemolitionCost {
		return fmt.Errorf("demolition costs %d: %w", grid.DemolitionCost, ErrInsufficientFunds)
	}

	demolished := tile.Building
	tile.Building = grid.BuildingNone
	tile.Rail = false // Tracks go with the building, atomically
	if err := e.swapTile(tile); err != nil {
		return err
	}
	e.stats.Money -= grid.DemolitionCost
	slog.Info("building demolished", "building", demolished.String(), "x", tile.X, "y", tile.Y)
	return nil
}

// applyPlacement puts the tool's building on the tile.
func (e *Engine) applyPlacement(tile grid.Tile, tool Tool) error {
	b, ok := tool.building()
	if !ok {
		return nil // Not a placement tool; nothing to do
	}

	// Buildable: an empty lot, or laying rail/bridge deck over water.
	buildable := tile.Building == grid.BuildingNone ||
		((tool == ToolRail || tool == ToolBridge) && tile.Water)
	if !buildable {
		return fmt.Errorf("tile (%d,%d): %w", tile.X, tile.Y, ErrOccupied)
	}

	spec, ok := grid.SpecFor(b)
	if !ok {
		slog.Warn("building missing from catalog", "building", uint8(b))
		return nil
	}
	if e.stats.Money < spec.Cost {
		return fmt.Errorf("%s costs %d: %w", spec.Name, spec.Cost, ErrInsufficientFunds)
	}

	tile.Building = b
	tile.Rail = tool == ToolRail
	if err := e.swapTile(tile); err != nil {
		return err
	}
	e.stats.Money -= spec.Cost
	slog.Info("building placed", "building", spec.Name, "x", tile.X, "y", tile.Y, "cost", spec.Cost)
	return nil
}

// swapTile commits one tile back into a fresh grid revision. Callers
// hold the engine lock, so the money adjustment beside it is atomic with
// the swap.
func (e *Engine) swapTile(tile grid.Tile) error {
	g, err := e.grid.SetTile(tile.X, tile.Y, tile)
	if err != nil {
		return fmt.Errorf("apply click: %w", err)
	}
	e.grid = g
	return nil
}

// hasOwnedNeighbor reports whether any orthogonal neighbor of (x, y) is
// owned.
func (e *Engine) hasOwnedNeighbor(x, y int) bool {
	for _, p := range (grid.Point{X: x, Y: y}).Neighbors() {
		t, err := e.grid.At(p.X, p.Y)
		if err != nil {
			continue
		}
		if t.Owned {
			return true
		}
	}
	return false
}
