// Package grid provides the city tile grid, land economy data, and the
// building catalog. Grids are copy-on-write values: every mutation yields
// a new grid and previous revisions are never touched in place.
package grid

// BuildingType enumerates what can occupy a tile.
type BuildingType uint8

const (
	BuildingNone        BuildingType = iota // Empty lot
	BuildingRoad                            // Carries vehicle traffic
	BuildingResidential                     // Grows population
	BuildingCommercial                      // Generates income
	BuildingIndustrial                      // Generates heavy income
	BuildingPark                            // Walkable green space
	BuildingRail                            // Train track segment
	BuildingStation                         // Train station
	BuildingBridge                          // Road deck over water
)

// String returns the display name for a building type.
func (b BuildingType) String() string {
	switch b {
	case BuildingNone:
		return "empty"
	case BuildingRoad:
		return "road"
	case BuildingResidential:
		return "residential"
	case BuildingCommercial:
		return "commercial"
	case BuildingIndustrial:
		return "industrial"
	case BuildingPark:
		return "park"
	case BuildingRail:
		return "rail"
	case BuildingStation:
		return "train station"
	case BuildingBridge:
		return "bridge"
	default:
		return "unknown"
	}
}

// Tile is one grid cell, the atomic unit of ownership, terrain, and
// building state.
type Tile struct {
	X         int          `json:"x"`
	Y         int          `json:"y"`
	Building  BuildingType `json:"building"`
	Owned     bool         `json:"owned"`
	Water     bool         `json:"water"` // Immutable after generation
	Rail      bool         `json:"rail"`  // Tracks present; cleared with the building
	LandPrice int          `json:"land_price"`
}

// Point is an integer grid coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// OrthoDirections defines the four orthogonal neighbor offsets.
var OrthoDirections = [4]Point{
	{X: 1, Y: 0},
	{X: -1, Y: 0},
	{X: 0, Y: 1},
	{X: 0, Y: -1},
}

// Neighbors returns the four orthogonal neighbor coordinates, unfiltered
// by bounds.
func (p Point) Neighbors() [4]Point {
	var out [4]Point
	for i, d := range OrthoDirections {
		out[i] = Point{X: p.X + d.X, Y: p.Y + d.Y}
	}
	return out
}
