// Package agents implements the three autonomous movement systems that
// animate the city: road vehicles, pedestrians, and the train. Each system
// derives a movement graph from the current grid revision and owns its
// agents' kinematic state; nothing else writes to it. Agents are
// ephemeral and are reseeded whenever a system's tile set changes.
package agents

import "github.com/talgya/mini-city/internal/grid"

// Transform is a renderable agent pose in tile-space coordinates.
type Transform struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`         // Radians
	Phase   float64 `json:"phase,omitempty"` // Pedestrian bounce phase offset
}

// samePoints reports whether two derived tile sets are identical. Tiles
// are always collected in row-major order, so positional comparison is
// enough.
func samePoints(a, b []grid.Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
