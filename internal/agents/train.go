package agents

import (
	"math"
	"sort"

	"github.com/talgya/mini-city/internal/grid"
)

// trainSpeed is the train's pace in tiles per second of wall time.
const trainSpeed = 3.0

// TrainSystem runs a single train back and forth along the rail network.
// Track order is the heuristic sort key x + 0.1*y rather than a real path
// traversal, so branching or looping layouts make the train jump between
// out-of-order segments. That is the intended behavior, kept as-is.
type TrainSystem struct {
	synced  bool
	version uint64

	track    []grid.Point
	progress float64 // Tiles travelled, folded over the ping-pong period
}

// NewTrainSystem creates an empty train system.
func NewTrainSystem() *TrainSystem {
	return &TrainSystem{}
}

// Sync rebuilds the track when the grid changed. A changed track resets
// the train to the start of the line.
func (s *TrainSystem) Sync(g *grid.Grid) {
	if s.synced && g.Version() == s.version {
		return
	}
	s.synced = true
	s.version = g.Version()

	var track []grid.Point
	g.Each(func(t grid.Tile) {
		if t.Building == grid.BuildingRail || t.Rail {
			track = append(track, grid.Point{X: t.X, Y: t.Y})
		}
	})
	sort.SliceStable(track, func(i, j int) bool {
		return trackKey(track[i]) < trackKey(track[j])
	})

	if samePoints(track, s.track) {
		return
	}
	s.track = track
	s.progress = 0
}

// trackKey orders rail tiles west-to-east with a slight north-south bias.
func trackKey(p grid.Point) float64 {
	return float64(p.X) + 0.1*float64(p.Y)
}

// Advance moves the train by elapsed wall time. Fewer than 2 rail tiles
// means no train at all.
func (s *TrainSystem) Advance(dt float64) {
	n := len(s.track)
	if n < 2 {
		return
	}
	period := float64(2 * (n - 1))
	s.progress = math.Mod(s.progress+trainSpeed*dt, period)
}

// Transforms returns the train's pose, or nil while there is no usable
// track. Progress folds as a triangle wave over [0, 2*(n-1)] so the train
// reverses at each end of the line instead of teleporting home.
func (s *TrainSystem) Transforms() []Transform {
	n := len(s.track)
	if n < 2 {
		return nil
	}

	period := float64(2 * (n - 1))
	pos := math.Mod(s.progress, period)
	returning := false
	if pos > float64(n-1) {
		pos = period - pos
		returning = true
	}

	i := int(pos)
	frac := pos - float64(i)
	if i >= n-1 {
		i = n - 2
		frac = 1
	}

	a, b := s.track[i], s.track[i+1]
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)

	heading := math.Atan2(dy, dx)
	if returning {
		heading += math.Pi
	}

	return []Transform{{
		X:       float64(a.X) + dx*frac,
		Y:       float64(a.Y) + dy*frac,
		Heading: heading,
	}}
}

// TrackLen returns the number of rail tiles in the current track.
func (s *TrainSystem) TrackLen() int {
	return len(s.track)
}
