package agents

import (
	"math"
	"math/rand"

	"github.com/talgya/mini-city/internal/grid"
)

// MaxPedestrians caps the crowd regardless of population.
const MaxPedestrians = 300

const (
	pedMinSpeed  = 0.005 // Tiles per frame
	pedMaxSpeed  = 0.015
	pedJitter    = 0.4 // In-tile offset so walkers don't stack on centers
	arriveRadius = 0.1
)

// walker is one pedestrian wandering the owned part of town.
type walker struct {
	x, y   float64
	tx, ty float64
	speed  float64
	phase  float64 // Bounce animation offset, cosmetic only
}

// PedestrianSystem moves walkers between random walkable tiles: owned dry
// land that is empty, a road, or a park. Crowd size follows population,
// one walker per two residents.
type PedestrianSystem struct {
	rng     *rand.Rand
	synced  bool
	version uint64

	walkable []grid.Point
	want     int
	crowd    []walker
	elapsed  float64
}

// NewPedestrianSystem creates an empty pedestrian system. Seed 0 derives
// one from the global source.
func NewPedestrianSystem(seed int64) *PedestrianSystem {
	if seed == 0 {
		seed = rand.Int63()
	}
	return &PedestrianSystem{rng: rand.New(rand.NewSource(seed))}
}

// Sync rebuilds the walkable set when the grid changed and reseeds the
// crowd when either the set or the population-driven headcount moved.
func (s *PedestrianSystem) Sync(g *grid.Grid, population int) {
	changed := !s.synced || g.Version() != s.version
	if changed {
		s.synced = true
		s.version = g.Version()

		var walkable []grid.Point
		g.Each(func(t grid.Tile) {
			if !t.Owned || t.Water || t.Rail {
				return
			}
			switch t.Building {
			case grid.BuildingNone, grid.BuildingRoad, grid.BuildingPark:
				walkable = append(walkable, grid.Point{X: t.X, Y: t.Y})
			}
		})

		if samePoints(walkable, s.walkable) {
			changed = false
		} else {
			s.walkable = walkable
		}
	}

	want := min(population/2, MaxPedestrians)
	if len(s.walkable) < 2 {
		want = 0
	}
	if !changed && want == s.want {
		return
	}
	s.want = want
	s.reseed()
}

// reseed replaces the crowd.
func (s *PedestrianSystem) reseed() {
	s.crowd = nil
	if s.want == 0 {
		return
	}
	s.crowd = make([]walker, 0, s.want)
	for i := 0; i < s.want; i++ {
		x, y := s.randomSpot()
		tx, ty := s.randomSpot()
		s.crowd = append(s.crowd, walker{
			x: x, y: y,
			tx: tx, ty: ty,
			speed: pedMinSpeed + s.rng.Float64()*(pedMaxSpeed-pedMinSpeed),
			phase: s.rng.Float64() * 2 * math.Pi,
		})
	}
}

// randomSpot picks a random walkable tile plus in-tile jitter.
func (s *PedestrianSystem) randomSpot() (float64, float64) {
	p := s.walkable[s.rng.Intn(len(s.walkable))]
	x := float64(p.X) + (s.rng.Float64()*2-1)*pedJitter
	y := float64(p.Y) + (s.rng.Float64()*2-1)*pedJitter
	return x, y
}

// Advance steps every walker by one frame. The dt only feeds the bounce
// clock; movement itself is a fixed per-frame step straight at the
// target.
func (s *PedestrianSystem) Advance(dt float64) {
	if len(s.crowd) == 0 {
		return
	}
	s.elapsed += dt

	for i := range s.crowd {
		w := &s.crowd[i]
		dx := w.tx - w.x
		dy := w.ty - w.y
		dist := math.Hypot(dx, dy)

		if dist < arriveRadius {
			w.tx, w.ty = s.randomSpot()
			continue
		}

		w.x += dx / dist * w.speed
		w.y += dy / dist * w.speed
	}
}

// Transforms returns each walker's pose. Heading points at the current
// target; Phase is the walker's bounce offset for the renderer.
func (s *PedestrianSystem) Transforms() []Transform {
	if len(s.crowd) == 0 {
		return nil
	}
	out := make([]Transform, 0, len(s.crowd))
	for _, w := range s.crowd {
		out = append(out, Transform{
			X:       w.x,
			Y:       w.y,
			Heading: math.Atan2(w.ty-w.y, w.tx-w.x),
			Phase:   w.phase,
		})
	}
	return out
}

// Elapsed returns accumulated walk time in seconds, the clock renderers
// combine with each walker's phase for the bounce animation.
func (s *PedestrianSystem) Elapsed() float64 {
	return s.elapsed
}

// Count returns the active crowd size.
func (s *PedestrianSystem) Count() int {
	return len(s.crowd)
}
