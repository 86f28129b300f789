package agents

import (
	"math"
	"math/rand"

	"github.com/talgya/mini-city/internal/grid"
)

// MaxVehicles caps the road fleet regardless of network size.
const MaxVehicles = 30

const (
	vehicleMinSpeed = 0.01 // Progress per frame
	vehicleMaxSpeed = 0.03
	laneOffset      = 0.15 // Lateral shift toward the driving side
)

// vehicle is one car moving tile-to-tile over the road graph.
type vehicle struct {
	cur      grid.Point
	target   grid.Point
	progress float64 // Fraction of the cur->target hop, in [0,1)
	speed    float64
}

// VehicleSystem moves cars along roads and bridges. Movement is local and
// randomized: at every intersection a car picks a random neighbor,
// avoiding an immediate U-turn when it has any other choice.
type VehicleSystem struct {
	rng     *rand.Rand
	synced  bool
	version uint64

	roads   []grid.Point
	inGraph map[grid.Point]bool
	fleet   []vehicle
}

// NewVehicleSystem creates an empty vehicle system. Seed 0 derives one
// from the global source.
func NewVehicleSystem(seed int64) *VehicleSystem {
	if seed == 0 {
		seed = rand.Int63()
	}
	return &VehicleSystem{rng: rand.New(rand.NewSource(seed))}
}

// Sync rebuilds the road graph if the grid changed since the last call.
// The fleet is reseeded only when the drivable tile set itself changed.
func (s *VehicleSystem) Sync(g *grid.Grid) {
	if s.synced && g.Version() == s.version {
		return
	}
	s.synced = true
	s.version = g.Version()

	var roads []grid.Point
	g.Each(func(t grid.Tile) {
		if t.Building == grid.BuildingRoad || t.Building == grid.BuildingBridge {
			roads = append(roads, grid.Point{X: t.X, Y: t.Y})
		}
	})

	if samePoints(roads, s.roads) {
		return
	}

	s.roads = roads
	s.inGraph = make(map[grid.Point]bool, len(roads))
	for _, p := range roads {
		s.inGraph[p] = true
	}
	s.reseed()
}

// reseed replaces the fleet. Fewer than 2 road tiles means no traffic.
func (s *VehicleSystem) reseed() {
	s.fleet = nil
	if len(s.roads) < 2 {
		return
	}

	n := min(len(s.roads), MaxVehicles)
	s.fleet = make([]vehicle, 0, n)
	for i := 0; i < n; i++ {
		start := s.roads[s.rng.Intn(len(s.roads))]
		v := vehicle{
			cur:   start,
			speed: vehicleMinSpeed + s.rng.Float64()*(vehicleMaxSpeed-vehicleMinSpeed),
		}
		v.target = start
		if next, ok := s.roadNeighbor(start, start); ok {
			v.target = next
		}
		s.fleet = append(s.fleet, v)
	}
}

// Advance steps every car by one frame. When a hop completes the car
// picks its next neighbor; a car stranded without neighbors teleports to
// a random road tile.
func (s *VehicleSystem) Advance() {
	if len(s.roads) < 2 {
		return
	}
	for i := range s.fleet {
		v := &s.fleet[i]
		v.progress += v.speed
		if v.progress < 1 {
			continue
		}

		departed := v.cur
		v.cur = v.target
		v.progress = 0

		next, ok := s.roadNeighbor(v.cur, departed)
		if !ok {
			v.cur = s.roads[s.rng.Intn(len(s.roads))]
			next, ok = s.roadNeighbor(v.cur, v.cur)
			if !ok {
				next = v.cur // Still isolated; retry on the next hop
			}
		}
		v.target = next
	}
}

// roadNeighbor chooses a uniformly random road neighbor of cur,
// preferring candidates that are not the tile just departed when any
// alternative exists. False when cur has no road neighbor at all.
func (s *VehicleSystem) roadNeighbor(cur, departed grid.Point) (grid.Point, bool) {
	var candidates []grid.Point
	for _, n := range cur.Neighbors() {
		if s.inGraph[n] {
			candidates = append(candidates, n)
		}
	}

	if len(candidates) == 0 {
		return grid.Point{}, false
	}

	if len(candidates) > 1 {
		fresh := candidates[:0]
		for _, c := range candidates {
			if c != departed {
				fresh = append(fresh, c)
			}
		}
		if len(fresh) > 0 {
			candidates = fresh
		}
	}

	return candidates[s.rng.Intn(len(candidates))], true
}

// Transforms returns the current render pose of every car: position
// interpolated along the hop, shifted by the lane offset, heading from
// the travel vector.
func (s *VehicleSystem) Transforms() []Transform {
	if len(s.fleet) == 0 {
		return nil
	}
	out := make([]Transform, 0, len(s.fleet))
	for _, v := range s.fleet {
		dx := float64(v.target.X - v.cur.X)
		dy := float64(v.target.Y - v.cur.Y)

		x := float64(v.cur.X) + dx*v.progress
		y := float64(v.cur.Y) + dy*v.progress

		if dx != 0 || dy != 0 {
			// Left-hand normal of the travel vector keeps cars on
			// their own side of the road.
			length := math.Hypot(dx, dy)
			x += dy / length * laneOffset
			y += -dx / length * laneOffset
		}

		out = append(out, Transform{X: x, Y: y, Heading: math.Atan2(dy, dx)})
	}
	return out
}

// Count returns the active fleet size.
func (s *VehicleSystem) Count() int {
	return len(s.fleet)
}
