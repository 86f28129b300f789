// City grid generation: river placement, the starter plot, and land prices.
// Prices vary over an OpenSimplex noise field so neighboring lots stay
// loosely correlated instead of jumping randomly.
package grid

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// River shape constants. The river is a sinusoidal north-south band:
// riverX(y) = center + sin(y*riverFreq)*riverAmp, covering tiles within
// riverHalfWidth of the curve (a band roughly 1.5 tiles wide).
const (
	riverFreq      = 0.4
	riverAmp       = 2.5
	riverHalfWidth = 0.75

	// starterRadius is the half-extent of the pre-owned square around
	// the grid center (radius 2 = a 5x5 plot).
	starterRadius = 2

	priceNoiseFreq = 0.18
)

// GenConfig holds city generation parameters.
type GenConfig struct {
	Size            int   // Grid dimension (tiles per side)
	Seed            int64 // Random seed (0 = random)
	BasePrice       int   // Floor land price
	PriceSpread     int   // Max noise-driven price variance
	DistancePremium int   // Price added per tile of distance from center
}

// DefaultGenConfig returns the standard 25x25 city.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Size:            25,
		Seed:            0,
		BasePrice:       5000,
		PriceSpread:     2000,
		DistancePremium: 100,
	}
}

// Generate creates a complete city grid: water band, pre-owned starter
// plot, and a fixed land price per tile. Prices never change after this.
func Generate(cfg GenConfig) *Grid {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	priceNoise := opensimplex.NewNormalized(seed)

	g := New(cfg.Size)
	center := cfg.Size / 2

	for y := 0; y < cfg.Size; y++ {
		riverX := float64(center) + math.Sin(float64(y)*riverFreq)*riverAmp
		for x := 0; x < cfg.Size; x++ {
			t := g.rows[y][x]

			t.Water = math.Abs(float64(x)-riverX) < riverHalfWidth
			t.Owned = abs(x-center) <= starterRadius && abs(y-center) <= starterRadius

			// Land price: base + correlated variance + distance premium.
			v := priceNoise.Eval2(float64(x)*priceNoiseFreq, float64(y)*priceNoiseFreq)
			dist := math.Hypot(float64(x-center), float64(y-center))
			t.LandPrice = cfg.BasePrice + int(v*float64(cfg.PriceSpread)) + int(dist*float64(cfg.DistancePremium))

			g.rows[y][x] = t
		}
	}

	return g
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
