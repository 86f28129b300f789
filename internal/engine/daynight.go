// Ambient day/night phase. A plain accumulator on its own 200ms cadence,
// fully decoupled from the economic day counter: rendering reads it for
// lighting and nothing in the simulation depends on it.
package engine

import "math"

// clockStep is how much of a full day/night cycle passes per clock tick.
const clockStep = 0.001

// stepClock advances the phase, wrapping at 1.0.
func (e *Engine) stepClock() {
	e.mu.Lock()
	e.timeOfDay = math.Mod(e.timeOfDay+clockStep, 1.0)
	e.mu.Unlock()
}

// TimeOfDay returns the current phase in [0, 1). 0 is midnight.
func (e *Engine) TimeOfDay() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeOfDay
}
