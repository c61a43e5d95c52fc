package control

import (
	"math"

	"github.com/san-kum/vsrbench/internal/grid"
)

// TimeFunction maps simulated time to an actuation value.
type TimeFunction func(t float64) float64

// TimeFunctions holds one TimeFunction per voxel slot. Nil entries yield 0.
type TimeFunctions struct {
	fns *grid.Grid[TimeFunction]
}

func NewTimeFunctions(w, h int, fn func(x, y int) TimeFunction) *TimeFunctions {
	return &TimeFunctions{fns: grid.NewFrom(w, h, fn)}
}

func (tf *TimeFunctions) W() int { return tf.fns.W() }
func (tf *TimeFunctions) H() int { return tf.fns.H() }

// At returns the function of slot (x, y), possibly nil.
func (tf *TimeFunctions) At(x, y int) TimeFunction { return tf.fns.Get(x, y) }

// Values evaluates every slot at time t.
func (tf *TimeFunctions) Values(t float64) *grid.Grid[float64] {
	return grid.Map(tf.fns, func(_, _ int, fn TimeFunction) float64 {
		if fn == nil {
			return 0
		}
		return fn(t)
	})
}

// Sinusoidal drives column x with sin(-2π·freq·t + 2π·x/w), a wave that
// travels along the body once per period.
func Sinusoidal(freq float64, w, h int) *TimeFunctions {
	return NewTimeFunctions(w, h, func(x, _ int) TimeFunction {
		phase := 2 * math.Pi * float64(x) / float64(w)
		return func(t float64) float64 {
			return math.Sin(-2*math.Pi*freq*t + phase)
		}
	})
}
