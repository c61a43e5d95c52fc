// Package terrain generates ground profiles and places robots above them.
package terrain

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/vsrbench/internal/dynamo"
)

const (
	DefaultHills  = 100
	DefaultLength = 1000.0
	DefaultSeed   = 1
)

// Profile is a polyline with strictly increasing x.
type Profile struct {
	Xs []float64
	Ys []float64
}

func (p Profile) Len() int { return len(p.Xs) }

func (p Profile) Validate() error {
	if len(p.Xs) != len(p.Ys) {
		return fmt.Errorf("%w: %d xs vs %d ys", dynamo.ErrShortProfile, len(p.Xs), len(p.Ys))
	}
	if len(p.Xs) < 2 {
		return fmt.Errorf("%w: %d vertices", dynamo.ErrShortProfile, len(p.Xs))
	}
	for i := 1; i < len(p.Xs); i++ {
		if p.Xs[i] <= p.Xs[i-1] {
			return fmt.Errorf("%w: x[%d]=%g not after x[%d]=%g", dynamo.ErrShortProfile, i, p.Xs[i], i-1, p.Xs[i-1])
		}
	}
	return nil
}

// Points returns the vertices as immutable points.
func (p Profile) Points() []dynamo.Point2 {
	out := make([]dynamo.Point2, len(p.Xs))
	for i := range p.Xs {
		out[i] = dynamo.Point2{X: p.Xs[i], Y: p.Ys[i]}
	}
	return out
}

// Generate builds a hilly profile of hills+2 vertices. The first and last
// vertices are flat anchors at height length/10; interior heights are drawn
// uniformly from [0, maxHeight) using rng, so equal seeds give equal profiles.
func Generate(hills int, length, maxHeight float64, rng *rand.Rand) Profile {
	if hills < 0 {
		hills = 0
	}
	n := hills + 2
	p := Profile{Xs: make([]float64, n), Ys: make([]float64, n)}

	for i := 1; i < n-1; i++ {
		p.Xs[i] = 1 + length/float64(hills)*float64(i-1)
		p.Ys[i] = rng.Float64() * maxHeight
	}
	p.Xs[0] = 0
	p.Ys[0] = length / 10
	p.Xs[n-1] = length
	p.Ys[n-1] = length / 10
	return p
}

// Flat returns a two-vertex profile at constant height.
func Flat(length, height float64) Profile {
	return Profile{
		Xs: []float64{0, length},
		Ys: []float64{height, height},
	}
}
