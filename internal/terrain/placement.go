package terrain

import (
	"fmt"
	"math"

	"github.com/san-kum/vsrbench/internal/dynamo"
)

const (
	DefaultXGap = 1.0
	DefaultYGap = 1.0
)

// Place returns the translation that puts box's bottom-left corner xGap to the
// right of the profile's second vertex and yGap above the ground.
//
// Ground heights come from the first hill segment only: the left edge takes
// the height of the segment's start vertex and the right edge interpolates
// from there toward the segment's end vertex. Robots wider than the segment
// are clamped to the end vertex height rather than extrapolated. Two-vertex
// profiles use their only segment.
func Place(box dynamo.BoundingBox, p Profile, xGap, yGap float64) (dynamo.Vec2, error) {
	if !box.Valid() {
		return dynamo.Vec2{}, fmt.Errorf("%w: min %v max %v", dynamo.ErrDegenerateBox, box.Min, box.Max)
	}
	if err := p.Validate(); err != nil {
		return dynamo.Vec2{}, err
	}

	b := 1
	if p.Len() < 3 {
		b = 0
	}
	segEndX, segEndY := p.Xs[b+1], p.Ys[b+1]

	xLeft := p.Xs[b] + xGap
	yLeft := p.Ys[b]
	xRight := xLeft + box.Width()

	yRight := segEndY
	if span := segEndX - xLeft; span > 0 {
		frac := math.Min(math.Max((xRight-xLeft)/span, 0), 1)
		yRight = yLeft + (segEndY-yLeft)*frac
	}

	target := dynamo.Vec2{X: xLeft, Y: math.Max(yLeft, yRight) + yGap}
	return target.Sub(box.Min), nil
}
