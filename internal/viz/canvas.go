package viz

import (
	"math"
	"strings"

	"github.com/san-kum/vsrbench/internal/dynamo"
)

const brailleBlank = 0x2800

// Each braille cell holds 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille dot matrix of Width x Height cells, i.e.
// 2*Width x 4*Height dots.
type Canvas struct {
	Width, Height int
	cells         [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, cells: make([][]rune, h)}
	for i := range c.cells {
		c.cells[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Clear() {
	for _, row := range c.cells {
		for j := range row {
			row[j] = brailleBlank
		}
	}
}

// Set lights the dot at (x, y), with y growing downwards. Dots outside the
// canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.cells[row][col] |= dotBits[y%4][x%2]
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.cells[y/4][x/2]&dotBits[y%4][x%2] != 0
}

// Line draws from (x0, y0) to (x1, y1) with Bresenham's algorithm.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), abs(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// DrawSnapshot fits every object of s into the canvas, keeping the aspect
// ratio, and outlines it. view limits the drawn region; a zero box means the
// bounds of the robot objects, so a long terrain does not shrink the robot to
// a dot.
func (c *Canvas) DrawSnapshot(s dynamo.Snapshot, view dynamo.BoundingBox) {
	if view.Width() <= 0 || view.Height() <= 0 {
		view = robotBounds(s)
	}
	if !view.Valid() || (view.Width() <= 0 && view.Height() <= 0) {
		return
	}

	dotsW, dotsH := float64(2*c.Width-1), float64(4*c.Height-1)
	scale := math.Inf(1)
	if view.Width() > 0 {
		scale = dotsW / view.Width()
	}
	if view.Height() > 0 {
		scale = math.Min(scale, dotsH/view.Height())
	}
	project := func(p dynamo.Point2) (int, int) {
		x := (p.X - view.Min.X) * scale
		y := (view.Max.Y - p.Y) * scale
		return int(math.Round(x)), int(math.Round(y))
	}

	for _, obj := range s.Objects {
		for _, poly := range obj.Polygons {
			// ground is an open polyline, everything else is closed
			edges := len(poly) - 1
			if obj.Kind != dynamo.KindGround && len(poly) > 2 {
				edges = len(poly)
			}
			for i := 0; i < edges; i++ {
				x0, y0 := project(poly[i])
				x1, y1 := project(poly[(i+1)%len(poly)])
				c.Line(x0, y0, x1, y1)
			}
		}
	}
}

func robotBounds(s dynamo.Snapshot) dynamo.BoundingBox {
	box := dynamo.BoundingBox{
		Min: dynamo.V(math.Inf(1), math.Inf(1)),
		Max: dynamo.V(math.Inf(-1), math.Inf(-1)),
	}
	for _, obj := range s.Objects {
		if obj.Kind != dynamo.KindRobot {
			continue
		}
		for _, poly := range obj.Polygons {
			for _, p := range poly {
				box.Min = dynamo.V(math.Min(box.Min.X, p.X), math.Min(box.Min.Y, p.Y))
				box.Max = dynamo.V(math.Max(box.Max.X, p.X), math.Max(box.Max.Y, p.Y))
			}
		}
	}
	return box
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
