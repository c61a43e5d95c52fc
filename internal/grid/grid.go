// Package grid provides a fixed-size two-dimensional container used for robot
// topologies and shape masks.
package grid

import "fmt"

// Grid stores W*H values of type T in row-major order.
type Grid[T any] struct {
	w, h int
	data []T
}

// Entry is one cell of a grid together with its coordinates.
type Entry[T any] struct {
	X, Y  int
	Value T
}

// New allocates a grid filled with the zero value of T.
func New[T any](w, h int) *Grid[T] {
	if w < 0 || h < 0 {
		panic(fmt.Sprintf("grid: negative size %dx%d", w, h))
	}
	return &Grid[T]{w: w, h: h, data: make([]T, w*h)}
}

// NewFilled allocates a grid with every cell set to v.
func NewFilled[T any](w, h int, v T) *Grid[T] {
	g := New[T](w, h)
	for i := range g.data {
		g.data[i] = v
	}
	return g
}

// NewFrom allocates a grid whose cells are computed by fn.
func NewFrom[T any](w, h int, fn func(x, y int) T) *Grid[T] {
	g := New[T](w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.data[g.index(x, y)] = fn(x, y)
		}
	}
	return g
}

// Map builds a grid of the same size by transforming every cell of src.
func Map[T, U any](src *Grid[T], fn func(x, y int, v T) U) *Grid[U] {
	return NewFrom(src.w, src.h, func(x, y int) U {
		return fn(x, y, src.Get(x, y))
	})
}

func (g *Grid[T]) W() int { return g.w }
func (g *Grid[T]) H() int { return g.h }

// In reports whether (x, y) lies inside the grid.
func (g *Grid[T]) In(x, y int) bool {
	return x >= 0 && x < g.w && y >= 0 && y < g.h
}

func (g *Grid[T]) index(x, y int) int {
	if !g.In(x, y) {
		panic(fmt.Sprintf("grid: (%d,%d) out of range %dx%d", x, y, g.w, g.h))
	}
	return y*g.w + x
}

func (g *Grid[T]) Get(x, y int) T { return g.data[g.index(x, y)] }

func (g *Grid[T]) Set(x, y int, v T) { g.data[g.index(x, y)] = v }

// Entries returns every cell, empty ones included, in row-major order.
func (g *Grid[T]) Entries() []Entry[T] {
	out := make([]Entry[T], 0, len(g.data))
	for i, v := range g.data {
		out = append(out, Entry[T]{X: i % g.w, Y: i / g.w, Value: v})
	}
	return out
}

// Values returns a copy of the backing slice in row-major order.
func (g *Grid[T]) Values() []T {
	out := make([]T, len(g.data))
	copy(out, g.data)
	return out
}

// Count returns the number of cells whose value satisfies pred.
func (g *Grid[T]) Count(pred func(T) bool) int {
	n := 0
	for _, v := range g.data {
		if pred(v) {
			n++
		}
	}
	return n
}

// String renders the size as WxH, the form used in sweep tables.
func (g *Grid[T]) String() string {
	return fmt.Sprintf("%dx%d", g.w, g.h)
}
