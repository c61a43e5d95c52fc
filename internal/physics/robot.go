package physics

import (
	"errors"
	"fmt"

	"github.com/san-kum/vsrbench/internal/control"
	"github.com/san-kum/vsrbench/internal/dynamo"
	"github.com/san-kum/vsrbench/internal/grid"
)

// VoxelDescription is the material of one occupied grid slot.
type VoxelDescription = Material

// RobotDescription is the immutable body plan of a robot. A nil slot is empty.
// Actuation is optional; episodes that need one assign a default.
type RobotDescription struct {
	Voxels    *grid.Grid[*VoxelDescription]
	Actuation *control.TimeFunctions
}

// Uniform builds a description that places m in every slot where mask is true.
func Uniform(mask *grid.Grid[bool], m Material) RobotDescription {
	return RobotDescription{
		Voxels: grid.Map(mask, func(_, _ int, on bool) *VoxelDescription {
			if !on {
				return nil
			}
			mm := m
			return &mm
		}),
	}
}

func (d RobotDescription) W() int { return d.Voxels.W() }
func (d RobotDescription) H() int { return d.Voxels.H() }

func (d RobotDescription) CountVoxels() int {
	return d.Voxels.Count(func(v *VoxelDescription) bool { return v != nil })
}

// WithActuation returns a copy of d driven by a.
func (d RobotDescription) WithActuation(a *control.TimeFunctions) RobotDescription {
	d.Actuation = a
	return d
}

func (d RobotDescription) Validate() error {
	if d.Voxels == nil || d.CountVoxels() == 0 {
		return fmt.Errorf("%w: robot has no voxels", dynamo.ErrMissingVoxel)
	}
	side := 0.0
	for _, e := range d.Voxels.Entries() {
		if e.Value == nil {
			continue
		}
		if err := e.Value.Validate(); err != nil {
			return fmt.Errorf("voxel (%d,%d): %w", e.X, e.Y, err)
		}
		if side == 0 {
			side = e.Value.SideLength
		} else if e.Value.SideLength != side {
			return fmt.Errorf("%w: voxel (%d,%d) side %g differs from %g",
				dynamo.ErrInvalidMaterial, e.X, e.Y, e.Value.SideLength, side)
		}
	}
	if a := d.Actuation; a != nil && (a.W() != d.W() || a.H() != d.H()) {
		return fmt.Errorf("actuation grid %dx%d does not match robot %s", a.W(), a.H(), d.Voxels)
	}
	return nil
}

var errRobotBuilt = errors.New("robot already added to a world")

// Robot is the live instance of a description inside one world. Grid row 0
// is the top row; voxel (x, y) is centered at (x·L + L/2, −y·L − L/2) plus
// any translation.
type Robot struct {
	desc   RobotDescription
	offset dynamo.Vec2
	voxels *grid.Grid[*Voxel]
}

func NewRobot(desc RobotDescription) (*Robot, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return &Robot{desc: desc}, nil
}

func (r *Robot) Description() RobotDescription { return r.desc }

func (r *Robot) side() float64 {
	for _, v := range r.desc.Voxels.Values() {
		if v != nil {
			return v.SideLength
		}
	}
	return 0
}

func (r *Robot) AddTo(w *World) error {
	if r.voxels != nil {
		return errRobotBuilt
	}
	l := r.side()
	voxels := grid.New[*Voxel](r.desc.W(), r.desc.H())

	for _, e := range r.desc.Voxels.Entries() {
		if e.Value == nil {
			continue
		}
		center := dynamo.V(float64(e.X)*l+l/2, -float64(e.Y)*l-l/2).Add(r.offset)
		voxels.Set(e.X, e.Y, newVoxel(w, *e.Value, center, -1))
	}

	for _, e := range voxels.Entries() {
		v := e.Value
		if v == nil {
			continue
		}
		if e.X+1 < voxels.W() {
			if right := voxels.Get(e.X+1, e.Y); right != nil {
				weldPair(w, v, right, TopRight, TopLeft)
				weldPair(w, v, right, BottomRight, BottomLeft)
			}
		}
		if e.Y+1 < voxels.H() {
			if below := voxels.Get(e.X, e.Y+1); below != nil {
				weldPair(w, v, below, BottomLeft, TopLeft)
				weldPair(w, v, below, BottomRight, TopRight)
			}
		}
	}

	r.voxels = voxels
	return nil
}

func weldPair(w *World, a, b *Voxel, ia, ib int) {
	ba, bb := a.bodies[ia], b.bodies[ib]
	mid := fromVec(ba.GetPosition()).Add(fromVec(bb.GetPosition())).Scale(0.5)
	w.Weld(ba, bb, mid)
}

// Voxels returns the live voxel grid, nil before the robot is added.
func (r *Robot) Voxels() *grid.Grid[*Voxel] { return r.voxels }

func (r *Robot) CountVoxels() int { return r.desc.CountVoxels() }

// Translate moves the robot by d, before or after it is added to a world.
func (r *Robot) Translate(d dynamo.Vec2) {
	if r.voxels == nil {
		r.offset = r.offset.Add(d)
		return
	}
	for _, v := range r.voxels.Values() {
		if v != nil {
			v.translate(d)
		}
	}
}

// BoundingBox encloses the outer corners of every voxel.
func (r *Robot) BoundingBox() dynamo.BoundingBox {
	var box dynamo.BoundingBox
	first := true
	extend := func(p dynamo.Vec2) {
		pb := dynamo.BoundingBox{Min: p, Max: p}
		if first {
			box, first = pb, false
			return
		}
		box = box.Union(pb)
	}

	if r.voxels == nil {
		l := r.side()
		for _, e := range r.desc.Voxels.Entries() {
			if e.Value == nil {
				continue
			}
			x0 := float64(e.X)*l + r.offset.X
			y0 := -float64(e.Y)*l + r.offset.Y
			extend(dynamo.V(x0, y0-l))
			extend(dynamo.V(x0+l, y0))
		}
		return box
	}

	for _, v := range r.voxels.Values() {
		if v == nil {
			continue
		}
		for _, p := range v.Polygon() {
			extend(dynamo.V(p.X, p.Y))
		}
	}
	return box
}

// Act drives every voxel with the actuation values at time t. Robots without
// actuation stay passive.
func (r *Robot) Act(t float64) {
	if r.voxels == nil || r.desc.Actuation == nil {
		return
	}
	values := r.desc.Actuation.Values(t)
	for _, e := range r.voxels.Entries() {
		if e.Value != nil {
			e.Value.Actuate(values.Get(e.X, e.Y))
		}
	}
}

// Healthy reports whether every vertex body has a finite position.
func (r *Robot) Healthy() bool {
	if r.voxels == nil {
		return true
	}
	for _, v := range r.voxels.Values() {
		if v != nil && !v.healthy() {
			return false
		}
	}
	return true
}

func (r *Robot) Immutable() dynamo.ObjectState {
	st := dynamo.ObjectState{Kind: dynamo.KindRobot}
	if r.voxels == nil {
		return st
	}
	for _, v := range r.voxels.Values() {
		if v != nil {
			st.Polygons = append(st.Polygons, v.Polygon())
		}
	}
	return st
}
