package physics

import (
	"math"

	"github.com/ByteArena/box2d"

	"github.com/san-kum/vsrbench/internal/dynamo"
)

// Vertex body indices, clockwise from the top-left corner.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// corners maps each vertex index to the direction of its corner.
var corners = [4]dynamo.Vec2{
	TopLeft:     {X: -1, Y: 1},
	TopRight:    {X: 1, Y: 1},
	BottomRight: {X: 1, Y: -1},
	BottomLeft:  {X: -1, Y: -1},
}

// sides lists the vertex pairs of each voxel side with its outward normal.
var sides = [4]struct {
	a, b   int
	normal dynamo.Vec2
}{
	{TopLeft, TopRight, dynamo.V(0, 1)},
	{TopRight, BottomRight, dynamo.V(1, 0)},
	{BottomRight, BottomLeft, dynamo.V(0, -1)},
	{BottomLeft, TopLeft, dynamo.V(-1, 0)},
}

type spring struct {
	joint *box2d.B2DistanceJoint
	rest  float64
}

// Voxel is a soft square made of four vertex bodies held together by
// spring-damper distance joints.
type Voxel struct {
	material Material
	bodies   [4]*box2d.B2Body
	springs  []spring
}

func newVoxel(w *World, m Material, center dynamo.Vec2, group int16) *Voxel {
	v := &Voxel{material: m}
	ms := m.MassSide()
	inset := m.SideLength/2 - ms/2

	for i, c := range corners {
		def := box2d.MakeB2BodyDef()
		def.Type = box2d.B2BodyType.B2_dynamicBody
		def.Position = vec(center.Add(c.Scale(inset)))
		def.LinearDamping = m.MassLinearDamping
		def.AngularDamping = m.MassAngularDamping
		body := w.createBody(&def)

		shape := box2d.NewB2PolygonShape()
		shape.SetAsBox(ms/2, ms/2)

		fd := box2d.MakeB2FixtureDef()
		fd.Shape = shape
		fd.Density = m.Mass / 4 / (ms * ms)
		fd.Friction = m.Friction
		filter := box2d.MakeB2Filter()
		if !m.MassCollision {
			filter.GroupIndex = group
		}
		fd.Filter = filter
		body.CreateFixtureFromDef(&fd)

		v.bodies[i] = body
	}

	v.buildSprings(w)
	return v
}

func (v *Voxel) buildSprings(w *World) {
	m := v.material
	half := m.MassSide() / 2
	pos := func(i int) dynamo.Vec2 { return fromVec(v.bodies[i].GetPosition()) }
	add := func(a, b int, anchorA, anchorB dynamo.Vec2) {
		j := w.createSpring(v.bodies[a], v.bodies[b], anchorA, anchorB, m.SpringF, m.SpringD)
		v.springs = append(v.springs, spring{joint: j, rest: anchorB.Sub(anchorA).Length()})
	}

	for _, s := range sides {
		out := s.normal.Scale(half)
		pa, pb := pos(s.a), pos(s.b)
		if m.Scaffoldings.Has(SideExternal) {
			add(s.a, s.b, pa.Add(out), pb.Add(out))
		}
		if m.Scaffoldings.Has(SideInternal) {
			add(s.a, s.b, pa.Sub(out), pb.Sub(out))
		}
		if m.Scaffoldings.Has(SideCross) {
			add(s.a, s.b, pa.Add(out), pb.Sub(out))
			add(s.a, s.b, pa.Sub(out), pb.Add(out))
		}
	}
	if m.Scaffoldings.Has(CentralCross) {
		add(TopLeft, BottomRight, pos(TopLeft), pos(BottomRight))
		add(TopRight, BottomLeft, pos(TopRight), pos(BottomLeft))
	}
}

func (v *Voxel) Material() Material { return v.material }

// VertexBodies returns the four vertex bodies, indexed by TopLeft..BottomLeft.
func (v *Voxel) VertexBodies() [4]*box2d.B2Body { return v.bodies }

func (v *Voxel) Center() dynamo.Vec2 {
	var c dynamo.Vec2
	for _, b := range v.bodies {
		c = c.Add(fromVec(b.GetPosition()))
	}
	return c.Scale(0.25)
}

// Velocity is the mean linear velocity of the vertex bodies.
func (v *Voxel) Velocity() dynamo.Vec2 {
	var s dynamo.Vec2
	for _, b := range v.bodies {
		s = s.Add(fromVec(b.GetLinearVelocity()))
	}
	return s.Scale(0.25)
}

// BrokenRatio is the fraction of springs whose length deviates from their
// current target by more than the material's broken threshold.
func (v *Voxel) BrokenRatio() float64 {
	if len(v.springs) == 0 {
		return 0
	}
	broken := 0
	for _, s := range v.springs {
		target := s.joint.GetLength()
		if target <= 0 {
			continue
		}
		cur := fromVec(s.joint.GetAnchorB()).Sub(fromVec(s.joint.GetAnchorA())).Length()
		if math.Abs(cur-target)/target > v.material.BrokenThreshold {
			broken++
		}
	}
	return float64(broken) / float64(len(v.springs))
}

// Actuate scales every spring's target length by 1 + a·AreaRatioOffset,
// where a is clamped to [-1, 1].
func (v *Voxel) Actuate(a float64) {
	if math.IsNaN(a) {
		a = 0
	}
	a = math.Max(-1, math.Min(1, a))
	f := 1 + a*v.material.AreaRatioOffset
	for _, s := range v.springs {
		s.joint.SetLength(s.rest * f)
	}
}

// Polygon returns the voxel's outer corners in world coordinates.
func (v *Voxel) Polygon() []dynamo.Point2 {
	half := v.material.MassSide() / 2
	out := make([]dynamo.Point2, 4)
	for i, b := range v.bodies {
		local := box2d.MakeB2Vec2(corners[i].X*half, corners[i].Y*half)
		out[i] = fromVec(box2d.B2TransformVec2Mul(b.GetTransform(), local)).Point()
	}
	return out
}

func (v *Voxel) translate(d dynamo.Vec2) {
	for _, b := range v.bodies {
		b.SetTransform(vec(fromVec(b.GetPosition()).Add(d)), b.GetAngle())
	}
}

func (v *Voxel) healthy() bool {
	for _, b := range v.bodies {
		if !fromVec(b.GetPosition()).IsValid() {
			return false
		}
	}
	return true
}
