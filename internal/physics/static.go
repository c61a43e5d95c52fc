package physics

import (
	"fmt"

	"github.com/ByteArena/box2d"

	"github.com/san-kum/vsrbench/internal/dynamo"
	"github.com/san-kum/vsrbench/internal/terrain"
)

const DefaultGroundFriction = 1.0

// Ground is a static polyline body built from a terrain profile.
type Ground struct {
	profile  terrain.Profile
	friction float64
	body     *box2d.B2Body
}

func NewGround(p terrain.Profile) (*Ground, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Ground{profile: p, friction: DefaultGroundFriction}, nil
}

func (g *Ground) Profile() terrain.Profile { return g.profile }

func (g *Ground) AddTo(w *World) error {
	if g.body != nil {
		return fmt.Errorf("ground already added to a world")
	}
	def := box2d.MakeB2BodyDef()
	def.Type = box2d.B2BodyType.B2_staticBody
	g.body = w.createBody(&def)

	for i := 0; i+1 < g.profile.Len(); i++ {
		edge := box2d.NewB2EdgeShape()
		edge.Set(
			box2d.MakeB2Vec2(g.profile.Xs[i], g.profile.Ys[i]),
			box2d.MakeB2Vec2(g.profile.Xs[i+1], g.profile.Ys[i+1]),
		)
		fd := box2d.MakeB2FixtureDef()
		fd.Shape = edge
		fd.Friction = g.friction
		g.body.CreateFixtureFromDef(&fd)
	}
	return nil
}

func (g *Ground) Immutable() dynamo.ObjectState {
	return dynamo.ObjectState{
		Kind:     dynamo.KindGround,
		Polygons: [][]dynamo.Point2{g.profile.Points()},
	}
}

// Wall is a static axis-aligned box.
type Wall struct {
	box  dynamo.BoundingBox
	body *box2d.B2Body
}

func NewWall(box dynamo.BoundingBox) (*Wall, error) {
	if !box.Valid() || box.Width() == 0 || box.Height() == 0 {
		return nil, fmt.Errorf("%w: wall %v-%v", dynamo.ErrDegenerateBox, box.Min, box.Max)
	}
	return &Wall{box: box}, nil
}

func (wl *Wall) Box() dynamo.BoundingBox { return wl.box }

// Body is nil until the wall is added to a world.
func (wl *Wall) Body() *box2d.B2Body { return wl.body }

func (wl *Wall) AddTo(w *World) error {
	if wl.body != nil {
		return fmt.Errorf("wall already added to a world")
	}
	def := box2d.MakeB2BodyDef()
	def.Type = box2d.B2BodyType.B2_staticBody
	def.Position = vec(wl.box.Min.Add(wl.box.Max).Scale(0.5))
	wl.body = w.createBody(&def)

	shape := box2d.NewB2PolygonShape()
	shape.SetAsBox(wl.box.Width()/2, wl.box.Height()/2)
	fd := box2d.MakeB2FixtureDef()
	fd.Shape = shape
	wl.body.CreateFixtureFromDef(&fd)
	return nil
}

func (wl *Wall) Immutable() dynamo.ObjectState {
	b := wl.box
	return dynamo.ObjectState{
		Kind: dynamo.KindWall,
		Polygons: [][]dynamo.Point2{{
			{X: b.Min.X, Y: b.Max.Y},
			{X: b.Max.X, Y: b.Max.Y},
			{X: b.Max.X, Y: b.Min.Y},
			{X: b.Min.X, Y: b.Min.Y},
		}},
	}
}
