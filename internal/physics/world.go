package physics

import (
	"fmt"

	"github.com/ByteArena/box2d"

	"github.com/san-kum/vsrbench/internal/dynamo"
)

// DefaultGravity is the gravity of a freshly built world.
var DefaultGravity = dynamo.V(0, -9.8)

// WorldObject is anything that can be built into a world and captured as an
// immutable state.
type WorldObject interface {
	AddTo(w *World) error
	Immutable() dynamo.ObjectState
}

// World owns one box2d world. It is not safe for concurrent use; each
// episode builds its own.
type World struct {
	b2       box2d.B2World
	settings dynamo.Settings
	objects  []WorldObject
	steps    int64
}

func NewWorld(s dynamo.Settings) (*World, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &World{
		b2:       box2d.MakeB2World(vec(DefaultGravity)),
		settings: s,
	}, nil
}

func (w *World) Settings() dynamo.Settings { return w.settings }

func (w *World) SetGravity(g dynamo.Vec2) { w.b2.SetGravity(vec(g)) }

func (w *World) Gravity() dynamo.Vec2 { return fromVec(w.b2.GetGravity()) }

// Add builds objects into the world in order. The first failure stops the
// sequence.
func (w *World) Add(objs ...WorldObject) error {
	for _, o := range objs {
		if err := o.AddTo(w); err != nil {
			return fmt.Errorf("add %T: %w", o, err)
		}
		w.objects = append(w.objects, o)
	}
	return nil
}

// Step advances the world by one step interval.
func (w *World) Step() {
	w.b2.Step(w.settings.StepInterval, w.settings.VelocityIterations, w.settings.PositionIterations)
	w.steps++
}

func (w *World) Steps() int64 { return w.steps }

// Snapshot captures every added object at sim time t.
func (w *World) Snapshot(t float64) dynamo.Snapshot {
	objs := make([]dynamo.ObjectState, len(w.objects))
	for i, o := range w.objects {
		objs[i] = o.Immutable()
	}
	return dynamo.Snapshot{Time: t, Objects: objs}
}

// Weld rigidly joins two bodies at a world anchor.
func (w *World) Weld(a, b *box2d.B2Body, anchor dynamo.Vec2) {
	def := box2d.MakeB2WeldJointDef()
	def.Initialize(a, b, vec(anchor))
	w.b2.CreateJoint(&def)
}

func (w *World) createBody(def *box2d.B2BodyDef) *box2d.B2Body {
	return w.b2.CreateBody(def)
}

func (w *World) createSpring(a, b *box2d.B2Body, anchorA, anchorB dynamo.Vec2, freq, damping float64) *box2d.B2DistanceJoint {
	def := box2d.MakeB2DistanceJointDef()
	def.Initialize(a, b, vec(anchorA), vec(anchorB))
	def.FrequencyHz = freq
	def.DampingRatio = damping
	return w.b2.CreateJoint(&def).(*box2d.B2DistanceJoint)
}

func vec(v dynamo.Vec2) box2d.B2Vec2 { return box2d.MakeB2Vec2(v.X, v.Y) }

func fromVec(v box2d.B2Vec2) dynamo.Vec2 { return dynamo.V(v.X, v.Y) }
