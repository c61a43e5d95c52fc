package dynamo

import (
	"fmt"
	"math"
)

type Vec2 struct {
	X, Y float64
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Length() float64      { return math.Hypot(v.X, v.Y) }
func (v Vec2) IsValid() bool        { return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) }
func (v Vec2) Point() Point2        { return Point2{X: v.X, Y: v.Y} }
func (v Vec2) String() string       { return fmt.Sprintf("(%.4f, %.4f)", v.X, v.Y) }

// Point2 is the immutable, serialisable form of a position.
type Point2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type BoundingBox struct {
	Min, Max Vec2
}

func (b BoundingBox) Width() float64  { return b.Max.X - b.Min.X }
func (b BoundingBox) Height() float64 { return b.Max.Y - b.Min.Y }

// Valid reports whether max is not below min on either axis.
func (b BoundingBox) Valid() bool {
	return b.Max.X >= b.Min.X && b.Max.Y >= b.Min.Y && b.Min.IsValid() && b.Max.IsValid()
}

// Union returns the smallest box enclosing both boxes.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{
		Min: Vec2{math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y)},
		Max: Vec2{math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y)},
	}
}

// Settings configures the physics world shared by every episode kind.
type Settings struct {
	// StepInterval is the simulated time advanced by one physics step.
	StepInterval       float64 `yaml:"step_interval" json:"step_interval"`
	VelocityIterations int     `yaml:"velocity_iterations" json:"velocity_iterations"`
	PositionIterations int     `yaml:"position_iterations" json:"position_iterations"`
}

func DefaultSettings() Settings {
	return Settings{
		StepInterval:       1.0 / 60.0,
		VelocityIterations: 10,
		PositionIterations: 10,
	}
}

func (s Settings) Validate() error {
	if !(s.StepInterval > 0) || math.IsInf(s.StepInterval, 0) {
		return fmt.Errorf("%w: step interval must be positive, got %g", ErrInvalidSettings, s.StepInterval)
	}
	if s.VelocityIterations <= 0 || s.PositionIterations <= 0 {
		return fmt.Errorf("%w: solver iterations must be positive, got %d/%d",
			ErrInvalidSettings, s.VelocityIterations, s.PositionIterations)
	}
	return nil
}

type ObjectKind string

const (
	KindRobot  ObjectKind = "robot"
	KindGround ObjectKind = "ground"
	KindWall   ObjectKind = "wall"
)

// ObjectState is the immutable representation of one world object.
// Robots carry one polygon per voxel, ground one polyline.
type ObjectState struct {
	Kind     ObjectKind `json:"kind"`
	Polygons [][]Point2 `json:"polygons"`
}

type Snapshot struct {
	Time    float64       `json:"time"`
	Objects []ObjectState `json:"objects"`
}

// Observer receives one snapshot per completed physics step, synchronously
// on the stepping goroutine.
type Observer interface {
	OnSnapshot(s Snapshot)
}

type ObserverFunc func(s Snapshot)

func (f ObserverFunc) OnSnapshot(s Snapshot) { f(s) }

// Field is one named numeric output of an episode. Value is int64 or float64.
type Field struct {
	Name  string
	Value any
}

// Series holds append-only float columns keyed by short names, in insertion order.
type Series struct {
	names   []string
	columns map[string][]float64
}

func NewSeries(names ...string) *Series {
	s := &Series{columns: make(map[string][]float64, len(names))}
	for _, n := range names {
		s.ensure(n)
	}
	return s
}

func (s *Series) ensure(name string) {
	if _, ok := s.columns[name]; !ok {
		s.names = append(s.names, name)
		s.columns[name] = nil
	}
}

func (s *Series) Append(name string, v float64) {
	s.ensure(name)
	s.columns[name] = append(s.columns[name], v)
}

func (s *Series) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s *Series) Column(name string) []float64 { return s.columns[name] }

// Len returns the length of the longest column.
func (s *Series) Len() int {
	n := 0
	for _, c := range s.columns {
		n = max(n, len(c))
	}
	return n
}
