package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/vsrbench/internal/control"
	"github.com/san-kum/vsrbench/internal/dynamo"
	"github.com/san-kum/vsrbench/internal/grid"
	"github.com/san-kum/vsrbench/internal/terrain"
)

func block(w, h int) RobotDescription {
	return Uniform(grid.NewFilled(w, h, true), DefaultMaterial())
}

func TestParseScaffolding(t *testing.T) {
	tests := []struct {
		in      string
		want    Scaffolding
		wantErr bool
	}{
		{"SIDE_EXTERNAL", SideExternal, false},
		{"side_external|central_cross", SideExternal | CentralCross, false},
		{"[SIDE_EXTERNAL, SIDE_INTERNAL, SIDE_CROSS]", SideExternal | SideInternal | SideCross, false},
		{"ALL", AllScaffoldings, false},
		{"", 0, true},
		{"SIDE_DIAGONAL", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScaffolding(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScaffoldingStringRoundTrip(t *testing.T) {
	for s := Scaffolding(1); s <= AllScaffoldings; s++ {
		back, err := ParseScaffolding(s.String())
		if err != nil || back != s {
			t.Errorf("%d: %q parsed to %v, %v", s, s.String(), back, err)
		}
	}
}

func TestMaterialValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Material)
		ok     bool
	}{
		{"default", func(*Material) {}, true},
		{"zero side", func(m *Material) { m.SideLength = 0 }, false},
		{"negative mass", func(m *Material) { m.Mass = -1 }, false},
		{"ratio too large", func(m *Material) { m.MassSideLengthRatio = 0.6 }, false},
		{"ratio half", func(m *Material) { m.MassSideLengthRatio = 0.5 }, true},
		{"no scaffolding", func(m *Material) { m.Scaffoldings = 0 }, false},
		{"offset one", func(m *Material) { m.AreaRatioOffset = 1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DefaultMaterial()
			tt.mutate(&m)
			err := m.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, dynamo.ErrInvalidMaterial) {
				t.Errorf("expected ErrInvalidMaterial, got %v", err)
			}
		})
	}
}

func TestRobotDescriptionValidate(t *testing.T) {
	empty := Uniform(grid.New[bool](3, 3), DefaultMaterial())
	if err := empty.Validate(); !errors.Is(err, dynamo.ErrMissingVoxel) {
		t.Errorf("expected ErrMissingVoxel, got %v", err)
	}

	mixed := block(2, 1)
	other := DefaultMaterial()
	other.SideLength = 5
	mixed.Voxels.Set(1, 0, &other)
	if err := mixed.Validate(); !errors.Is(err, dynamo.ErrInvalidMaterial) {
		t.Errorf("expected ErrInvalidMaterial, got %v", err)
	}

	bad := block(2, 2).WithActuation(control.None(3, 2))
	if err := bad.Validate(); err == nil {
		t.Error("expected actuation size mismatch")
	}
}

func TestRobotBoundingBoxBeforeAndAfterBuild(t *testing.T) {
	r, err := NewRobot(block(3, 2))
	if err != nil {
		t.Fatal(err)
	}
	box := r.BoundingBox()
	if box.Min != dynamo.V(0, -6) || box.Max != dynamo.V(9, 0) {
		t.Fatalf("unexpected box %v-%v", box.Min, box.Max)
	}

	r.Translate(dynamo.V(10, 20))
	w, err := NewWorld(dynamo.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Add(r); err != nil {
		t.Fatal(err)
	}

	built := r.BoundingBox()
	if !near(built.Min, dynamo.V(10, 14)) || !near(built.Max, dynamo.V(19, 20)) {
		t.Errorf("built box %v-%v", built.Min, built.Max)
	}

	r.Translate(dynamo.V(-10, 0))
	moved := r.BoundingBox()
	if !near(moved.Min, dynamo.V(0, 14)) {
		t.Errorf("moved box min %v", moved.Min)
	}

	if err := w.Add(r); err == nil {
		t.Error("expected error adding a robot twice")
	}
}

func near(a, b dynamo.Vec2) bool { return a.Sub(b).Length() < 1e-6 }

func TestRobotRestsOnFlatGround(t *testing.T) {
	w, err := NewWorld(dynamo.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	profile := terrain.Flat(100, 0)
	ground, err := NewGround(profile)
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewRobot(block(2, 2))
	if err != nil {
		t.Fatal(err)
	}
	move, err := terrain.Place(r.BoundingBox(), profile, terrain.DefaultXGap, terrain.DefaultYGap)
	if err != nil {
		t.Fatal(err)
	}
	r.Translate(move)
	if err := w.Add(ground, r); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 300; i++ {
		w.Step()
	}
	if !r.Healthy() {
		t.Fatal("robot diverged")
	}
	if w.Steps() != 300 {
		t.Errorf("steps = %d", w.Steps())
	}
	if bottom := r.BoundingBox().Min.Y; bottom < -0.5 || bottom > 1.0 {
		t.Errorf("robot should rest near the ground, bottom at %g", bottom)
	}

	snap := w.Snapshot(5)
	if len(snap.Objects) != 2 || snap.Objects[0].Kind != dynamo.KindGround || snap.Objects[1].Kind != dynamo.KindRobot {
		t.Fatalf("unexpected snapshot %+v", snap.Objects)
	}
	if len(snap.Objects[1].Polygons) != 4 {
		t.Errorf("expected 4 voxel polygons, got %d", len(snap.Objects[1].Polygons))
	}
}

func TestActuateChangesSpringTargets(t *testing.T) {
	w, _ := NewWorld(dynamo.DefaultSettings())
	w.SetGravity(dynamo.V(0, 0))
	r, err := NewRobot(block(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Add(r); err != nil {
		t.Fatal(err)
	}

	v := r.Voxels().Get(0, 0)
	rest := make([]float64, len(v.springs))
	for i, s := range v.springs {
		rest[i] = s.joint.GetLength()
	}

	v.Actuate(5)
	for i, s := range v.springs {
		want := rest[i] * (1 + DefaultMaterial().AreaRatioOffset)
		if math.Abs(s.joint.GetLength()-want) > 1e-9 {
			t.Errorf("spring %d length %g, want %g", i, s.joint.GetLength(), want)
		}
	}
	if len(v.springs) != 4+4+8+2 {
		t.Errorf("expected 18 springs for all scaffoldings, got %d", len(v.springs))
	}
	if br := v.BrokenRatio(); br != 0 {
		t.Errorf("20%% stretch should not break springs, ratio %g", br)
	}
}

func TestWallRejectsDegenerateBox(t *testing.T) {
	if _, err := NewWall(dynamo.BoundingBox{Min: dynamo.V(0, 0), Max: dynamo.V(0, 5)}); !errors.Is(err, dynamo.ErrDegenerateBox) {
		t.Errorf("expected ErrDegenerateBox, got %v", err)
	}
}
