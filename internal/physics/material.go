package physics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/vsrbench/internal/dynamo"
)

// Scaffolding selects which spring families connect a voxel's vertex bodies.
type Scaffolding uint8

const (
	SideExternal Scaffolding = 1 << iota
	SideInternal
	SideCross
	CentralCross

	AllScaffoldings = SideExternal | SideInternal | SideCross | CentralCross
)

var scaffoldingNames = map[Scaffolding]string{
	SideExternal: "SIDE_EXTERNAL",
	SideInternal: "SIDE_INTERNAL",
	SideCross:    "SIDE_CROSS",
	CentralCross: "CENTRAL_CROSS",
}

func (s Scaffolding) Has(f Scaffolding) bool { return s&f == f }

func (s Scaffolding) String() string {
	if s == 0 {
		return "NONE"
	}
	var parts []string
	for _, f := range []Scaffolding{SideExternal, SideInternal, SideCross, CentralCross} {
		if s.Has(f) {
			parts = append(parts, scaffoldingNames[f])
		}
	}
	return strings.Join(parts, "|")
}

// ParseScaffolding accepts flag names separated by '|', ',' or spaces, with
// optional surrounding brackets, and the shorthand ALL.
func ParseScaffolding(s string) (Scaffolding, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ',' || r == ' '
	})

	var out Scaffolding
	for _, f := range fields {
		name := strings.ToUpper(f)
		if name == "ALL" {
			out |= AllScaffoldings
			continue
		}
		found := false
		for flag, n := range scaffoldingNames {
			if n == name {
				out |= flag
				found = true
				break
			}
		}
		if !found {
			known := make([]string, 0, len(scaffoldingNames))
			for _, n := range scaffoldingNames {
				known = append(known, n)
			}
			sort.Strings(known)
			return 0, fmt.Errorf("unknown scaffolding %q (known: %s)", f, strings.Join(known, ", "))
		}
	}
	if out == 0 {
		return 0, fmt.Errorf("empty scaffolding %q", s)
	}
	return out, nil
}

// Material describes how one voxel is built. Values are copied into every
// voxel that uses them.
type Material struct {
	SideLength          float64     `yaml:"side_length" json:"side_length"`
	Mass                float64     `yaml:"mass" json:"mass"`
	MassSideLengthRatio float64     `yaml:"mass_side_length_ratio" json:"mass_side_length_ratio"`
	SpringF             float64     `yaml:"spring_f" json:"spring_f"`
	SpringD             float64     `yaml:"spring_d" json:"spring_d"`
	MassLinearDamping   float64     `yaml:"mass_linear_damping" json:"mass_linear_damping"`
	MassAngularDamping  float64     `yaml:"mass_angular_damping" json:"mass_angular_damping"`
	Friction            float64     `yaml:"friction" json:"friction"`
	AreaRatioOffset     float64     `yaml:"area_ratio_offset" json:"area_ratio_offset"`
	BrokenThreshold     float64     `yaml:"broken_threshold" json:"broken_threshold"`
	MassCollision       bool        `yaml:"mass_collision" json:"mass_collision"`
	Scaffoldings        Scaffolding `yaml:"-" json:"-"`
}

func DefaultMaterial() Material {
	return Material{
		SideLength:          3.0,
		Mass:                1.0,
		MassSideLengthRatio: 0.35,
		SpringF:             8.0,
		SpringD:             0.3,
		MassLinearDamping:   1.0,
		MassAngularDamping:  1.0,
		Friction:            1.0,
		AreaRatioOffset:     0.2,
		BrokenThreshold:     0.5,
		Scaffoldings:        AllScaffoldings,
	}
}

// MassSide is the side of each square vertex body.
func (m Material) MassSide() float64 { return m.SideLength * m.MassSideLengthRatio }

func (m Material) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"side length", m.SideLength},
		{"mass", m.Mass},
		{"spring frequency", m.SpringF},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %g", dynamo.ErrInvalidMaterial, p.name, p.v)
		}
	}
	if !(m.MassSideLengthRatio > 0 && m.MassSideLengthRatio <= 0.5) {
		return fmt.Errorf("%w: mass side length ratio must be in (0, 0.5], got %g",
			dynamo.ErrInvalidMaterial, m.MassSideLengthRatio)
	}
	if m.SpringD < 0 || m.MassLinearDamping < 0 || m.MassAngularDamping < 0 || m.Friction < 0 {
		return fmt.Errorf("%w: damping and friction must be non-negative", dynamo.ErrInvalidMaterial)
	}
	if m.AreaRatioOffset < 0 || m.AreaRatioOffset >= 1 {
		return fmt.Errorf("%w: area ratio offset must be in [0, 1), got %g", dynamo.ErrInvalidMaterial, m.AreaRatioOffset)
	}
	if m.Scaffoldings&AllScaffoldings == 0 {
		return fmt.Errorf("%w: no spring scaffolding", dynamo.ErrInvalidMaterial)
	}
	return nil
}
