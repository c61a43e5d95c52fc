package experiment

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/vsrbench/internal/dynamo"
	"github.com/san-kum/vsrbench/internal/physics"
)

// Assignment writes one compiled value into a target.
type Assignment func(t Target)

// Setter converts a raw value once and returns the assignment that applies it.
type Setter func(v any) (Assignment, error)

// Binder maps dotted configuration keys to typed setters.
type Binder map[string]Setter

// DefaultBinder knows every settings.* and builder.* key a sweep can vary.
func DefaultBinder() Binder {
	return Binder{
		"settings.stepFrequency":                      floatSetter(func(t Target, f float64) { t.Settings.StepInterval = f }),
		"settings.positionConstraintSolverIterations": intSetter(func(t Target, n int) { t.Settings.PositionIterations = n }),
		"settings.velocityConstraintSolverIterations": intSetter(func(t Target, n int) { t.Settings.VelocityIterations = n }),

		"builder.sideLength":          floatSetter(func(t Target, f float64) { t.Material.SideLength = f }),
		"builder.mass":                floatSetter(func(t Target, f float64) { t.Material.Mass = f }),
		"builder.springF":             floatSetter(func(t Target, f float64) { t.Material.SpringF = f }),
		"builder.springD":             floatSetter(func(t Target, f float64) { t.Material.SpringD = f }),
		"builder.massLinearDamping":   floatSetter(func(t Target, f float64) { t.Material.MassLinearDamping = f }),
		"builder.massAngularDamping":  floatSetter(func(t Target, f float64) { t.Material.MassAngularDamping = f }),
		"builder.massSideLengthRatio": floatSetter(func(t Target, f float64) { t.Material.MassSideLengthRatio = f }),
		"builder.friction":            floatSetter(func(t Target, f float64) { t.Material.Friction = f }),
		"builder.areaRatioOffset":     floatSetter(func(t Target, f float64) { t.Material.AreaRatioOffset = f }),
		"builder.brokenThreshold":     floatSetter(func(t Target, f float64) { t.Material.BrokenThreshold = f }),
		"builder.massCollisionFlag":   boolSetter(func(t Target, b bool) { t.Material.MassCollision = b }),
		"builder.springScaffoldings":  scaffoldingSetter(func(t Target, s physics.Scaffolding) { t.Material.Scaffoldings = s }),
	}
}

// Compile resolves key and converts value. The error wraps
// dynamo.ErrUnknownKey or dynamo.ErrBadValue.
func (b Binder) Compile(key string, value any) (Assignment, error) {
	set, ok := b[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownKey, key)
	}
	a, err := set(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%v: %v", dynamo.ErrBadValue, key, value, err)
	}
	return a, nil
}

func (b Binder) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func floatSetter(apply func(Target, float64)) Setter {
	return func(v any) (Assignment, error) {
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		return func(t Target) { apply(t, f) }, nil
	}
}

func intSetter(apply func(Target, int)) Setter {
	return func(v any) (Assignment, error) {
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("not an integer: %v", v)
		}
		n := int(f)
		return func(t Target) { apply(t, n) }, nil
	}
}

func boolSetter(apply func(Target, bool)) Setter {
	return func(v any) (Assignment, error) {
		var b bool
		switch x := v.(type) {
		case bool:
			b = x
		case string:
			parsed, err := strconv.ParseBool(x)
			if err != nil {
				return nil, err
			}
			b = parsed
		default:
			return nil, fmt.Errorf("want bool, got %T", v)
		}
		return func(t Target) { apply(t, b) }, nil
	}
}

func scaffoldingSetter(apply func(Target, physics.Scaffolding)) Setter {
	return func(v any) (Assignment, error) {
		var s physics.Scaffolding
		switch x := v.(type) {
		case physics.Scaffolding:
			s = x
		case string:
			parsed, err := physics.ParseScaffolding(x)
			if err != nil {
				return nil, err
			}
			s = parsed
		case []string:
			parsed, err := physics.ParseScaffolding(strings.Join(x, "|"))
			if err != nil {
				return nil, err
			}
			s = parsed
		case []any:
			parts := make([]string, len(x))
			for i, p := range x {
				parts[i] = fmt.Sprint(p)
			}
			parsed, err := physics.ParseScaffolding(strings.Join(parts, "|"))
			if err != nil {
				return nil, err
			}
			s = parsed
		default:
			return nil, fmt.Errorf("want scaffolding set, got %T", v)
		}
		return func(t Target) { apply(t, s) }, nil
	}
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	default:
		return 0, fmt.Errorf("want number, got %T", v)
	}
}
