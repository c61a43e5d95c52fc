// Package sweep enumerates a Cartesian space of trial configurations, runs the
// trials on a bounded worker pool and folds their outcomes into tables.
package sweep

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/san-kum/vsrbench/internal/dynamo"
	"github.com/san-kum/vsrbench/internal/experiment"
	"github.com/san-kum/vsrbench/internal/logging"
	"github.com/san-kum/vsrbench/internal/physics"
)

// Param is one swept configuration key. The first value is the baseline.
type Param struct {
	Key    string `yaml:"key" json:"key"`
	Values []any  `yaml:"values" json:"values"`
}

type PlanConfig struct {
	Episode     string
	Shapes      []experiment.Shape
	Params      []Param
	Repetitions int
	Settings    dynamo.Settings
	Material    physics.Material
}

// Plan is a compiled sweep space. Every (key, value) pair is converted once
// at construction; pairs that fail to bind are logged and become no-ops, so
// their trials still run on the baseline.
type Plan struct {
	cfg      PlanConfig
	baseline []experiment.Assignment
	compiled [][]experiment.Assignment
}

func NewPlan(cfg PlanConfig, binder experiment.Binder, logger *slog.Logger) (*Plan, error) {
	logger = logging.Discard(logger)
	if len(cfg.Shapes) == 0 {
		return nil, errors.New("sweep: no shapes")
	}
	if cfg.Repetitions < 1 {
		return nil, fmt.Errorf("sweep: repetitions must be at least 1, got %d", cfg.Repetitions)
	}
	for _, p := range cfg.Params {
		if len(p.Values) == 0 {
			return nil, fmt.Errorf("sweep: param %s has no values", p.Key)
		}
	}

	p := &Plan{
		cfg:      cfg,
		baseline: make([]experiment.Assignment, len(cfg.Params)),
		compiled: make([][]experiment.Assignment, len(cfg.Params)),
	}
	for i, param := range cfg.Params {
		p.compiled[i] = make([]experiment.Assignment, len(param.Values))
		for j, v := range param.Values {
			a, err := binder.Compile(param.Key, v)
			if err != nil {
				logger.Warn("cannot bind sweep value, using baseline", "key", param.Key, "value", v, "error", err)
				continue
			}
			p.compiled[i][j] = a
		}
		p.baseline[i] = p.compiled[i][0]
	}
	return p, nil
}

// Len is the number of trials: shapes × values × repetitions. A plan without
// params runs each shape on the baseline.
func (p *Plan) Len() int {
	values := 0
	for _, param := range p.cfg.Params {
		values += len(param.Values)
	}
	if len(p.cfg.Params) == 0 {
		values = 1
	}
	return len(p.cfg.Shapes) * values * p.cfg.Repetitions
}

// Trials enumerates shape, then param, then value, then repetition. Each
// trial starts from the baseline (first value of every param) and applies
// its own value on top.
func (p *Plan) Trials() []experiment.Trial {
	trials := make([]experiment.Trial, 0, p.Len())
	for _, shape := range p.cfg.Shapes {
		if len(p.cfg.Params) == 0 {
			for it := 0; it < p.cfg.Repetitions; it++ {
				trials = append(trials, p.trial(shape, it, -1, -1))
			}
			continue
		}
		for i, param := range p.cfg.Params {
			for j := range param.Values {
				for it := 0; it < p.cfg.Repetitions; it++ {
					trials = append(trials, p.trial(shape, it, i, j))
				}
			}
		}
	}
	return trials
}

func (p *Plan) trial(shape experiment.Shape, iteration, param, value int) experiment.Trial {
	t := experiment.Trial{
		Episode:   p.cfg.Episode,
		Shape:     shape,
		Settings:  p.cfg.Settings,
		Material:  p.cfg.Material,
		Iteration: iteration,
	}

	target := t.Target()
	for _, a := range p.baseline {
		if a != nil {
			a(target)
		}
	}
	if param >= 0 {
		if a := p.compiled[param][value]; a != nil {
			a(target)
		}
	}

	keys := []dynamo.Field{
		{Name: "iteration", Value: iteration},
		{Name: "shape", Value: shape.String()},
		{Name: "nVoxels", Value: shape.Count()},
	}
	for i, pp := range p.cfg.Params {
		v := pp.Values[0]
		if i == param {
			v = pp.Values[value]
		}
		keys = append(keys, dynamo.Field{Name: pp.Key, Value: displayValue(v)})
	}
	t.StaticKeys = keys
	return t
}

func displayValue(v any) any {
	switch x := v.(type) {
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = fmt.Sprint(e)
		}
		return strings.Join(parts, "|")
	case []string:
		return strings.Join(x, "|")
	case fmt.Stringer:
		return x.String()
	}
	return v
}

// FormatKeys renders static keys as {k=v, k=v}.
func FormatKeys(keys []dynamo.Field) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", k.Name, k.Value)
	}
	b.WriteByte('}')
	return b.String()
}
