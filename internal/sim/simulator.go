// Package sim runs episodes: it builds a world around a robot, steps it until
// a final time and reduces what happened to result fields.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/vsrbench/internal/dynamo"
	"github.com/san-kum/vsrbench/internal/logging"
	"github.com/san-kum/vsrbench/internal/metrics"
	"github.com/san-kum/vsrbench/internal/physics"
)

type Simulator struct {
	world    *physics.World
	robot    *physics.Robot
	metrics  []metrics.VoxelMetric
	observer dynamo.Observer
	logger   *slog.Logger
}

func New(world *physics.World, robot *physics.Robot, logger *slog.Logger) *Simulator {
	return &Simulator{
		world:   world,
		robot:   robot,
		metrics: make([]metrics.VoxelMetric, 0),
		logger:  logging.Discard(logger),
	}
}

func (s *Simulator) AddMetric(m metrics.VoxelMetric) { s.metrics = append(s.metrics, m) }
func (s *Simulator) SetObserver(o dynamo.Observer)   { s.observer = o }

// Run steps the world while t < cfg.FinalT. Time is derived from the step
// counter, so a run always takes ceil(FinalT/Δt) steps. The robot acts on
// the time reached by each step.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	dt := s.world.Settings().StepInterval
	result := &Result{Metrics: make(map[string]float64, len(s.metrics))}
	start := time.Now()

	var steps int64
	t := 0.0
	for t < cfg.FinalT {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if cfg.PreStep != nil {
			if err := cfg.PreStep(steps, t); err != nil {
				return nil, &dynamo.SimulationError{Step: steps, Time: t, Wrapped: err}
			}
		}

		s.world.Step()
		steps++
		t = float64(steps) * dt

		s.robot.Act(t)
		if !s.robot.Healthy() {
			return nil, &dynamo.SimulationError{Step: steps, Time: t, Wrapped: dynamo.ErrUnstable}
		}

		s.notify(t)
		s.observe()

		if cfg.PostStep != nil {
			if err := cfg.PostStep(steps, t); err != nil {
				return nil, &dynamo.SimulationError{Step: steps, Time: t, Wrapped: err}
			}
		}
	}

	result.RealTime = time.Since(start)
	result.Steps = steps
	result.SimTime = t
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if math.IsNaN(cfg.FinalT) || math.IsInf(cfg.FinalT, 0) || cfg.FinalT < 0 {
		return fmt.Errorf("%w: final time must be finite and non-negative, got %g", dynamo.ErrInvalidSettings, cfg.FinalT)
	}
	return nil
}

func (s *Simulator) observe() {
	if len(s.metrics) == 0 {
		return
	}
	for _, v := range s.robot.Voxels().Values() {
		if v == nil {
			continue
		}
		for _, m := range s.metrics {
			m.Observe(v)
		}
	}
}

// notify hands a snapshot to the observer. A panicking observer is detached
// and the episode carries on headless.
func (s *Simulator) notify(t float64) {
	if s.observer == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("observer panicked, detaching", "time", t, "panic", r)
			s.observer = nil
		}
	}()
	s.observer.OnSnapshot(s.world.Snapshot(t))
}
