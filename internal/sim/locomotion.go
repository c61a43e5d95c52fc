package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/san-kum/vsrbench/internal/control"
	"github.com/san-kum/vsrbench/internal/dynamo"
	"github.com/san-kum/vsrbench/internal/metrics"
	"github.com/san-kum/vsrbench/internal/physics"
	"github.com/san-kum/vsrbench/internal/terrain"
)

// Locomotion drops a robot on hilly terrain and lets it walk for FinalT
// simulated seconds.
type Locomotion struct {
	FinalT      float64
	HillsHeight float64
	Frequency   float64
	Hills       int
	Length      float64
	Seed        int64
	Settings    dynamo.Settings
	Logger      *slog.Logger
}

func DefaultLocomotion() Locomotion {
	return Locomotion{
		FinalT:      50,
		HillsHeight: 5,
		Frequency:   1,
		Hills:       terrain.DefaultHills,
		Length:      terrain.DefaultLength,
		Seed:        terrain.DefaultSeed,
		Settings:    dynamo.DefaultSettings(),
	}
}

type LocomotionResult struct {
	Throughput           metrics.Throughput
	AvgBrokenRatio       float64
	MaxVelocityMagnitude float64
}

func (r *LocomotionResult) Fields() []dynamo.Field {
	return []dynamo.Field{
		{Name: "realTime", Value: r.Throughput.RealTime},
		{Name: "steps", Value: r.Throughput.Steps},
		{Name: "overallVoxelStepsPerSecond", Value: r.Throughput.VoxelStepsPerSecond()},
		{Name: "overallVoxelSimSecondsPerSecond", Value: r.Throughput.VoxelSimSecondsPerSecond()},
		{Name: "overallStepsPerSecond", Value: r.Throughput.StepsPerSecond()},
		{Name: "avgBrokenRatio", Value: r.AvgBrokenRatio},
		{Name: "maxVelocityMagnitude", Value: r.MaxVelocityMagnitude},
	}
}

// Run executes one locomotion episode. A description without actuation is
// driven by a sinusoidal wave at l.Frequency. obs may be nil.
func (l Locomotion) Run(ctx context.Context, desc physics.RobotDescription, obs dynamo.Observer) (*LocomotionResult, error) {
	if desc.Voxels == nil {
		return nil, fmt.Errorf("%w: robot has no voxels", dynamo.ErrMissingVoxel)
	}
	if desc.Actuation == nil {
		desc = desc.WithActuation(control.Sinusoidal(l.Frequency, desc.W(), desc.H()))
	}

	world, err := physics.NewWorld(l.Settings)
	if err != nil {
		return nil, err
	}
	robot, err := physics.NewRobot(desc)
	if err != nil {
		return nil, err
	}

	profile := terrain.Generate(l.Hills, l.Length, l.HillsHeight, rand.New(rand.NewSource(l.Seed)))
	ground, err := physics.NewGround(profile)
	if err != nil {
		return nil, err
	}
	move, err := terrain.Place(robot.BoundingBox(), profile, terrain.DefaultXGap, terrain.DefaultYGap)
	if err != nil {
		return nil, fmt.Errorf("place robot: %w", err)
	}
	robot.Translate(move)

	if err := world.Add(robot, ground); err != nil {
		return nil, err
	}

	velocity := metrics.NewMaxVelocity()
	broken := metrics.NewBrokenRatio()

	s := New(world, robot, l.Logger)
	s.AddMetric(velocity)
	s.AddMetric(broken)
	s.SetObserver(obs)

	res, err := s.Run(ctx, Config{FinalT: l.FinalT})
	if err != nil {
		return nil, err
	}

	// Simulated seconds are reported as the requested episode length.
	tp := res.Throughput(robot.CountVoxels())
	tp.SimTime = l.FinalT
	return &LocomotionResult{
		Throughput:           tp,
		AvgBrokenRatio:       res.Metrics[broken.Name()],
		MaxVelocityMagnitude: res.Metrics[velocity.Name()],
	}, nil
}
