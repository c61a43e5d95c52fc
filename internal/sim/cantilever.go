package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ByteArena/box2d"

	"github.com/san-kum/vsrbench/internal/dynamo"
	"github.com/san-kum/vsrbench/internal/metrics"
	"github.com/san-kum/vsrbench/internal/physics"
)

// WallMargin is how far the clamping wall extends above and below the robot.
const WallMargin = 10.0

// Cantilever clamps a passive robot to a wall by its left column, pushes its
// right column down for ForceDuration seconds and records how the free end
// settles. Gravity is off.
type Cantilever struct {
	Force         float64
	ForceDuration float64
	FinalT        float64
	Epsilon       float64
	Settings      dynamo.Settings
	Logger        *slog.Logger
}

func DefaultCantilever() Cantilever {
	return Cantilever{
		Force:         30,
		ForceDuration: 0.1,
		FinalT:        30,
		Epsilon:       0.01,
		Settings:      dynamo.DefaultSettings(),
	}
}

type CantileverResult struct {
	Overall      metrics.Throughput
	Damping      metrics.Throughput
	DampingIndex int
	// YDisplacement is the final vertical displacement of the tracked voxel.
	YDisplacement     float64
	FinalTopPositions []dynamo.Point2
	evolution         *dynamo.Series
}

func (r *CantileverResult) Fields() []dynamo.Field {
	return []dynamo.Field{
		{Name: "realTime", Value: r.Overall.RealTime},
		{Name: "dampingRealTime", Value: r.Damping.RealTime},
		{Name: "dampingSimTime", Value: r.Damping.SimTime},
		{Name: "steps", Value: r.Overall.Steps},
		{Name: "dampingSteps", Value: r.Damping.Steps},
		{Name: "dampingVoxelStepsPerSecond", Value: zeroIfUndefined(r.Damping.VoxelStepsPerSecond())},
		{Name: "dampingVoxelSimSecondsPerSecond", Value: zeroIfUndefined(r.Damping.VoxelSimSecondsPerSecond())},
		{Name: "dampingStepsPerSecond", Value: zeroIfUndefined(r.Damping.StepsPerSecond())},
		{Name: "overallVoxelStepsPerSecond", Value: r.Overall.VoxelStepsPerSecond()},
		{Name: "overallVoxelSimSecondsPerSecond", Value: r.Overall.VoxelSimSecondsPerSecond()},
		{Name: "overallStepsPerSecond", Value: r.Overall.StepsPerSecond()},
		{Name: "yDisplacement", Value: r.YDisplacement},
	}
}

// TimeEvolution holds one sample per step: simulated time (st), wall-clock
// seconds since start (rt) and vertical displacement of the tracked voxel (y).
func (r *CantileverResult) TimeEvolution() *dynamo.Series { return r.evolution }

func zeroIfUndefined(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// Run executes one cantilever episode. Any actuation in desc is ignored.
// Voxel (W-1, H/2) is tracked and must exist.
func (c Cantilever) Run(ctx context.Context, desc physics.RobotDescription, obs dynamo.Observer) (*CantileverResult, error) {
	if desc.Voxels == nil {
		return nil, fmt.Errorf("%w: robot has no voxels", dynamo.ErrMissingVoxel)
	}
	desc = desc.WithActuation(nil)
	w, h := desc.W(), desc.H()
	if desc.Voxels.Get(w-1, h/2) == nil {
		return nil, fmt.Errorf("%w: tracked voxel (%d,%d)", dynamo.ErrMissingVoxel, w-1, h/2)
	}

	world, err := physics.NewWorld(c.Settings)
	if err != nil {
		return nil, err
	}
	world.SetGravity(dynamo.V(0, 0))

	robot, err := physics.NewRobot(desc)
	if err != nil {
		return nil, err
	}
	box := robot.BoundingBox()
	wallH := box.Height() + 2*WallMargin
	wall, err := physics.NewWall(dynamo.BoundingBox{Min: dynamo.V(0, 0), Max: dynamo.V(1, wallH)})
	if err != nil {
		return nil, err
	}
	robot.Translate(dynamo.V(1-box.Min.X, (wallH-box.Height())/2-box.Min.Y))

	if err := world.Add(robot, wall); err != nil {
		return nil, err
	}

	voxels := robot.Voxels()
	for y := 0; y < h; y++ {
		v := voxels.Get(0, y)
		if v == nil {
			continue
		}
		bodies := v.VertexBodies()
		for _, i := range []int{physics.TopLeft, physics.BottomLeft} {
			anchor := bodies[i].GetWorldCenter()
			world.Weld(wall.Body(), bodies[i], dynamo.V(anchor.X, anchor.Y))
		}
	}

	var loaded []*box2d.B2Body
	for y := 0; y < h; y++ {
		for x := w - 1; x >= 0; x-- {
			if v := voxels.Get(x, y); v != nil {
				bodies := v.VertexBodies()
				loaded = append(loaded, bodies[physics.TopRight], bodies[physics.BottomRight])
				break
			}
		}
	}
	push := box2d.MakeB2Vec2(0, -c.Force/2/float64(h))

	tracked := voxels.Get(w-1, h/2)
	y0 := tracked.Center().Y
	top := make([]*physics.Voxel, 0, w)
	topY0 := make([]float64, 0, w)
	for x := 0; x < w; x++ {
		if v := voxels.Get(x, 0); v != nil {
			top = append(top, v)
			topY0 = append(topY0, v.Center().Y)
		}
	}
	n := 0
	if dt := c.Settings.StepInterval; dt > 0 {
		n = int(c.FinalT/dt) + 1
	}
	st := make([]float64, 0, n)
	rt := make([]float64, 0, n)
	ys := make([]float64, 0, n)

	s := New(world, robot, c.Logger)
	s.SetObserver(obs)
	start := time.Now()

	res, err := s.Run(ctx, Config{
		FinalT: c.FinalT,
		PreStep: func(_ int64, t float64) error {
			if c.ForceDuration > 0 && t <= c.ForceDuration {
				for _, b := range loaded {
					b.ApplyForceToCenter(push, true)
				}
			}
			return nil
		},
		PostStep: func(_ int64, t float64) error {
			ys = append(ys, tracked.Center().Y-y0)
			rt = append(rt, time.Since(start).Seconds())
			st = append(st, t)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	voxelCount := robot.CountVoxels()
	out := &CantileverResult{
		Overall:   res.Throughput(voxelCount),
		evolution: dynamo.NewSeries("st", "rt", "y"),
	}
	for i := range ys {
		out.evolution.Append("st", st[i])
		out.evolution.Append("rt", rt[i])
		out.evolution.Append("y", ys[i])
	}

	idx := DampingIndex(ys, c.Epsilon)
	out.DampingIndex = idx
	out.Damping = metrics.Throughput{Steps: int64(idx), Voxels: voxelCount}
	if len(ys) > 0 {
		out.Damping.RealTime = rt[idx]
		out.Damping.SimTime = st[idx]
	}

	// Top-row positions are relative to each voxel's own starting height.
	for i, v := range top {
		center := v.Center()
		out.FinalTopPositions = append(out.FinalTopPositions, dynamo.Point2{X: center.X, Y: center.Y - topY0[i]})
	}
	if len(ys) > 0 {
		out.YDisplacement = ys[len(ys)-1]
	}

	return out, nil
}
