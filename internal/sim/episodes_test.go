package sim_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/vsrbench/internal/control"
	"github.com/san-kum/vsrbench/internal/dynamo"
	"github.com/san-kum/vsrbench/internal/grid"
	"github.com/san-kum/vsrbench/internal/physics"
	"github.com/san-kum/vsrbench/internal/sim"
)

func fieldNames(fs []dynamo.Field) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}
	return out
}

func fieldValue(fs []dynamo.Field, name string) any {
	for _, f := range fs {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

func block(w, h int) physics.RobotDescription {
	return physics.Uniform(grid.NewFilled(w, h, true), physics.DefaultMaterial())
}

var _ = Describe("Locomotion", func() {
	var ep sim.Locomotion

	BeforeEach(func() {
		ep = sim.DefaultLocomotion()
		ep.FinalT = 1.0
		ep.Settings.StepInterval = 0.1
	})

	It("takes exactly finalT/dt steps and reports every field", func() {
		res, err := ep.Run(context.Background(), block(4, 2), nil)
		Expect(err).NotTo(HaveOccurred())

		fields := res.Fields()
		Expect(fieldNames(fields)).To(Equal([]string{
			"realTime", "steps", "overallVoxelStepsPerSecond",
			"overallVoxelSimSecondsPerSecond", "overallStepsPerSecond",
			"avgBrokenRatio", "maxVelocityMagnitude",
		}))
		Expect(fieldValue(fields, "steps")).To(Equal(int64(10)))
		Expect(res.Throughput.Voxels).To(Equal(8))
		Expect(res.Throughput.RealTime).To(BeNumerically(">", 0))
		Expect(res.AvgBrokenRatio).To(BeNumerically(">=", 0))
		Expect(res.AvgBrokenRatio).To(BeNumerically("<=", 1))
		Expect(res.MaxVelocityMagnitude).To(BeNumerically(">", 0), "a falling robot moves")
	})

	It("delivers one snapshot per step to the observer", func() {
		var times []float64
		obs := dynamo.ObserverFunc(func(s dynamo.Snapshot) {
			times = append(times, s.Time)
			Expect(s.Objects).To(HaveLen(2))
		})

		_, err := ep.Run(context.Background(), block(3, 1), obs)
		Expect(err).NotTo(HaveOccurred())
		Expect(times).To(HaveLen(10))
		Expect(times[0]).To(BeNumerically("~", 0.1, 1e-12))
		Expect(times[9]).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("reports simulated time as finalT", func() {
		ep.FinalT = 1.05

		res, err := ep.Run(context.Background(), block(2, 2), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Throughput.Steps).To(Equal(int64(11)))
		Expect(res.Throughput.SimTime).To(Equal(1.05))
	})

	It("keeps an explicit actuation", func() {
		desc := block(2, 2).WithActuation(control.None(2, 2))
		res, err := ep.Run(context.Background(), desc, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Throughput.Steps).To(Equal(int64(10)))
	})

	It("rejects an empty robot", func() {
		_, err := ep.Run(context.Background(), physics.Uniform(grid.New[bool](2, 2), physics.DefaultMaterial()), nil)
		Expect(errors.Is(err, dynamo.ErrMissingVoxel)).To(BeTrue())
	})

	It("rejects invalid settings", func() {
		ep.Settings.StepInterval = 0
		_, err := ep.Run(context.Background(), block(2, 2), nil)
		Expect(errors.Is(err, dynamo.ErrInvalidSettings)).To(BeTrue())
	})
})

var _ = Describe("Cantilever", func() {
	var ep sim.Cantilever

	BeforeEach(func() {
		ep = sim.DefaultCantilever()
		ep.FinalT = 1.0
		ep.Settings.StepInterval = 0.1
	})

	It("stays put without a force", func() {
		ep.Force = 0

		res, err := ep.Run(context.Background(), block(5, 3), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.YDisplacement).To(BeNumerically("~", 0, 1e-6))
		Expect(res.DampingIndex).To(Equal(0))
		Expect(res.Overall.Steps).To(Equal(int64(10)))
		Expect(res.FinalTopPositions).To(HaveLen(5))
		for _, p := range res.FinalTopPositions {
			Expect(p.Y).To(BeNumerically("~", 0, 1e-6))
		}

		evo := res.TimeEvolution()
		Expect(evo.Names()).To(Equal([]string{"st", "rt", "y"}))
		Expect(evo.Column("y")).To(HaveLen(10))
		for _, y := range evo.Column("y") {
			Expect(y).To(BeNumerically("~", 0, 1e-6))
		}
	})

	It("never pushes when the force duration is zero", func() {
		ep.ForceDuration = 0

		for _, h := range []int{2, 3, 4} {
			res, err := ep.Run(context.Background(), block(5, h), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.YDisplacement).To(BeNumerically("~", 0, 1e-6), "height %d", h)
		}
	})

	It("reports the tracked voxel's last displacement", func() {
		res, err := ep.Run(context.Background(), block(5, 3), nil)
		Expect(err).NotTo(HaveOccurred())

		ys := res.TimeEvolution().Column("y")
		Expect(ys).NotTo(BeEmpty())
		Expect(res.YDisplacement).To(Equal(ys[len(ys)-1]))
		Expect(fieldValue(res.Fields(), "yDisplacement")).To(Equal(ys[len(ys)-1]))
	})

	It("reports zero displacement when no step runs", func() {
		ep.FinalT = 0

		res, err := ep.Run(context.Background(), block(4, 2), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.YDisplacement).To(Equal(0.0))
		Expect(res.FinalTopPositions).To(HaveLen(4))
		for _, p := range res.FinalTopPositions {
			Expect(p.Y).To(Equal(0.0))
		}
	})

	It("bends down under a force", func() {
		ep.FinalT = 2.0
		ep.Settings.StepInterval = 1.0 / 60

		res, err := ep.Run(context.Background(), block(6, 2), nil)
		Expect(err).NotTo(HaveOccurred())

		ys := res.TimeEvolution().Column("y")
		Expect(ys).NotTo(BeEmpty())
		lowest := 0.0
		for _, y := range ys {
			lowest = min(lowest, y)
		}
		Expect(lowest).To(BeNumerically("<", 0))

		fields := res.Fields()
		Expect(fields).To(HaveLen(12))
		Expect(fieldValue(fields, "dampingSteps")).To(Equal(int64(res.DampingIndex)))
		Expect(fieldValue(fields, "steps")).To(Equal(int64(len(ys))))
	})

	It("needs the tracked voxel", func() {
		desc := block(3, 3)
		desc.Voxels.Set(2, 1, nil)

		_, err := ep.Run(context.Background(), desc, nil)
		Expect(errors.Is(err, dynamo.ErrMissingVoxel)).To(BeTrue())
	})
})
