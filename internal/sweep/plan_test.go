package sweep_test

import (
	"bytes"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/vsrbench/internal/dynamo"
	"github.com/san-kum/vsrbench/internal/experiment"
	"github.com/san-kum/vsrbench/internal/physics"
	"github.com/san-kum/vsrbench/internal/sweep"
)

func keyNames(fs []dynamo.Field) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}
	return out
}

func keyValue(fs []dynamo.Field, name string) any {
	for _, f := range fs {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

var _ = Describe("Plan", func() {
	var cfg sweep.PlanConfig

	BeforeEach(func() {
		cfg = sweep.PlanConfig{
			Episode:     experiment.EpisodeLocomotion,
			Shapes:      []experiment.Shape{experiment.Rect(3, 3), experiment.Rect(4, 3)},
			Repetitions: 2,
			Settings:    dynamo.DefaultSettings(),
			Material:    physics.DefaultMaterial(),
			Params: []sweep.Param{
				{Key: "settings.stepFrequency", Values: []any{0.015, 0.005, 0.01}},
				{Key: "builder.springF", Values: []any{8, 4}},
			},
		}
	})

	It("enumerates shapes × values × repetitions", func() {
		plan, err := sweep.NewPlan(cfg, experiment.DefaultBinder(), nil)
		Expect(err).NotTo(HaveOccurred())

		trials := plan.Trials()
		Expect(trials).To(HaveLen(2 * (3 + 2) * 2))
		Expect(plan.Len()).To(Equal(len(trials)))
	})

	It("nests shape, param, value and repetition in that order", func() {
		plan, err := sweep.NewPlan(cfg, experiment.DefaultBinder(), nil)
		Expect(err).NotTo(HaveOccurred())
		trials := plan.Trials()

		Expect(trials[0].Iteration).To(Equal(0))
		Expect(trials[1].Iteration).To(Equal(1))
		Expect(trials[0].Settings.StepInterval).To(Equal(0.015))
		Expect(trials[2].Settings.StepInterval).To(Equal(0.005))
		Expect(trials[6].StaticKeys).To(ContainElement(dynamo.Field{Name: "builder.springF", Value: 8}))
		Expect(trials[9].Shape.String()).To(Equal("3x3"))
		Expect(trials[10].Shape.String()).To(Equal("4x3"))
	})

	It("starts every trial from the baseline", func() {
		plan, err := sweep.NewPlan(cfg, experiment.DefaultBinder(), nil)
		Expect(err).NotTo(HaveOccurred())

		for _, t := range plan.Trials() {
			swept := keyValue(t.StaticKeys, "builder.springF")
			Expect(t.Material.SpringF).To(BeNumerically("==", swept))
			if swept == 4 {
				Expect(t.Settings.StepInterval).To(Equal(0.015))
			}
		}
	})

	It("orders static keys with the swept key overwritten in place", func() {
		plan, err := sweep.NewPlan(cfg, experiment.DefaultBinder(), nil)
		Expect(err).NotTo(HaveOccurred())
		t := plan.Trials()[3]

		Expect(keyNames(t.StaticKeys)).To(Equal([]string{
			"iteration", "shape", "nVoxels", "settings.stepFrequency", "builder.springF",
		}))
		Expect(keyValue(t.StaticKeys, "nVoxels")).To(Equal(9))
		Expect(keyValue(t.StaticKeys, "settings.stepFrequency")).To(Equal(0.005))
		Expect(sweep.FormatKeys(t.StaticKeys)).To(Equal(
			"{iteration=1, shape=3x3, nVoxels=9, settings.stepFrequency=0.005, builder.springF=8}"))
	})

	It("logs unbindable values once and keeps their trials", func() {
		cfg.Params = append(cfg.Params,
			sweep.Param{Key: "builder.colour", Values: []any{"red", "blue"}},
			sweep.Param{Key: "builder.springD", Values: []any{0.3, "soft"}},
		)
		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))

		plan, err := sweep.NewPlan(cfg, experiment.DefaultBinder(), logger)
		Expect(err).NotTo(HaveOccurred())
		Expect(plan.Trials()).To(HaveLen(2 * (3 + 2 + 2 + 2) * 2))
		Expect(bytes.Count(logs.Bytes(), []byte("cannot bind"))).To(Equal(3))

		for _, t := range plan.Trials() {
			Expect(t.Material.SpringD).To(Equal(0.3))
		}
	})

	It("runs each shape on the baseline when nothing is swept", func() {
		cfg.Params = nil
		plan, err := sweep.NewPlan(cfg, experiment.DefaultBinder(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(plan.Trials()).To(HaveLen(4))
	})

	It("rejects malformed plans", func() {
		bad := cfg
		bad.Shapes = nil
		_, err := sweep.NewPlan(bad, experiment.DefaultBinder(), nil)
		Expect(err).To(HaveOccurred())

		bad = cfg
		bad.Repetitions = 0
		_, err = sweep.NewPlan(bad, experiment.DefaultBinder(), nil)
		Expect(err).To(HaveOccurred())

		bad = cfg
		bad.Params = []sweep.Param{{Key: "builder.springF"}}
		_, err = sweep.NewPlan(bad, experiment.DefaultBinder(), nil)
		Expect(err).To(HaveOccurred())
	})
})
