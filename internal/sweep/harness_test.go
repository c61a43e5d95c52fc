package sweep_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/vsrbench/internal/dynamo"
	"github.com/san-kum/vsrbench/internal/experiment"
	"github.com/san-kum/vsrbench/internal/physics"
	"github.com/san-kum/vsrbench/internal/sim"
	"github.com/san-kum/vsrbench/internal/sweep"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func fakeTrials(n int) []experiment.Trial {
	trials := make([]experiment.Trial, n)
	for i := range trials {
		trials[i] = experiment.Trial{
			Iteration:  i,
			StaticKeys: []dynamo.Field{{Name: "iteration", Value: i}},
		}
	}
	return trials
}

func echo(_ context.Context, t experiment.Trial) (experiment.Outcome, error) {
	return experiment.Outcome{Fields: []dynamo.Field{{Name: "double", Value: int64(2 * t.Iteration)}}}, nil
}

var _ = Describe("Harness", func() {
	var (
		progress *syncBuffer
		logs     *syncBuffer
		h        *sweep.Harness
	)

	BeforeEach(func() {
		progress = &syncBuffer{}
		logs = &syncBuffer{}
		h = &sweep.Harness{
			Workers:  3,
			Progress: progress,
			Logger:   slog.New(slog.NewTextHandler(logs, nil)),
		}
	})

	It("produces one row per trial in submission order", func() {
		report, err := h.Run(context.Background(), fakeTrials(20), func(ctx context.Context, t experiment.Trial) (experiment.Outcome, error) {
			time.Sleep(time.Duration(20-t.Iteration) * time.Millisecond)
			return echo(ctx, t)
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Rows).To(HaveLen(20))
		Expect(report.Failed).To(BeZero())

		for i, row := range report.Rows {
			Expect(row.Keys()).To(Equal([]string{"iteration", "double"}))
			v, ok := row.Get("double")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(int64(2 * i)))
		}
	})

	It("prints Started and Ended lines for every trial", func() {
		_, err := h.Run(context.Background(), fakeTrials(5), echo)
		Expect(err).NotTo(HaveOccurred())

		out := progress.String()
		Expect(strings.Count(out, "Started\t")).To(Equal(5))
		Expect(strings.Count(out, "Ended\t")).To(Equal(5))
		Expect(out).To(ContainSubstring("Started\t{iteration=4}\n"))
	})

	It("never runs more than Workers trials at once", func() {
		var running, peak atomic.Int64
		_, err := h.Run(context.Background(), fakeTrials(12), func(ctx context.Context, t experiment.Trial) (experiment.Outcome, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return echo(ctx, t)
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(peak.Load()).To(BeNumerically("<=", 3))
	})

	It("isolates failing and panicking trials", func() {
		report, err := h.Run(context.Background(), fakeTrials(6), func(ctx context.Context, t experiment.Trial) (experiment.Outcome, error) {
			switch t.Iteration {
			case 1:
				return experiment.Outcome{}, errors.New("diverged")
			case 4:
				panic("bad geometry")
			}
			return echo(ctx, t)
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Rows).To(HaveLen(4))
		Expect(report.Failed).To(Equal(2))

		Expect(logs.String()).To(ContainSubstring("iteration=1"))
		Expect(logs.String()).To(ContainSubstring("diverged"))
		Expect(logs.String()).To(ContainSubstring("bad geometry"))
		Expect(strings.Count(progress.String(), "Ended\t")).To(Equal(4))
	})

	It("reports interruption", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		report, err := h.Run(ctx, fakeTrials(4), echo)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(report.Rows).To(BeEmpty())
		_, err = sweep.NewTable(report.Rows)
		Expect(errors.Is(err, dynamo.ErrNoResults)).To(BeTrue())
	})

	It("folds per-trial series after the run", func() {
		report, err := h.Run(context.Background(), fakeTrials(3), func(_ context.Context, t experiment.Trial) (experiment.Outcome, error) {
			s := dynamo.NewSeries("st", "y")
			for i := 0; i <= t.Iteration; i++ {
				s.Append("st", float64(i))
				s.Append("y", float64(-i))
			}
			return experiment.Outcome{Evolution: s}, nil
		})
		Expect(err).NotTo(HaveOccurred())

		table, err := report.Evolution.Table()
		Expect(err).NotTo(HaveOccurred())
		Expect(table.Header).To(Equal([]string{"st", "y", "iteration"}))
		Expect(table.Records).To(HaveLen(1 + 2 + 3))
		Expect(table.Records[5]).To(Equal([]any{2.0, -2.0, 2}))
	})

	Context("with real episodes", func() {
		It("runs S·V·R cantilever trials into a table", func() {
			cant := sim.DefaultCantilever()
			cant.FinalT = 0.2
			registry := experiment.NewRegistry(sim.DefaultLocomotion(), cant, nil)

			settings := dynamo.DefaultSettings()
			settings.StepInterval = 0.05
			plan, err := sweep.NewPlan(sweep.PlanConfig{
				Episode:     experiment.EpisodeCantilever,
				Shapes:      []experiment.Shape{experiment.Rect(3, 2), experiment.Rect(4, 2)},
				Repetitions: 1,
				Settings:    settings,
				Material:    physics.DefaultMaterial(),
				Params: []sweep.Param{
					{Key: "builder.springF", Values: []any{8, 20}},
				},
			}, experiment.DefaultBinder(), nil)
			Expect(err).NotTo(HaveOccurred())

			report, err := h.Run(context.Background(), plan.Trials(), func(ctx context.Context, t experiment.Trial) (experiment.Outcome, error) {
				return registry.Run(ctx, t, nil)
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Rows).To(HaveLen(4))

			table, err := sweep.NewTable(report.Rows)
			Expect(err).NotTo(HaveOccurred())
			Expect(table.Header[:4]).To(Equal([]string{"iteration", "shape", "nVoxels", "builder.springF"}))
			Expect(table.Header).To(ContainElement("yDisplacement"))
			Expect(table.Records).To(HaveLen(4))

			evo, err := report.Evolution.Table()
			Expect(err).NotTo(HaveOccurred())
			Expect(evo.Records).To(HaveLen(4 * 4))
		})
	})
})
