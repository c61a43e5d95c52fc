package sweep

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/san-kum/vsrbench/internal/dynamo"
	"github.com/san-kum/vsrbench/internal/experiment"
	"github.com/san-kum/vsrbench/internal/logging"
)

// RunFunc executes one trial.
type RunFunc func(ctx context.Context, t experiment.Trial) (experiment.Outcome, error)

type Harness struct {
	// Workers bounds concurrent trials; 0 means one per CPU.
	Workers int
	// Progress receives Started/Ended lines; nil discards them.
	Progress io.Writer
	Logger   *slog.Logger
}

type Report struct {
	// Rows holds one row per successful trial, in trial order.
	Rows []Row
	// Evolution folds every per-step series, static keys repeated per sample.
	Evolution *Frame
	Failed    int
}

// Run executes every trial and blocks until all have finished. A failing or
// panicking trial is logged with its static keys and contributes no row; it
// never stops the others. The only error returned is ctx's.
func (h *Harness) Run(ctx context.Context, trials []experiment.Trial, run RunFunc) (*Report, error) {
	logger := logging.Discard(h.Logger)
	progress := h.Progress
	if progress == nil {
		progress = io.Discard
	}
	lines := newLineWriter(progress)

	outcomes := make([]*experiment.Outcome, len(trials))
	errs := dynamo.ForEach(ctx, len(trials), h.Workers, func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := trials[i]
		keys := FormatKeys(t.StaticKeys)
		lines.printf("Started\t%s\n", keys)
		out, err := run(ctx, t)
		if err != nil {
			return err
		}
		lines.printf("Ended\t%s\n", keys)
		outcomes[i] = &out
		return nil
	})

	report := &Report{Evolution: NewFrame()}
	for i, t := range trials {
		if errs[i] != nil {
			report.Failed++
			logger.Error("trial failed", logging.FieldArgs(t.StaticKeys, "error", errs[i])...)
			continue
		}
		out := outcomes[i]
		row := make(Row, 0, len(t.StaticKeys)+len(out.Fields))
		row = append(row, t.StaticKeys...)
		row = append(row, out.Fields...)
		report.Rows = append(report.Rows, row)
		if out.Evolution != nil {
			report.Evolution.AppendSeries(out.Evolution, t.StaticKeys)
		}
	}

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("sweep interrupted: %w", err)
	}
	return report, nil
}
