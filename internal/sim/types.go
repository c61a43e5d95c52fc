package sim

import (
	"time"

	"github.com/san-kum/vsrbench/internal/metrics"
)

// StepFunc runs around a physics step. step counts completed steps and t is
// the simulated time at that point.
type StepFunc func(step int64, t float64) error

type Config struct {
	FinalT float64
	// PreStep runs before each physics step, PostStep after actuation,
	// metrics and snapshot.
	PreStep  StepFunc
	PostStep StepFunc
}

type Result struct {
	Steps    int64
	SimTime  float64
	RealTime time.Duration
	Metrics  map[string]float64
}

func (r *Result) Throughput(voxels int) metrics.Throughput {
	return metrics.Throughput{
		Steps:    r.Steps,
		RealTime: r.RealTime.Seconds(),
		SimTime:  r.SimTime,
		Voxels:   voxels,
	}
}
