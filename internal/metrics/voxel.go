package metrics

import "github.com/san-kum/vsrbench/internal/dynamo"

// Voxel is the sensor surface of one live voxel.
type Voxel interface {
	Velocity() dynamo.Vec2
	BrokenRatio() float64
}

// VoxelMetric accumulates one value over every voxel reading of an episode.
type VoxelMetric interface {
	Name() string
	Observe(v Voxel)
	Value() float64
	Reset()
}

type MaxVelocity struct {
	max float64
}

func NewMaxVelocity() *MaxVelocity { return &MaxVelocity{} }

func (m *MaxVelocity) Name() string { return "maxVelocityMagnitude" }

func (m *MaxVelocity) Observe(v Voxel) {
	if s := v.Velocity().Length(); s > m.max {
		m.max = s
	}
}

func (m *MaxVelocity) Value() float64 { return m.max }

func (m *MaxVelocity) Reset() { m.max = 0 }

// BrokenRatio averages the broken-spring ratio over every voxel and step.
type BrokenRatio struct {
	sum     float64
	samples int
}

func NewBrokenRatio() *BrokenRatio { return &BrokenRatio{} }

func (b *BrokenRatio) Name() string { return "avgBrokenRatio" }

func (b *BrokenRatio) Observe(v Voxel) {
	b.sum += v.BrokenRatio()
	b.samples++
}

func (b *BrokenRatio) Value() float64 {
	if b.samples == 0 {
		return 0
	}
	return b.sum / float64(b.samples)
}

func (b *BrokenRatio) Reset() {
	b.sum = 0
	b.samples = 0
}
