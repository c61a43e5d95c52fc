package metrics

// Throughput summarises how fast an episode stepped. RealTime is wall-clock
// seconds, SimTime simulated seconds.
type Throughput struct {
	Steps    int64
	RealTime float64
	SimTime  float64
	Voxels   int
}

func (t Throughput) StepsPerSecond() float64 {
	return float64(t.Steps) / t.RealTime
}

func (t Throughput) VoxelStepsPerSecond() float64 {
	return float64(t.Voxels) * float64(t.Steps) / t.RealTime
}

func (t Throughput) VoxelSimSecondsPerSecond() float64 {
	return float64(t.Voxels) * t.SimTime / t.RealTime
}
