package control

// None returns a w×h grid of zero actuation.
func None(w, h int) *TimeFunctions {
	return Constant(w, h, 0)
}

// Constant returns a w×h grid that holds every voxel at v.
func Constant(w, h int, v float64) *TimeFunctions {
	return NewTimeFunctions(w, h, func(_, _ int) TimeFunction {
		return func(float64) float64 { return v }
	})
}
