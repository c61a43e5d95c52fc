package sim

import "math"

// DampingIndex returns the last index at which the series was still moving:
// scanning back from len-2, the first i with |s[i]-s[i+1]| > eps. Series that
// never move, or have fewer than two samples, yield 0.
func DampingIndex(series []float64, eps float64) int {
	i := len(series) - 2
	for i > 0 {
		if math.Abs(series[i]-series[i+1]) > eps {
			break
		}
		i--
	}
	return max(i, 0)
}
