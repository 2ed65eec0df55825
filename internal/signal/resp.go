package signal

import "math"

// respShape: fundamental más segundo armónico.
func respShape(t, period float64) float64 {
	x := 2 * math.Pi * phase(t, period) / period
	return math.Sin(x) + 0.1*math.Sin(2*x)
}
