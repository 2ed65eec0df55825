package signal

import "math"

const (
	plethBaseline = 98.0
	plethMin      = 90.0
	plethMax      = 100.0
	plethNotch    = 0.4
)

func plethShape(t, period float64) float64 {
	tau := phase(t, period)
	v := plethBaseline + 2*math.Sin(2*math.Pi*tau/period)
	v -= 0.5 * lobe(tau-plethNotch*period, 0.01*period)
	return v
}
