package signal

import "math"

// lobeCutoff: fuera de ±lobeCutoff anchos un lóbulo gaussiano vale 0
// (exp(-16) ≈ 1e-7, continuo a efectos prácticos).
const lobeCutoff = 4.0

// phase devuelve tau = t mod period en [0, period).
func phase(t, period float64) float64 {
	tau := math.Mod(t, period)
	if tau < 0 {
		tau += period
	}
	if tau >= period {
		tau = 0
	}
	return tau
}

// lobe es una gaussiana exp(-(x/w)²) recortada a ±lobeCutoff·w.
func lobe(x, w float64) float64 {
	if math.Abs(x) >= lobeCutoff*w {
		return 0
	}
	z := x / w
	return math.Exp(-z * z)
}

// slow es una senoide de período period evaluada sobre t envuelto, para no
// perder precisión con t grandes.
func slow(t, period float64) float64 {
	return math.Sin(2 * math.Pi * phase(t, period) / period)
}

// decayTo normaliza exp(-x/k) para que valga 1 en x=0 y 0 en x=span.
func decayTo(x, k, span float64) float64 {
	end := math.Exp(-span / k)
	return (math.Exp(-x/k) - end) / (1 - end)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
