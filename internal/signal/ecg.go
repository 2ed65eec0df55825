package signal

import "math"

// Complejo P-QRS-T en fase normalizada [0,1).
const (
	pStart, pEnd   = 0.10, 0.20
	qCenter        = 0.22
	rCenter        = 0.25
	sCenter        = 0.28
	tStart, tEnd   = 0.35, 0.55
	tCenter        = 0.45
	ecgWanderRatio = 10 // período de la deriva de línea base, en ciclos
)

// ecgComplex es el latido sin deriva ni ruido; periódico en period.
func ecgComplex(tau, period float64) float64 {
	ph := tau / period
	var v float64

	if ph >= pStart && ph <= pEnd {
		v += 0.1 * math.Sin(math.Pi*(ph-pStart)/(pEnd-pStart))
	}

	v -= 0.2 * lobe(tau-qCenter*period, 0.005*period)
	v += 1.0 * lobe(tau-rCenter*period, 0.002*period)
	v -= 0.15 * lobe(tau-sCenter*period, 0.005*period)

	if ph >= tStart && ph <= tEnd {
		z := (ph - tCenter) / 0.05
		v += 0.3 * math.Sin(math.Pi*(ph-tStart)/(tEnd-tStart)) * math.Exp(-z*z)
	}
	return v
}

// ecgShape agrega la deriva lenta de línea base.
func ecgShape(t, period float64) float64 {
	return ecgComplex(phase(t, period), period) + 0.05*slow(t, ecgWanderRatio*period)
}
