package signal

import "math"

const (
	co2Plateau  = 40.0 // EtCO2
	co2Baseline = 0.0
	co2Min      = 0.0
	co2Max      = 50.0
)

// Subfases de la espiración, en fracción de la media respiración.
const (
	co2Rise  = 0.1
	co2Hold  = 0.7
	co2Decay = 0.2 // constante de tiempo del descenso final
)

// co2Contour es el capnograma de un ciclo. Primera mitad: inspiración;
// segunda: espiración (subida, meseta, descenso).
func co2Contour(tau, period float64) float64 {
	half := 0.5 * period
	if tau < half {
		return co2Baseline + co2End()*decayTo(tau, 0.3*half, half)
	}

	x := tau - half
	switch {
	case x < co2Rise*half:
		return co2Baseline + (co2Plateau-co2Baseline)*(1-decayTo(x, 0.05*half, co2Rise*half))
	case x < co2Hold*half:
		return co2Plateau
	default:
		return co2Baseline + (co2Plateau-co2Baseline)*math.Exp(-(x-co2Hold*half)/(co2Decay*half))
	}
}

// co2End es el valor al final de la espiración, donde arranca la inspiración.
func co2End() float64 {
	return (co2Plateau - co2Baseline) * math.Exp(-(1-co2Hold)/co2Decay)
}

// co2Shape agrega la oscilación lenta a la mitad de la frecuencia respiratoria.
func co2Shape(t, period float64) float64 {
	return co2Contour(phase(t, period), period) + slow(t, 2*period)
}
