package signal

import "math"

const (
	artSystolic  = 120.0
	artDiastolic = 80.0
	artSlowRatio = 5 // período de la oscilación lenta, en ciclos
)

// Segmentos del ciclo arterial en fracción de período.
const (
	artUpstroke = 0.3  // fin del ascenso sistólico
	artEjection = 0.4  // fin de la caída cuadrática
	artNotchLag = 0.05 // muesca dícrota a partir de aquí (desde artUpstroke)
)

// artContour es el contorno de presión de un ciclo, con piso diastólico.
// Cada tramo arranca donde termina el anterior; la única discontinuidad es
// la muesca dícrota.
func artContour(tau, period float64) float64 {
	pulse := artSystolic - artDiastolic
	var v float64

	switch {
	case tau < artUpstroke*period:
		v = artDiastolic + pulse*(1-math.Exp(-tau/(0.1*period)))/(1-math.Exp(-artUpstroke/0.1))
	case tau < artEjection*period:
		v = artFall(tau-artUpstroke*period, period)
	default:
		rest := (1 - artEjection) * period
		w := decayTo(tau-artEjection*period, 0.4*period, rest)
		v = artFall((artEjection-artUpstroke)*period, period)*w + artDiastolic*(1-w)
	}
	return math.Max(v, artDiastolic)
}

// artFall es el tramo entre el pico sistólico y el inicio del
// decaimiento diastólico; x se mide desde el pico.
func artFall(x, period float64) float64 {
	v := artSystolic - 5*math.Pow(x/(0.1*period), 2)
	if x > artNotchLag*period {
		v -= 10 * math.Exp(-(x-artNotchLag*period)/(0.02*period))
	}
	return v
}

func artShape(t, period float64) float64 {
	return artContour(phase(t, period), period) + slow(t, artSlowRatio*period)
}
