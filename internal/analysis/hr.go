package analysis

import "math"

// HRDetector detecta latidos por cruce ascendente de umbral sobre el ECG.
// Los tiempos son de simulación (segundos), no de reloj de pared.
type HRDetector struct {
	threshold   float64
	refractory  float64
	lastPeak    float64
	havePeak    bool
	lastValue   float64
	initialized bool
}

func NewHRDetector() *HRDetector {
	return &HRDetector{
		threshold:  0.6, // ajustable
		refractory: 0.2,
	}
}

// Process devuelve BPM si detecta un nuevo latido
func (h *HRDetector) Process(value, ts float64) (int, bool) {

	if !h.initialized {
		h.initialized = true
		h.lastValue = value
		return 0, false
	}

	// detectar cruce ascendente por threshold
	rising := h.lastValue < h.threshold && value >= h.threshold
	h.lastValue = value
	if !rising {
		return 0, false
	}

	if h.havePeak {
		rr := ts - h.lastPeak
		if rr <= h.refractory {
			return 0, false
		}
		h.lastPeak = ts
		return int(math.Round(60 / rr)), true
	}

	h.havePeak = true
	h.lastPeak = ts
	return 0, false
}

// ProcessBlock recorre un bloque muestreado a fs desde start y devuelve la
// última frecuencia detectada.
func (h *HRDetector) ProcessBlock(samples []float64, start, fs float64) (int, bool) {
	var (
		bpm int
		ok  bool
	)
	for i, v := range samples {
		if b, hit := h.Process(v, start+float64(i)/fs); hit {
			bpm, ok = b, true
		}
	}
	return bpm, ok
}

// Reset olvida el último latido (p. ej. tras un salto en la secuencia).
func (h *HRDetector) Reset() {
	*h = HRDetector{threshold: h.threshold, refractory: h.refractory}
}
