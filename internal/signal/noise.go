package signal

import (
	"math/rand"
	"time"
)

// Noise es la fuente de ruido gaussiano (media 0, desvío 1).
// *rand.Rand la satisface.
type Noise interface {
	NormFloat64() float64
}

// Silent es una fuente sin ruido; deja sólo la forma analítica.
type Silent struct{}

func (Silent) NormFloat64() float64 { return 0 }

// NewNoise crea una fuente sembrada; seed 0 usa el reloj.
func NewNoise(seed int64) Noise {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
