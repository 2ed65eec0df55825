package signal

import (
	"fmt"
	"math"
)

// Rates son los parámetros fisiológicos que gobiernan la síntesis.
type Rates struct {
	HeartRate float64 `json:"hr"` // latidos/min
	RespRate  float64 `json:"rr"` // respiraciones/min
}

// DefaultRates: 75 lpm, 18 rpm.
func DefaultRates() Rates {
	return Rates{HeartRate: 75, RespRate: 18}
}

func (r Rates) Validate() error {
	if !positive(r.HeartRate) {
		return fmt.Errorf("%w: heart rate %v", ErrInvalidParameter, r.HeartRate)
	}
	if !positive(r.RespRate) {
		return fmt.Errorf("%w: resp rate %v", ErrInvalidParameter, r.RespRate)
	}
	return nil
}

// HRPeriod en segundos.
func (r Rates) HRPeriod() float64 { return 60 / r.HeartRate }

// RespPeriod en segundos.
func (r Rates) RespPeriod() float64 { return 60 / r.RespRate }

// positive descarta también NaN e Inf.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// RateUpdate es un cambio parcial; nil conserva el valor actual.
type RateUpdate struct {
	HeartRate *float64 `json:"hr,omitempty"`
	RespRate  *float64 `json:"rr,omitempty"`
}

// Apply devuelve r con los campos presentes reemplazados.
func (u RateUpdate) Apply(r Rates) Rates {
	if u.HeartRate != nil {
		r.HeartRate = *u.HeartRate
	}
	if u.RespRate != nil {
		r.RespRate = *u.RespRate
	}
	return r
}

// Merge combina dos actualizaciones; next gana campo a campo.
func (u RateUpdate) Merge(next RateUpdate) RateUpdate {
	if next.HeartRate != nil {
		u.HeartRate = next.HeartRate
	}
	if next.RespRate != nil {
		u.RespRate = next.RespRate
	}
	return u
}
