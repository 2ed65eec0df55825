package stream

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/ivanzxc/go-realtime-vitals/internal/signal"
)

// VitalsMsg es el JSON publicado junto a cada frame.
type VitalsMsg struct {
	Source  string            `json:"source"`
	Seq     uint64            `json:"seq"`
	Start   float64           `json:"start"`
	Vitals  signal.Vitals     `json:"vitals"`
	Display map[string]string `json:"display"`
}

func NewVitalsMsg(b *signal.Bundle, source uuid.UUID) VitalsMsg {
	return VitalsMsg{
		Source:  source.String(),
		Seq:     b.Seq,
		Start:   b.Start,
		Vitals:  b.Vitals,
		Display: b.Vitals.Display(),
	}
}

func Marshal(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}

// DecodeRateUpdate lee {"hr":..,"rr":..}; cualquiera de los dos puede faltar.
func DecodeRateUpdate(data []byte) (signal.RateUpdate, error) {
	var u signal.RateUpdate
	if err := sonic.Unmarshal(data, &u); err != nil {
		return u, fmt.Errorf("decode rates: %w", err)
	}
	if u.HeartRate == nil && u.RespRate == nil {
		return u, fmt.Errorf("decode rates: %w: empty update", signal.ErrInvalidParameter)
	}
	return u, nil
}
