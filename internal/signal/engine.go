// Package signal sintetiza las curvas de un monitor de paciente (ECG, pleti,
// respiración, presión arterial y capnografía) y sus vitales.
package signal

import "fmt"

// Config fija la densidad de muestreo; no cambia durante la corrida.
type Config struct {
	SampleRate float64 // Hz
	BlockSize  int     // muestras por tick
	Seed       int64   // 0 = sembrado por reloj
}

func DefaultConfig() Config {
	return Config{SampleRate: 200, BlockSize: 1024}
}

func (c Config) Validate() error {
	if !positive(c.SampleRate) {
		return fmt.Errorf("%w: sample rate %v", ErrInvalidParameter, c.SampleRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("%w: block size %d", ErrInvalidParameter, c.BlockSize)
	}
	return nil
}

// Waveforms son los cinco bloques de un tick.
type Waveforms struct {
	ECG   []float64 `json:"ecg"`
	Pleth []float64 `json:"pleth"`
	Resp  []float64 `json:"resp"`
	ART   []float64 `json:"art"`
	CO2   []float64 `json:"co2"`
}

// Channel devuelve el bloque de c.
func (w *Waveforms) Channel(c Channel) []float64 {
	switch c {
	case ECG:
		return w.ECG
	case Pleth:
		return w.Pleth
	case Resp:
		return w.Resp
	case ART:
		return w.ART
	case CO2:
		return w.CO2
	}
	return nil
}

func (w *Waveforms) set(c Channel, s []float64) {
	switch c {
	case ECG:
		w.ECG = s
	case Pleth:
		w.Pleth = s
	case Resp:
		w.Resp = s
	case ART:
		w.ART = s
	case CO2:
		w.CO2 = s
	}
}

// Bundle es lo que entrega cada tick. Cubre [Start, Start+Duration).
type Bundle struct {
	Seq        uint64    `json:"seq"`
	Start      float64   `json:"start"`
	Duration   float64   `json:"duration"`
	SampleRate float64   `json:"sample_rate"`
	Rates      Rates     `json:"rates"`
	HRPeriod   float64   `json:"hr_period"`
	RespPeriod float64   `json:"resp_period"`
	Waveforms  Waveforms `json:"waveforms"`
	Vitals     Vitals    `json:"vitals"`
}

// Engine sintetiza las curvas. No es seguro para uso concurrente: un único
// dueño llama a Tick y a los setters.
type Engine struct {
	cfg   Config
	rates Rates
	ticks uint64
	noise Noise
}

type Option func(*Engine)

// WithNoise reemplaza la fuente de ruido (p. ej. Silent en pruebas).
func WithNoise(n Noise) Option {
	return func(e *Engine) { e.noise = n }
}

// WithRates fija las frecuencias iniciales.
func WithRates(r Rates) Option {
	return func(e *Engine) { e.rates = r }
}

func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, rates: DefaultRates()}
	for _, o := range opts {
		o(e)
	}
	if e.noise == nil {
		e.noise = NewNoise(cfg.Seed)
	}
	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Rates() Rates { return e.rates }

// SetRates no valida; un valor no positivo hace fallar el próximo Tick.
func (e *Engine) SetRates(r Rates) { e.rates = r }

func (e *Engine) SetHeartRate(bpm float64) { e.rates.HeartRate = bpm }

func (e *Engine) SetRespRate(rpm float64) { e.rates.RespRate = rpm }

// BlockDuration = BlockSize / SampleRate.
func (e *Engine) BlockDuration() float64 {
	return float64(e.cfg.BlockSize) / e.cfg.SampleRate
}

// Time es el reloj de simulación: ticks completados × duración de bloque.
func (e *Engine) Time() float64 {
	return float64(e.ticks) * e.BlockDuration()
}

// Ticks completados.
func (e *Engine) Ticks() uint64 { return e.ticks }

// Tick genera un bloque por canal sobre [Time, Time+BlockDuration) y avanza
// el reloj. Con frecuencias inválidas devuelve ErrInvalidParameter sin avanzar.
func (e *Engine) Tick() (*Bundle, error) {
	if err := e.rates.Validate(); err != nil {
		return nil, err
	}

	n := e.cfg.BlockSize
	fs := e.cfg.SampleRate
	start := e.Time()

	t := make([]float64, n)
	for i := range t {
		t[i] = start + float64(i)/fs
	}

	b := &Bundle{
		Seq:        e.ticks,
		Start:      start,
		Duration:   e.BlockDuration(),
		SampleRate: fs,
		Rates:      e.rates,
		HRPeriod:   e.rates.HRPeriod(),
		RespPeriod: e.rates.RespPeriod(),
		Vitals:     VitalsFor(e.rates),
	}

	for _, c := range Channels() {
		m := models[c]
		period := b.HRPeriod
		if m.respiratory {
			period = b.RespPeriod
		}
		dst := make([]float64, n)
		m.render(dst, t, period, e.noise)
		b.Waveforms.set(c, dst)
	}

	e.ticks++
	return b, nil
}
