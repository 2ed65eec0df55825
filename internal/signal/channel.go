package signal

// Channel identifica cada una de las cinco curvas.
type Channel int

const (
	ECG Channel = iota
	Pleth
	Resp
	ART
	CO2
	numChannels
)

var channelNames = [numChannels]string{"ecg", "pleth", "resp", "art", "co2"}

func (c Channel) String() string {
	if c < 0 || c >= numChannels {
		return "unknown"
	}
	return channelNames[c]
}

// Channels en orden de cable: ecg, pleth, resp, art, co2.
func Channels() []Channel {
	return []Channel{ECG, Pleth, Resp, ART, CO2}
}

// model es f(t) aplicada elemento a elemento: forma analítica, ruido y
// recorte de rango.
type model struct {
	shape       func(t, period float64) float64
	noise       float64
	clamp       bool
	lo, hi      float64
	respiratory bool // usa el período respiratorio
}

var models = [numChannels]model{
	ECG:   {shape: ecgShape, noise: 0.02},
	Pleth: {shape: plethShape, noise: 0.1, clamp: true, lo: plethMin, hi: plethMax},
	Resp:  {shape: respShape, noise: 0.05, respiratory: true},
	ART:   {shape: artShape, noise: 0.3},
	CO2:   {shape: co2Shape, noise: 0.3, clamp: true, lo: co2Min, hi: co2Max, respiratory: true},
}

func (m model) sample(t, period float64, n Noise) float64 {
	v := m.shape(t, period) + m.noise*n.NormFloat64()
	if m.clamp {
		v = clamp(v, m.lo, m.hi)
	}
	return v
}

func (m model) render(dst, t []float64, period float64, n Noise) {
	for i, ti := range t {
		dst[i] = m.sample(ti, period, n)
	}
}
