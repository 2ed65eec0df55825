package driver

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/ivanzxc/go-realtime-vitals/internal/signal"
)

// Sink recibe cada bundle producido. Los errores se registran y cuentan;
// nunca detienen la cadencia.
type Sink interface {
	Name() string
	Publish(ctx context.Context, b *signal.Bundle) error
}

const statsEvery = 200 // ticks entre líneas de estadística

// Driver es el único dueño del Engine: llama a Tick a cadencia fija y aplica
// los cambios de frecuencia entre ticks.
type Driver struct {
	engine   *signal.Engine
	clock    clockwork.Clock
	interval time.Duration
	log      *zap.Logger

	sinks []Sink
	boxes []*mailbox

	pendMu  sync.Mutex
	pending *signal.RateUpdate

	latest atomic.Pointer[signal.Bundle]

	histMu sync.Mutex
	hist   *hdrhistogram.Histogram

	ticks      atomic.Uint64
	failures   atomic.Uint64
	sinkErrors atomic.Uint64
	rejecting  bool
}

type Option func(*Driver)

func WithClock(c clockwork.Clock) Option {
	return func(d *Driver) { d.clock = c }
}

// WithInterval fija la cadencia de pared (50ms por defecto).
func WithInterval(i time.Duration) Option {
	return func(d *Driver) { d.interval = i }
}

func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) { d.log = l }
}

func WithSinks(s ...Sink) Option {
	return func(d *Driver) { d.sinks = append(d.sinks, s...) }
}

func New(engine *signal.Engine, opts ...Option) *Driver {
	d := &Driver{
		engine:   engine,
		clock:    clockwork.NewRealClock(),
		interval: 50 * time.Millisecond,
		log:      zap.NewNop(),
		hist:     hdrhistogram.New(1, int64(10*time.Second/time.Microsecond), 3),
	}
	for _, o := range opts {
		o(d)
	}
	d.boxes = make([]*mailbox, len(d.sinks))
	for i := range d.boxes {
		d.boxes[i] = newMailbox()
	}
	return d
}

// UpdateRates encola un cambio; se aplica antes del próximo tick. Seguro
// desde cualquier goroutine.
func (d *Driver) UpdateRates(u signal.RateUpdate) {
	d.pendMu.Lock()
	defer d.pendMu.Unlock()
	if d.pending == nil {
		d.pending = &u
		return
	}
	merged := d.pending.Merge(u)
	d.pending = &merged
}

func (d *Driver) SetRates(r signal.Rates) {
	d.UpdateRates(signal.RateUpdate{HeartRate: &r.HeartRate, RespRate: &r.RespRate})
}

// Latest devuelve el último bundle producido, o nil.
func (d *Driver) Latest() *signal.Bundle {
	return d.latest.Load()
}

func (d *Driver) applyPending() {
	d.pendMu.Lock()
	u := d.pending
	d.pending = nil
	d.pendMu.Unlock()

	if u != nil {
		r := u.Apply(d.engine.Rates())
		d.engine.SetRates(r)
		d.log.Info("rates updated",
			zap.Float64("hr", r.HeartRate),
			zap.Float64("rr", r.RespRate))
	}
}

// Step ejecuta un tick: aplica frecuencias pendientes, genera, publica el
// último bundle y lo entrega a los buzones de los sinks. No llamar mientras
// Run está activo.
func (d *Driver) Step() (*signal.Bundle, error) {
	d.applyPending()

	began := time.Now()
	b, err := d.engine.Tick()
	elapsed := time.Since(began)
	if err != nil {
		d.failures.Add(1)
		return nil, err
	}

	d.record(elapsed)
	d.ticks.Add(1)
	d.latest.Store(b)
	for _, box := range d.boxes {
		box.put(b)
	}
	return b, nil
}

// Run llama a Step cada interval hasta que ctx se cancela. Un tick
// rechazado por frecuencias inválidas no detiene la cadencia: se espera
// una corrección.
func (d *Driver) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i, s := range d.sinks {
		wg.Add(1)
		go func(s Sink, box *mailbox) {
			defer wg.Done()
			d.deliver(ctx, s, box)
		}(s, d.boxes[i])
	}
	defer wg.Wait()

	ticker := d.clock.NewTicker(d.interval)
	defer ticker.Stop()

	d.log.Info("driver started",
		zap.Duration("interval", d.interval),
		zap.Int("sinks", len(d.sinks)))

	for {
		select {
		case <-ctx.Done():
			d.log.Info("driver stopping", zap.Uint64("ticks", d.ticks.Load()))
			return nil

		case <-ticker.Chan():
			b, err := d.Step()
			switch {
			case errors.Is(err, signal.ErrInvalidParameter):
				if !d.rejecting {
					d.log.Warn("tick rejected, waiting for valid rates", zap.Error(err))
				}
				d.rejecting = true
				continue
			case err != nil:
				return err
			}
			if d.rejecting {
				d.log.Info("ticks resumed", zap.Uint64("seq", b.Seq))
				d.rejecting = false
			}
			if b.Seq%statsEvery == statsEvery-1 {
				st := d.Stats()
				d.log.Debug("driver stats",
					zap.Uint64("ticks", st.Ticks),
					zap.Float64("sim_time", b.Start+b.Duration),
					zap.Duration("p50", st.P50),
					zap.Duration("p99", st.P99),
					zap.Uint64("dropped", st.Dropped))
			}
		}
	}
}

func (d *Driver) deliver(ctx context.Context, s Sink, box *mailbox) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-box.notify:
			b := box.take()
			if b == nil {
				continue
			}
			if err := s.Publish(ctx, b); err != nil {
				d.sinkErrors.Add(1)
				d.log.Warn("sink publish failed",
					zap.String("sink", s.Name()),
					zap.Uint64("seq", b.Seq),
					zap.Error(err))
			}
		}
	}
}

func (d *Driver) record(elapsed time.Duration) {
	us := elapsed.Microseconds()
	if us < 1 {
		us = 1
	}
	d.histMu.Lock()
	_ = d.hist.RecordValue(us)
	d.histMu.Unlock()
}

// Stats es una foto de los contadores del driver.
type Stats struct {
	Ticks      uint64        `json:"ticks"`
	Failures   uint64        `json:"failures"`
	SinkErrors uint64        `json:"sink_errors"`
	Dropped    uint64        `json:"dropped"`
	P50        time.Duration `json:"p50"`
	P99        time.Duration `json:"p99"`
	Max        time.Duration `json:"max"`
}

func (d *Driver) Stats() Stats {
	st := Stats{
		Ticks:      d.ticks.Load(),
		Failures:   d.failures.Load(),
		SinkErrors: d.sinkErrors.Load(),
	}
	for _, box := range d.boxes {
		st.Dropped += box.droppedCount()
	}

	d.histMu.Lock()
	defer d.histMu.Unlock()
	if d.hist.TotalCount() > 0 {
		st.P50 = time.Duration(d.hist.ValueAtQuantile(50)) * time.Microsecond
		st.P99 = time.Duration(d.hist.ValueAtQuantile(99)) * time.Microsecond
		st.Max = time.Duration(d.hist.Max()) * time.Microsecond
	}
	return st
}
