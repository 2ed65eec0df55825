package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanzxc/go-realtime-vitals/internal/signal"
)

func newEngine(t *testing.T) *signal.Engine {
	t.Helper()
	cfg := signal.DefaultConfig()
	cfg.BlockSize = 128
	cfg.Seed = 11
	e, err := signal.NewEngine(cfg)
	require.NoError(t, err)
	return e
}

type chanSink struct {
	ch  chan *signal.Bundle
	err error
}

func newChanSink() *chanSink {
	return &chanSink{ch: make(chan *signal.Bundle, 16)}
}

func (s *chanSink) Name() string { return "chan" }

func (s *chanSink) Publish(_ context.Context, b *signal.Bundle) error {
	s.ch <- b
	return s.err
}

func receive(t *testing.T, ch <-chan *signal.Bundle) *signal.Bundle {
	t.Helper()
	select {
	case b := <-ch:
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("no bundle delivered")
		return nil
	}
}

func TestStepAppliesPendingRates(t *testing.T) {
	d := New(newEngine(t))

	d.SetRates(signal.Rates{HeartRate: 120, RespRate: 30})
	b, err := d.Step()
	require.NoError(t, err)

	assert.InDelta(t, 0.5, b.HRPeriod, 1e-12)
	assert.InDelta(t, 2.0, b.RespPeriod, 1e-12)
	assert.Same(t, b, d.Latest())
}

func TestUpdateRatesMerges(t *testing.T) {
	d := New(newEngine(t))

	hr, rr := 100.0, 20.0
	d.UpdateRates(signal.RateUpdate{HeartRate: &hr})
	d.UpdateRates(signal.RateUpdate{RespRate: &rr})

	b, err := d.Step()
	require.NoError(t, err)
	assert.Equal(t, signal.Rates{HeartRate: 100, RespRate: 20}, b.Rates)
}

func TestStepRejectsInvalidRates(t *testing.T) {
	e := newEngine(t)
	d := New(e)

	first, err := d.Step()
	require.NoError(t, err)

	zero := 0.0
	d.UpdateRates(signal.RateUpdate{HeartRate: &zero})
	_, err = d.Step()
	assert.ErrorIs(t, err, signal.ErrInvalidParameter)

	assert.Same(t, first, d.Latest())
	assert.Equal(t, first.Duration, e.Time())

	st := d.Stats()
	assert.Equal(t, uint64(1), st.Ticks)
	assert.Equal(t, uint64(1), st.Failures)
	assert.GreaterOrEqual(t, st.P50, time.Microsecond)
}

func TestMailboxLatestWins(t *testing.T) {
	m := newMailbox()
	b1, b2 := &signal.Bundle{Seq: 1}, &signal.Bundle{Seq: 2}

	m.put(b1)
	m.put(b2)

	assert.Same(t, b2, m.take())
	assert.Nil(t, m.take())
	assert.Equal(t, uint64(1), m.droppedCount())
}

func startRun(t *testing.T, d *Driver, fc *clockwork.FakeClock) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	require.NoError(t, fc.BlockUntilContext(waitCtx, 1))
	return cancel, done
}

func TestRunTicksOnCadence(t *testing.T) {
	fc := clockwork.NewFakeClock()
	sink := newChanSink()
	d := New(newEngine(t), WithClock(fc), WithInterval(50*time.Millisecond), WithSinks(sink))

	cancel, done := startRun(t, d, fc)

	fc.Advance(50 * time.Millisecond)
	b := receive(t, sink.ch)
	assert.Equal(t, uint64(0), b.Seq)

	fc.Advance(50 * time.Millisecond)
	b = receive(t, sink.ch)
	assert.Equal(t, uint64(1), b.Seq)
	assert.InDelta(t, 128.0/200, b.Start, 1e-12)

	cancel()
	assert.NoError(t, <-done)
}

func TestRunSurvivesRejectedTick(t *testing.T) {
	fc := clockwork.NewFakeClock()
	sink := newChanSink()
	d := New(newEngine(t), WithClock(fc), WithInterval(50*time.Millisecond), WithSinks(sink))
	d.SetRates(signal.Rates{HeartRate: -1, RespRate: 18})

	cancel, done := startRun(t, d, fc)
	defer func() {
		cancel()
		<-done
	}()

	fc.Advance(50 * time.Millisecond)
	require.Eventually(t, func() bool { return d.Stats().Failures == 1 }, 2*time.Second, 5*time.Millisecond)

	d.SetRates(signal.DefaultRates())
	fc.Advance(50 * time.Millisecond)

	b := receive(t, sink.ch)
	assert.Equal(t, uint64(0), b.Seq)
	assert.Equal(t, 75, b.Vitals.HR)
}

func TestRunCountsSinkErrors(t *testing.T) {
	fc := clockwork.NewFakeClock()
	sink := newChanSink()
	sink.err = errors.New("broker down")
	d := New(newEngine(t), WithClock(fc), WithSinks(sink))

	cancel, done := startRun(t, d, fc)
	defer func() {
		cancel()
		<-done
	}()

	fc.Advance(50 * time.Millisecond)
	receive(t, sink.ch)
	require.Eventually(t, func() bool { return d.Stats().SinkErrors == 1 }, 2*time.Second, 5*time.Millisecond)
}
