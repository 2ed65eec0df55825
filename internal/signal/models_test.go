package signal

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestPhaseStaysInRange(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500

	properties := gopter.NewProperties(parameters)

	properties.Property("0 <= tau < period", prop.ForAll(
		func(tv, period float64) bool {
			tau := phase(tv, period)
			return tau >= 0 && tau < period
		},
		gen.Float64Range(-1e7, 1e7),
		gen.Float64Range(1e-3, 100),
	))

	properties.TestingRun(t)
}

func TestClampedRanges(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tv := rapid.OneOf(rapid.Just(0.0), rapid.Float64Range(0, 1e7)).Draw(t, "t")
		hr := rapid.Float64Range(20, 250).Draw(t, "hr")
		rr := rapid.Float64Range(4, 60).Draw(t, "rr")
		n := NewNoise(rapid.Int64Range(1, math.MaxInt64).Draw(t, "seed"))

		if v := models[Pleth].sample(tv, 60/hr, n); v < 90 || v > 100 {
			t.Fatalf("pleth(%v) = %v", tv, v)
		}
		if v := models[CO2].sample(tv, 60/rr, n); v < 0 || v > 50 {
			t.Fatalf("co2(%v) = %v", tv, v)
		}
		p := 60 / hr
		if v := artContour(phase(tv, p), p); v < artDiastolic {
			t.Fatalf("art contour(%v) = %v", tv, v)
		}
	})
}

func TestNoiseFreePeriodicity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tv := rapid.Float64Range(0, 1e4).Draw(t, "t")
		p := rapid.Float64Range(0.2, 15).Draw(t, "period")

		a := ecgComplex(phase(tv, p), p)
		b := ecgComplex(phase(tv+p, p), p)
		if math.Abs(a-b) > 1e-6 {
			t.Fatalf("ecg(%v)=%v ecg(+T)=%v", tv, a, b)
		}

		a, b = respShape(tv, p), respShape(tv+p, p)
		if math.Abs(a-b) > 1e-6 {
			t.Fatalf("resp(%v)=%v resp(+T)=%v", tv, a, b)
		}
	})
}

func TestContinuousAtJoins(t *testing.T) {
	const p = 0.8
	const eps = 1e-10

	joins := []struct {
		name string
		f    func(tau float64) float64
		at   []float64 // fracción de período
	}{
		{"ecg", func(tau float64) float64 { return ecgComplex(tau, p) }, []float64{pStart, pEnd, tStart, tEnd}},
		{"pleth", func(tau float64) float64 { return plethShape(tau, p) }, []float64{plethNotch - 0.04, plethNotch + 0.04}},
		{"art", func(tau float64) float64 { return artContour(tau, p) }, []float64{artUpstroke, artEjection}},
		{"co2", func(tau float64) float64 { return co2Contour(tau, p) }, []float64{0.5, 0.5 + 0.5*co2Rise, 0.5 + 0.5*co2Hold}},
	}

	for _, j := range joins {
		for _, frac := range j.at {
			x := frac * p
			assert.InDelta(t, j.f(x-eps), j.f(x), 1e-6, "%s at %.3f", j.name, frac)
		}
		// fin de ciclo contra inicio del siguiente
		assert.InDelta(t, j.f(p-eps), j.f(0), 1e-6, "%s wrap", j.name)
	}
}

func TestArtDicroticNotch(t *testing.T) {
	const p = 1.0
	x := (artUpstroke + artNotchLag) * p

	before := artContour(x-1e-9, p)
	after := artContour(x+1e-9, p)
	assert.InDelta(t, 10, before-after, 0.01)
}

func TestWaveLandmarks(t *testing.T) {
	const p = 0.8

	assert.InDelta(t, 1.0, ecgComplex(rCenter*p, p), 1e-9)
	assert.Less(t, ecgComplex(qCenter*p, p), 0.0)
	assert.Less(t, ecgComplex(sCenter*p, p), 0.0)
	assert.Greater(t, ecgComplex(tCenter*p, p), 0.25)

	assert.InDelta(t, artSystolic, artContour(artUpstroke*p, p), 1e-9)
	assert.InDelta(t, artDiastolic, artContour(0, p), 1e-9)

	assert.InDelta(t, co2Plateau, co2Contour(0.8*p, p), 1e-9)
	assert.InDelta(t, 0.0, co2Contour(0.5*p, p), 1e-9)

	assert.Less(t, plethShape(plethNotch*p, p), plethBaseline+2*math.Sin(2*math.Pi*plethNotch))
}
