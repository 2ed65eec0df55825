package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{80, 120, 100, 90})

	assert.Equal(t, 80.0, s.Min)
	assert.Equal(t, 120.0, s.Max)
	assert.Equal(t, 97.5, s.Mean)
	assert.Equal(t, 1, s.ArgMax)
	assert.Greater(t, s.StdDev, 0.0)
}

func TestSummarizeEdges(t *testing.T) {
	assert.Equal(t, -1, Summarize(nil).ArgMax)

	one := Summarize([]float64{3})
	assert.Equal(t, 3.0, one.Mean)
	assert.Equal(t, 0.0, one.StdDev)
}
