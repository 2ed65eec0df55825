package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary resume un bloque de un canal.
type Summary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std"`
	ArgMax int     `json:"argmax"`
}

func Summarize(block []float64) Summary {
	if len(block) == 0 {
		return Summary{ArgMax: -1}
	}
	mean, std := stat.MeanStdDev(block, nil)
	if len(block) == 1 {
		std = 0
	}
	return Summary{
		Min:    floats.Min(block),
		Max:    floats.Max(block),
		Mean:   mean,
		StdDev: std,
		ArgMax: floats.MaxIdx(block),
	}
}
