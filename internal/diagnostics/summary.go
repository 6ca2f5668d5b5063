package diagnostics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates a diagnostics series after the fact: mean and
// spread of the temperature, and the worst relative excursion of the
// total energy from its initial value.
type Summary struct {
	Samples   int
	MeanTempK float64
	StdTempK  float64
	MeanEtot  float64
	MaxDrift  float64
}

// Summarize reduces a stored series. Drift is relative to the first
// sample, which for a thermostatted run bounds how far the bath let
// the energy wander.
func Summarize(samples []Sample) Summary {
	if len(samples) == 0 {
		return Summary{}
	}

	temps := make([]float64, len(samples))
	etots := make([]float64, len(samples))
	for i, s := range samples {
		temps[i] = s.TempK
		etots[i] = s.EtotPerAtom
	}

	sum := Summary{
		Samples:   len(samples),
		MeanTempK: stat.Mean(temps, nil),
		MeanEtot:  stat.Mean(etots, nil),
	}
	if len(samples) > 1 {
		sum.StdTempK = stat.StdDev(temps, nil)
	}

	e0 := etots[0]
	if e0 != 0 {
		for _, e := range etots {
			drift := math.Abs(e-e0) / math.Abs(e0)
			sum.MaxDrift = math.Max(sum.MaxDrift, drift)
		}
	}
	return sum
}
