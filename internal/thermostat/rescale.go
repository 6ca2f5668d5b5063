package thermostat

import (
	"math"

	"github.com/mdlab-go/mdrun/internal/core"
)

// Rescale is velocity Verlet plus Berendsen-style velocity rescaling
// toward TempK with coupling time constant TauFs. Weak coupling: the
// instantaneous temperature relaxes exponentially with time constant
// TauFs but fluctuations are suppressed relative to the canonical
// ensemble.
type Rescale struct {
	TempK float64
	TauFs float64

	nve Verlet
}

func NewRescale(tempK, tauFs float64) *Rescale {
	return &Rescale{TempK: tempK, TauFs: tauFs}
}

func (in *Rescale) Step(s *core.System, dt float64) error {
	if err := in.nve.Step(s, dt); err != nil {
		return err
	}
	t := s.Temperature()
	if t <= 0 {
		return nil
	}
	lambda := math.Sqrt(1 + dt/in.TauFs*(in.TempK/t-1))
	for i := range s.Vel {
		s.Vel[i] = s.Vel[i].Scale(lambda)
	}
	return nil
}
