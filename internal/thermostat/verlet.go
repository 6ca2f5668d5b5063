package thermostat

import (
	"math"

	"github.com/mdlab-go/mdrun/internal/core"
)

// Verlet is plain velocity Verlet with no thermostat (NVE). Useful as
// a deterministic baseline and for energy-conservation tests.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (in *Verlet) Step(s *core.System, dt float64) error {
	f, err := s.Forces()
	if err != nil {
		return err
	}
	n := s.Len()
	// half kick, then drift
	for i := 0; i < n; i++ {
		a := f[i].Scale(core.Ev2MvSq / s.Masses[i])
		s.Vel[i] = s.Vel[i].Add(a.Scale(0.5 * dt))
		s.Pos[i] = s.Pos[i].Add(s.Vel[i].Scale(dt))
	}
	s.Invalidate()
	f, err = s.Forces()
	if err != nil {
		return err
	}
	// closing half kick with the new forces
	for i := 0; i < n; i++ {
		a := f[i].Scale(core.Ev2MvSq / s.Masses[i])
		s.Vel[i] = s.Vel[i].Add(a.Scale(0.5 * dt))
	}
	return checkFinite(s)
}

func checkFinite(s *core.System) error {
	if !s.IsFinite() {
		return core.ErrDiverged
	}
	epot, err := s.PotentialEnergy()
	if err != nil {
		return err
	}
	if math.IsNaN(epot) || math.IsInf(epot, 0) {
		return core.ErrDiverged
	}
	return nil
}
