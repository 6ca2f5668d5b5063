// Package velocity prepares a system's thermodynamic state before a
// run: Maxwell–Boltzmann momenta at a target temperature, followed by
// removal of center-of-mass drift so no energy leaks into bulk motion.
package velocity

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mdlab-go/mdrun/internal/core"
)

// MaxwellBoltzmann assigns velocities drawn component-wise from a
// Gaussian with variance kB·T/mᵢ. The seed makes initialization
// reproducible across runs.
func MaxwellBoltzmann(s *core.System, tempK float64, seed int64) error {
	if tempK <= 0 {
		return fmt.Errorf("%w: temperature %g K must be positive", core.ErrInvalidConfig, tempK)
	}
	if s.Len() == 0 {
		return core.ErrEmptySystem
	}
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(uint64(seed))}
	for i := range s.Vel {
		m := s.Masses[i]
		if m <= 0 {
			return fmt.Errorf("%w: particle %d has mass %g", core.ErrInvalidConfig, i, m)
		}
		sigma := sigmaFor(m, tempK)
		for c := 0; c < 3; c++ {
			s.Vel[i][c] = sigma * norm.Rand()
		}
	}
	return nil
}

// sigmaFor is the per-component thermal velocity spread in Å/fs.
func sigmaFor(massAmu, tempK float64) float64 {
	return math.Sqrt(core.KB * tempK / massAmu * core.Ev2MvSq)
}

// RemoveDrift subtracts the mass-weighted mean velocity from every
// particle so the aggregate momentum is zero.
func RemoveDrift(s *core.System) error {
	if s.Len() == 0 {
		return core.ErrEmptySystem
	}
	com, err := s.COMVelocity()
	if err != nil {
		return err
	}
	for i := range s.Vel {
		s.Vel[i] = s.Vel[i].Sub(com)
	}
	return nil
}

// Init runs both initialization stages in order.
func Init(s *core.System, tempK float64, seed int64) error {
	if err := MaxwellBoltzmann(s, tempK, seed); err != nil {
		return err
	}
	return RemoveDrift(s)
}
