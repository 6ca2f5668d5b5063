package thermostat

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mdlab-go/mdrun/internal/core"
)

// Langevin couples the system to a heat bath at TempK through a
// friction γ (1/fs) and matching stochastic kicks. The deterministic
// part is velocity Verlet; the bath acts between drift and the closing
// half kick (an OBABO-style splitting).
type Langevin struct {
	TempK    float64
	Friction float64

	norm distuv.Normal
}

func NewLangevin(tempK, friction float64, seed int64) *Langevin {
	return &Langevin{
		TempK:    tempK,
		Friction: friction,
		norm:     distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(uint64(seed))},
	}
}

func (in *Langevin) Step(s *core.System, dt float64) error {
	f, err := s.Forces()
	if err != nil {
		return err
	}
	n := s.Len()
	for i := 0; i < n; i++ {
		a := f[i].Scale(core.Ev2MvSq / s.Masses[i])
		s.Vel[i] = s.Vel[i].Add(a.Scale(0.5 * dt))
		s.Pos[i] = s.Pos[i].Add(s.Vel[i].Scale(dt))
	}

	// Ornstein-Uhlenbeck bath update: v -> c1·v + c2·ξ with
	// c2² = (1-c1²)·kB·T/m, which leaves the Maxwell distribution at
	// TempK invariant.
	c1 := math.Exp(-in.Friction * dt)
	for i := 0; i < n; i++ {
		c2 := math.Sqrt((1 - c1*c1) * core.KB * in.TempK / s.Masses[i] * core.Ev2MvSq)
		for c := 0; c < 3; c++ {
			s.Vel[i][c] = c1*s.Vel[i][c] + c2*in.norm.Rand()
		}
	}

	s.Invalidate()
	f, err = s.Forces()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		a := f[i].Scale(core.Ev2MvSq / s.Masses[i])
		s.Vel[i] = s.Vel[i].Add(a.Scale(0.5 * dt))
	}
	return checkFinite(s)
}
