package potential

import (
	"math"

	"github.com/mdlab-go/mdrun/internal/core"
)

// LennardJones is the pairwise 12-6 potential with uniform σ/ε,
// V(r) = 4ε[(σ/r)¹² - (σ/r)⁶]. O(N²), intended for small systems and
// validation runs rather than production cells.
type LennardJones struct {
	Sigma   float64 // Å
	Epsilon float64 // eV
}

func NewLennardJones(sigma, epsilon float64) *LennardJones {
	return &LennardJones{Sigma: sigma, Epsilon: epsilon}
}

func (lj *LennardJones) Compute(s *core.System) (float64, []core.Vec3, error) {
	n := s.Len()
	forces := make([]core.Vec3, n)
	energy := 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := s.Pos[j].Sub(s.Pos[i])
			r2 := d.Dot(d)
			if r2 == 0 {
				return 0, nil, core.ErrDiverged
			}
			sr2 := lj.Sigma * lj.Sigma / r2
			sr6 := sr2 * sr2 * sr2
			sr12 := sr6 * sr6
			energy += 4 * lj.Epsilon * (sr12 - sr6)
			// dV/dr · r̂ / r, applied equal and opposite
			fOverR := 24 * lj.Epsilon * (2*sr12 - sr6) / r2
			fv := d.Scale(fOverR)
			forces[i] = forces[i].Sub(fv)
			forces[j] = forces[j].Add(fv)
		}
	}
	if math.IsNaN(energy) || math.IsInf(energy, 0) {
		return 0, nil, core.ErrDiverged
	}
	return energy, forces, nil
}
