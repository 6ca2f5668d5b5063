package potential

import "github.com/mdlab-go/mdrun/internal/core"

// Harmonic anchors each atom to a reference site with an independent
// spring: E = Σ ½k|rᵢ-r⁰ᵢ|². Deterministic and cheap, which makes it
// the test potential of choice.
type Harmonic struct {
	K   float64 // eV/Å²
	Ref []core.Vec3
}

func NewHarmonic(k float64, ref []core.Vec3) *Harmonic {
	return &Harmonic{K: k, Ref: ref}
}

func (h *Harmonic) Compute(s *core.System) (float64, []core.Vec3, error) {
	if len(h.Ref) != s.Len() {
		return 0, nil, core.ErrInvalidConfig
	}
	forces := make([]core.Vec3, s.Len())
	energy := 0.0
	for i, r := range s.Pos {
		d := r.Sub(h.Ref[i])
		energy += 0.5 * h.K * d.Dot(d)
		forces[i] = d.Scale(-h.K)
	}
	return energy, forces, nil
}
