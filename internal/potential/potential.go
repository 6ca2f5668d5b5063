// Package potential holds the built-in interatomic potentials and the
// registry that resolves a config name to a core.Potential. Pretrained
// model artifacts are served by external inference engines; this
// package only covers what the driver can evaluate in-process.
package potential

import (
	"fmt"

	"github.com/mdlab-go/mdrun/internal/core"
)

// FromConfig resolves a potential name. The harmonic potential anchors
// every atom to its position at configuration time.
func FromConfig(name string, s *core.System) (core.Potential, error) {
	switch name {
	case "harmonic":
		ref := make([]core.Vec3, len(s.Pos))
		copy(ref, s.Pos)
		return NewHarmonic(defaultSpringK, ref), nil
	case "lj":
		return NewLennardJones(defaultSigma, defaultEpsilon), nil
	default:
		return nil, fmt.Errorf("%w: unknown potential %q", core.ErrInvalidConfig, name)
	}
}

const (
	defaultSpringK = 1.0   // eV/Å²
	defaultSigma   = 3.40  // Å (argon-like)
	defaultEpsilon = 0.010 // eV
)
