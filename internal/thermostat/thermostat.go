// Package thermostat provides reference integrators behind
// core.Integrator. Production runs couple the system to a target
// temperature; the NVE integrator exists for validation.
package thermostat

import (
	"fmt"

	"github.com/mdlab-go/mdrun/internal/core"
)

// New builds an integrator by config name. The coupling parameter is
// engine-specific: friction in 1/fs for langevin, relaxation time in
// fs for rescale, ignored for verlet.
func New(name string, tempK, coupling float64, seed int64) (core.Integrator, error) {
	switch name {
	case "verlet", "nve":
		return NewVerlet(), nil
	case "langevin":
		if tempK <= 0 || coupling <= 0 {
			return nil, fmt.Errorf("%w: langevin needs positive temperature and friction", core.ErrInvalidConfig)
		}
		return NewLangevin(tempK, coupling, seed), nil
	case "rescale":
		if tempK <= 0 || coupling <= 0 {
			return nil, fmt.Errorf("%w: rescale needs positive temperature and coupling time", core.ErrInvalidConfig)
		}
		return NewRescale(tempK, coupling), nil
	default:
		return nil, fmt.Errorf("%w: unknown integrator %q", core.ErrInvalidConfig, name)
	}
}
