// Package system loads atomic structures through goChem, the external
// structure-reading collaborator, and converts them into the driver's
// particle system. File-format concerns stay on goChem's side.
package system

import (
	"fmt"

	chem "github.com/rmera/gochem"

	"github.com/mdlab-go/mdrun/internal/core"
)

// Load reads an xyz structure file and builds a core.System with
// symbols and masses from the topology.
func Load(path string) (*core.System, error) {
	mol, err := chem.XYZFileRead(path)
	if err != nil {
		return nil, fmt.Errorf("system: reading %s: %w", path, err)
	}
	return fromMolecule(mol)
}

func fromMolecule(mol *chem.Molecule) (*core.System, error) {
	n := mol.Len()
	if n == 0 {
		return nil, core.ErrEmptySystem
	}
	if len(mol.Coords) == 0 {
		return nil, fmt.Errorf("system: %w: structure has no coordinates", core.ErrInvalidConfig)
	}
	symbols := make([]string, n)
	masses := make([]float64, n)
	pos := make([]core.Vec3, n)
	coords := mol.Coords[0]
	for i := 0; i < n; i++ {
		at := mol.Atom(i)
		symbols[i] = at.Symbol
		masses[i] = at.Mass
		if masses[i] <= 0 {
			return nil, fmt.Errorf("system: %w: atom %d (%s) has mass %g",
				core.ErrInvalidConfig, i, at.Symbol, at.Mass)
		}
		for c := 0; c < 3; c++ {
			pos[i][c] = coords.At(i, c)
		}
	}
	return core.NewSystem(symbols, masses, pos)
}
