package core

import "fmt"

// Potential maps an atomic configuration to a total potential energy
// (eV) and per-atom forces (eV/Å). Implementations must not retain the
// force slice they return.
type Potential interface {
	Compute(s *System) (energy float64, forces []Vec3, err error)
}

// Integrator advances positions and velocities by one timestep (fs).
// Thermostatted integrators own their target temperature and coupling.
// Implementations must return ErrDiverged (possibly wrapped) when the
// update produces non-finite state.
type Integrator interface {
	Step(s *System, dtFs float64) error
}

// System is an ordered collection of particles together with the
// potential used to compute forces on them. Positions and velocities
// are mutated in place by integrators and the velocity initializer.
type System struct {
	Symbols []string
	Masses  []float64 // amu
	Pos     []Vec3    // Å
	Vel     []Vec3    // Å/fs

	pot    Potential
	forces []Vec3
	epot   float64
	stale  bool
}

// NewSystem builds a system from parallel slices. Velocities start at
// zero; forces are computed lazily on first access.
func NewSystem(symbols []string, masses []float64, pos []Vec3) (*System, error) {
	n := len(pos)
	if n == 0 {
		return nil, ErrEmptySystem
	}
	if len(symbols) != n || len(masses) != n {
		return nil, fmt.Errorf("%w: %d positions, %d symbols, %d masses",
			ErrInvalidConfig, n, len(symbols), len(masses))
	}
	return &System{
		Symbols: symbols,
		Masses:  masses,
		Pos:     pos,
		Vel:     make([]Vec3, n),
		stale:   true,
	}, nil
}

func (s *System) Len() int { return len(s.Pos) }

func (s *System) SetPotential(p Potential) {
	s.pot = p
	s.stale = true
}

func (s *System) Potential() Potential { return s.pot }

// Invalidate marks cached forces stale. Integrators call it after
// moving atoms.
func (s *System) Invalidate() { s.stale = true }

// Forces returns per-atom forces, recomputing through the potential if
// positions changed since the last evaluation.
func (s *System) Forces() ([]Vec3, error) {
	if err := s.refresh(); err != nil {
		return nil, err
	}
	return s.forces, nil
}

// PotentialEnergy returns the total potential energy in eV.
func (s *System) PotentialEnergy() (float64, error) {
	if err := s.refresh(); err != nil {
		return 0, err
	}
	return s.epot, nil
}

func (s *System) refresh() error {
	if !s.stale {
		return nil
	}
	if s.pot == nil {
		return fmt.Errorf("%w: no potential attached", ErrInvalidConfig)
	}
	e, f, err := s.pot.Compute(s)
	if err != nil {
		return err
	}
	s.epot = e
	s.forces = f
	s.stale = false
	return nil
}

// KineticEnergy returns the total kinetic energy in eV.
func (s *System) KineticEnergy() float64 {
	ekin := 0.0
	for i, v := range s.Vel {
		ekin += 0.5 * s.Masses[i] * v.Dot(v)
	}
	return ekin * MvSq2Ev
}

// Temperature returns the instantaneous temperature in K via the
// equipartition relation T = (2/3)·(Ekin/N)/kB.
func (s *System) Temperature() float64 {
	n := s.Len()
	if n == 0 {
		return 0
	}
	return s.KineticEnergy() / float64(n) / (1.5 * KB)
}

func (s *System) TotalMass() float64 {
	m := 0.0
	for _, mi := range s.Masses {
		m += mi
	}
	return m
}

// COMVelocity returns the mass-weighted mean velocity.
func (s *System) COMVelocity() (Vec3, error) {
	m := s.TotalMass()
	if m == 0 {
		return Vec3{}, ErrZeroMass
	}
	var p Vec3
	for i, v := range s.Vel {
		p = p.Add(v.Scale(s.Masses[i]))
	}
	return p.Scale(1 / m), nil
}

// Snapshot returns a value copy of the mutable state for persistence.
type Snapshot struct {
	Step int
	Pos  []Vec3
	Vel  []Vec3
}

func (s *System) Snapshot(step int) Snapshot {
	pos := make([]Vec3, len(s.Pos))
	vel := make([]Vec3, len(s.Vel))
	copy(pos, s.Pos)
	copy(vel, s.Vel)
	return Snapshot{Step: step, Pos: pos, Vel: vel}
}

// Clone copies the full system, sharing the potential.
func (s *System) Clone() *System {
	c := &System{
		Symbols: append([]string(nil), s.Symbols...),
		Masses:  append([]float64(nil), s.Masses...),
		Pos:     append([]Vec3(nil), s.Pos...),
		Vel:     append([]Vec3(nil), s.Vel...),
		pot:     s.pot,
		stale:   true,
	}
	return c
}

// IsFinite reports whether all positions and velocities are finite.
func (s *System) IsFinite() bool {
	for i := range s.Pos {
		if !s.Pos[i].IsFinite() || !s.Vel[i].IsFinite() {
			return false
		}
	}
	return true
}
