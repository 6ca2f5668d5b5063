package core

// The internal unit system: Ångström, femtosecond, amu, eV, Kelvin.
// Kinetic quantities need one conversion factor between mechanical
// (amu·Å²/fs²) and electronic (eV) energy units.
const (
	// KB is the Boltzmann constant in eV/K.
	KB = 8.617333262e-5

	// MvSq2Ev converts amu·(Å/fs)² to eV.
	MvSq2Ev = 103.642696562
	Ev2MvSq = 1 / MvSq2Ev

	Fs2Ps = 1e-3
	Ps2Fs = 1e3
)
