package config

import "sort"

// Presets are named, complete run configurations.
var presets = map[string]*RunConfig{
	// The calcite reference run: 600 K Langevin dynamics, 1 fs steps,
	// diagnostics every 1000 steps and a trajectory record every 10.
	"caco3-600K": {
		Structure:           "CaCO3_frame.xyz",
		Potential:           "lj",
		Dispersion:          true,
		Trajectory:          "CaCO3_600K.traj",
		Integrator:          "langevin",
		InitialTempK:        600,
		TimestepFs:          1,
		ThermostatCoupling:  0.01,
		TotalSteps:          250000,
		DiagnosticsInterval: 1000,
		TrajectoryInterval:  10,
		Seed:                42,
	},
	// Quick smoke run for new setups.
	"smoke": {
		Potential:           "harmonic",
		Trajectory:          "smoke.traj",
		Integrator:          "verlet",
		InitialTempK:        300,
		TimestepFs:          0.5,
		ThermostatCoupling:  0.01,
		TotalSteps:          200,
		DiagnosticsInterval: 50,
		TrajectoryInterval:  20,
		Seed:                7,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *RunConfig {
	p, ok := presets[name]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

// ListPresets returns the available preset names.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
