package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mdlab-go/mdrun/internal/core"
)

const (
	DefaultTempK         = 300.0
	DefaultTimestepFs    = 1.0
	DefaultCoupling      = 0.01
	DefaultSteps         = 1000
	DefaultDiagnostics   = 100
	DefaultTrajectory    = 10
	DefaultIntegrator    = "langevin"
	DefaultPotentialName = "lj"
)

// RunConfig owns every path and parameter of an MD run. Nothing is
// read from module-level state: constructors receive this value.
type RunConfig struct {
	// Structure is the input atomic-structure file (xyz), read once
	// at startup through the structure-reading collaborator.
	Structure string `yaml:"structure"`

	// Model is a pretrained potential-model artifact for external
	// inference engines. Ignored by the built-in potentials.
	Model string `yaml:"model"`

	// Potential names the force/energy backend ("lj", "harmonic").
	Potential string `yaml:"potential"`

	// Dispersion toggles the model's dispersion correction. Named
	// option; only external engines honor it.
	Dispersion bool `yaml:"dispersion"`

	// Trajectory is the output store path, overwritten if present.
	Trajectory string `yaml:"trajectory"`

	Integrator          string  `yaml:"integrator"`
	InitialTempK        float64 `yaml:"initial_temperature_K"`
	TimestepFs          float64 `yaml:"timestep_fs"`
	ThermostatCoupling  float64 `yaml:"thermostat_coupling"`
	TotalSteps          int     `yaml:"total_steps"`
	DiagnosticsInterval int     `yaml:"diagnostics_interval"`
	TrajectoryInterval  int     `yaml:"trajectory_interval"`
	Seed                int64   `yaml:"seed"`
}

func Default() *RunConfig {
	return &RunConfig{
		Potential:           DefaultPotentialName,
		Trajectory:          "run.traj",
		Integrator:          DefaultIntegrator,
		InitialTempK:        DefaultTempK,
		TimestepFs:          DefaultTimestepFs,
		ThermostatCoupling:  DefaultCoupling,
		TotalSteps:          DefaultSteps,
		DiagnosticsInterval: DefaultDiagnostics,
		TrajectoryInterval:  DefaultTrajectory,
		Seed:                42,
	}
}

// Validate checks the numeric run parameters. Path existence is left
// to the collaborators that open them.
func (c *RunConfig) Validate() error {
	type bound struct {
		ok   bool
		name string
		val  interface{}
	}
	for _, b := range []bound{
		{c.InitialTempK > 0, "initial_temperature_K", c.InitialTempK},
		{c.TimestepFs > 0, "timestep_fs", c.TimestepFs},
		{c.TotalSteps > 0, "total_steps", c.TotalSteps},
		{c.DiagnosticsInterval > 0, "diagnostics_interval", c.DiagnosticsInterval},
		{c.TrajectoryInterval > 0, "trajectory_interval", c.TrajectoryInterval},
	} {
		if !b.ok {
			return fmt.Errorf("%w: %s = %v must be positive", core.ErrInvalidConfig, b.name, b.val)
		}
	}
	return nil
}

func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *RunConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Templates builds the dataset/model/output paths of one evaluation
// job; "{size}" expands to the training-set size. A template without
// the placeholder is shared across sizes (the validation set usually
// is).
type Templates struct {
	Configs string `yaml:"configs"`
	Model   string `yaml:"model"`
	Output  string `yaml:"output"`
}

// EvalConfig drives the batch model-evaluation sweep.
type EvalConfig struct {
	// Command is the external evaluation entry point.
	Command string `yaml:"command"`

	// Test templates are always evaluated. Train templates only when
	// IncludeTrainingSet is set (named option replacing the disabled
	// branch in the original workflow).
	Test               Templates `yaml:"test"`
	Train              Templates `yaml:"train"`
	IncludeTrainingSet bool      `yaml:"include_training_set"`

	// ContinueOnError keeps the sweep going past a failed size
	// instead of aborting the remainder.
	ContinueOnError bool `yaml:"continue_on_error"`
}

func DefaultEval() *EvalConfig {
	return &EvalConfig{
		Command: "mace_eval_configs",
		Test: Templates{
			Configs: "datasets/validation_set.xyz",
			Model:   "models/model_{size}.model",
			Output:  "evaluation/eval_test_{size}.xyz",
		},
		Train: Templates{
			Configs: "datasets/training_set_{size}.xyz",
			Model:   "models/model_{size}.model",
			Output:  "evaluation/eval_train_{size}.xyz",
		},
	}
}

func LoadEval(path string) (*EvalConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultEval()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
