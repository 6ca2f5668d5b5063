package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/mdlab-go/mdrun/internal/core"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Integrator != "langevin" || cfg.Potential != "lj" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestValidateBounds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RunConfig)
	}{
		{"zero temperature", func(c *RunConfig) { c.InitialTempK = 0 }},
		{"negative temperature", func(c *RunConfig) { c.InitialTempK = -10 }},
		{"zero timestep", func(c *RunConfig) { c.TimestepFs = 0 }},
		{"zero steps", func(c *RunConfig) { c.TotalSteps = 0 }},
		{"negative steps", func(c *RunConfig) { c.TotalSteps = -1 }},
		{"zero diagnostics interval", func(c *RunConfig) { c.DiagnosticsInterval = 0 }},
		{"zero trajectory interval", func(c *RunConfig) { c.TrajectoryInterval = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, core.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := Default()
	cfg.Structure = "CaCO3_frame.xyz"
	cfg.Model = "models/mace_calcite.model"
	cfg.Dispersion = true
	cfg.InitialTempK = 600
	cfg.TotalSteps = 250000
	cfg.Seed = 7

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Errorf("round trip changed the config:\nsaved  %+v\nloaded %+v", cfg, loaded)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	partial := "structure: frame.xyz\ninitial_temperature_K: 450\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Structure != "frame.xyz" || cfg.InitialTempK != 450 {
		t.Errorf("explicit fields not loaded: %+v", cfg)
	}
	if cfg.TimestepFs != DefaultTimestepFs || cfg.Integrator != DefaultIntegrator {
		t.Errorf("unset fields should keep defaults: %+v", cfg)
	}
}

func TestCalcitePreset(t *testing.T) {
	p := GetPreset("caco3-600K")
	if p == nil {
		t.Fatal("caco3-600K preset missing")
	}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	if p.InitialTempK != 600 || p.TimestepFs != 1 || p.ThermostatCoupling != 0.01 {
		t.Errorf("thermostat parameters wrong: %+v", p)
	}
	if p.TotalSteps != 250000 || p.DiagnosticsInterval != 1000 || p.TrajectoryInterval != 10 {
		t.Errorf("cadence parameters wrong: %+v", p)
	}
	if p.Integrator != "langevin" || !p.Dispersion {
		t.Errorf("engine parameters wrong: %+v", p)
	}

	// callers get a copy, not the shared table entry
	p.TotalSteps = 1
	if GetPreset("caco3-600K").TotalSteps != 250000 {
		t.Error("mutating a returned preset leaked into the table")
	}
}

func TestPresetLookup(t *testing.T) {
	if GetPreset("no-such-preset") != nil {
		t.Error("unknown preset should return nil")
	}
	names := ListPresets()
	if !sortedContains(names, "caco3-600K") || !sortedContains(names, "smoke") {
		t.Errorf("preset list incomplete: %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("preset names not sorted: %v", names)
		}
	}
}

func sortedContains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

func TestDefaultEvalTemplates(t *testing.T) {
	cfg := DefaultEval()
	if cfg.Command == "" {
		t.Error("eval command must have a default")
	}
	for _, tmpl := range []string{cfg.Test.Model, cfg.Test.Output, cfg.Train.Configs, cfg.Train.Model, cfg.Train.Output} {
		if !strings.Contains(tmpl, "{size}") {
			t.Errorf("template %q lacks the {size} placeholder", tmpl)
		}
	}
	// the validation set is shared across sizes
	if strings.Contains(cfg.Test.Configs, "{size}") {
		t.Errorf("test configs template %q should not vary by size", cfg.Test.Configs)
	}
	if cfg.IncludeTrainingSet || cfg.ContinueOnError {
		t.Error("eval policy flags must default to off")
	}
}

func TestLoadEval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.yaml")
	doc := strings.Join([]string{
		"command: my_eval",
		"include_training_set: true",
		"continue_on_error: true",
		"test:",
		"  configs: data/val.xyz",
		"  model: m/{size}.model",
		"  output: out/test_{size}.xyz",
	}, "\n")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadEval(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Command != "my_eval" || !cfg.IncludeTrainingSet || !cfg.ContinueOnError {
		t.Errorf("loaded eval config wrong: %+v", cfg)
	}
	if cfg.Test.Configs != "data/val.xyz" {
		t.Errorf("test templates not loaded: %+v", cfg.Test)
	}
	// train block untouched, so defaults survive
	if cfg.Train.Configs != DefaultEval().Train.Configs {
		t.Errorf("train templates should keep defaults: %+v", cfg.Train)
	}
}
