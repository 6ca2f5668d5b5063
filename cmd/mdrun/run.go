package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mdlab-go/mdrun/internal/config"
	"github.com/mdlab-go/mdrun/internal/core"
	"github.com/mdlab-go/mdrun/internal/diagnostics"
	"github.com/mdlab-go/mdrun/internal/driver"
	"github.com/mdlab-go/mdrun/internal/potential"
	"github.com/mdlab-go/mdrun/internal/storage"
	"github.com/mdlab-go/mdrun/internal/system"
	"github.com/mdlab-go/mdrun/internal/thermostat"
	"github.com/mdlab-go/mdrun/internal/traj"
	"github.com/mdlab-go/mdrun/internal/velocity"
)

// Outcome reports what a run produced, whether it completed or not.
type Outcome struct {
	RunID     string
	FinalStep int
	Wall      time.Duration
}

// background is a cancellable goroutine whose result is read only
// after it has fully returned, so cleanup deferred inside fn (writer
// close, storage save) is complete by the time stop returns.
type background struct {
	cancel context.CancelFunc
	done   chan error
	once   sync.Once
	err    error
}

func startBackground(parent context.Context, fn func(context.Context) error) *background {
	ctx, cancel := context.WithCancel(parent)
	bg := &background{cancel: cancel, done: make(chan error, 1)}
	go func() { bg.done <- fn(ctx) }()
	return bg
}

// stop cancels the work and blocks until fn has returned. Safe to call
// more than once.
func (bg *background) stop() error {
	bg.cancel()
	bg.once.Do(func() { bg.err = <-bg.done })
	return bg.err
}

// executeRun wires the workflow end to end: structure in, velocities
// initialized, driver stepping with diagnostics and trajectory
// callbacks attached, results persisted. The run is saved even when it
// fails, so the stored series covers the steps up to the failure.
func executeRun(ctx context.Context, cfg *config.RunConfig, out io.Writer, extraSink diagnostics.Sink) (Outcome, error) {
	var outcome Outcome

	// model artifacts belong to external engines; only their presence
	// is checked here
	if cfg.Model != "" {
		if _, err := os.Stat(cfg.Model); err != nil {
			return outcome, fmt.Errorf("model artifact: %w", err)
		}
	}

	sys, err := system.Load(cfg.Structure)
	if err != nil {
		return outcome, err
	}

	pot, err := potential.FromConfig(cfg.Potential, sys)
	if err != nil {
		return outcome, err
	}
	sys.SetPotential(pot)

	if err := velocity.Init(sys, cfg.InitialTempK, cfg.Seed); err != nil {
		return outcome, err
	}

	integ, err := thermostat.New(cfg.Integrator, cfg.InitialTempK, cfg.ThermostatCoupling, cfg.Seed)
	if err != nil {
		return outcome, err
	}

	rep := diagnostics.NewReporter(out)
	var samples []diagnostics.Sample
	rep.AddSink(func(s diagnostics.Sample) { samples = append(samples, s) })
	if extraSink != nil {
		rep.AddSink(extraSink)
	}

	tw, err := traj.NewWriter(cfg.Trajectory, sys.Len())
	if err != nil {
		return outcome, err
	}
	defer tw.Close()

	d := driver.New(sys, integ, cfg.TimestepFs)
	if err := d.Attach(cfg.DiagnosticsInterval, rep.Callback()); err != nil {
		return outcome, err
	}
	if err := d.Attach(cfg.TrajectoryInterval, func(s *core.System, c driver.Context) error {
		return tw.Append(s, c.Step)
	}); err != nil {
		return outcome, err
	}

	// pre-run diagnostics line, matching the workflow's step-zero report
	if err := rep.Report(sys, 0, 0); err != nil {
		return outcome, err
	}

	runErr := d.Run(ctx, cfg.TotalSteps)

	if clock := d.Clock(); clock != nil {
		outcome.FinalStep = clock.Step()
		outcome.Wall = clock.Elapsed()
	}
	if err := tw.Close(); err != nil && runErr == nil {
		runErr = err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		if runErr == nil {
			runErr = err
		}
		return outcome, runErr
	}
	meta := storage.RunMetadata{
		Structure:           cfg.Structure,
		Potential:           cfg.Potential,
		Integrator:          cfg.Integrator,
		Seed:                cfg.Seed,
		InitialTempK:        cfg.InitialTempK,
		TimestepFs:          cfg.TimestepFs,
		ThermostatCoupling:  cfg.ThermostatCoupling,
		TotalSteps:          cfg.TotalSteps,
		DiagnosticsInterval: cfg.DiagnosticsInterval,
		TrajectoryInterval:  cfg.TrajectoryInterval,
		FinalStep:           outcome.FinalStep,
		State:               d.State().String(),
		WallSeconds:         outcome.Wall.Seconds(),
	}
	runID, err := st.Save(meta, samples)
	if err != nil && runErr == nil {
		runErr = err
	}
	outcome.RunID = runID
	return outcome, runErr
}
