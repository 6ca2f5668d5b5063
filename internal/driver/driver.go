// Package driver owns the simulation loop: it advances a system
// through an injected integrator for a fixed number of steps and fires
// attached periodic callbacks on the way. I/O concerns (diagnostics,
// trajectory persistence) stay behind the callback boundary.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/mdlab-go/mdrun/internal/core"
)

// State is the driver lifecycle. Completed and Failed are terminal; a
// spent driver refuses to run again.
type State int

const (
	Initialized State = iota
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Context carries per-invocation step information into callbacks.
type Context struct {
	Step    int
	Elapsed time.Duration
}

// Callback receives the live system at its configured cadence. An
// error aborts the run.
type Callback func(s *core.System, c Context) error

type attachment struct {
	interval int
	fn       Callback
}

// Driver advances a system for a fixed step count.
type Driver struct {
	sys         *core.System
	integ       core.Integrator
	dtFs        float64
	attachments []attachment
	clock       *Clock
	state       State
}

func New(sys *core.System, integ core.Integrator, dtFs float64) *Driver {
	return &Driver{sys: sys, integ: integ, dtFs: dtFs}
}

// Attach registers fn to run after every step s with s mod interval
// == 0. Callbacks fire in attachment order.
func (d *Driver) Attach(interval int, fn Callback) error {
	if interval <= 0 {
		return fmt.Errorf("%w: callback interval %d must be positive", core.ErrInvalidConfig, interval)
	}
	d.attachments = append(d.attachments, attachment{interval: interval, fn: fn})
	return nil
}

// State returns the current lifecycle state.
func (d *Driver) State() State { return d.state }

// Clock returns the run clock, or nil before the first Run call.
func (d *Driver) Clock() *Clock { return d.clock }

// Run advances the system totalSteps steps. Any integrator or
// callback error halts the run immediately, moves the driver to
// Failed and is surfaced wrapped in a core.StepError carrying the
// 1-based failing step. No partial steps are rolled back: the system
// keeps the state of the failing step for post-mortems.
func (d *Driver) Run(ctx context.Context, totalSteps int) error {
	if d.state != Initialized {
		return core.ErrDriverSpent
	}
	if totalSteps <= 0 {
		return fmt.Errorf("%w: total steps %d must be positive", core.ErrInvalidConfig, totalSteps)
	}
	if d.sys == nil || d.sys.Len() == 0 {
		return core.ErrEmptySystem
	}
	if d.integ == nil {
		return fmt.Errorf("%w: no integrator", core.ErrInvalidConfig)
	}
	if d.dtFs <= 0 {
		return fmt.Errorf("%w: timestep %g fs must be positive", core.ErrInvalidConfig, d.dtFs)
	}

	d.state = Running
	d.clock = newClock()

	for s := 1; s <= totalSteps; s++ {
		select {
		case <-ctx.Done():
			d.state = Failed
			return &core.StepError{Step: s, Wrapped: ctx.Err()}
		default:
		}

		if err := d.integ.Step(d.sys, d.dtFs); err != nil {
			d.state = Failed
			return &core.StepError{Step: s, Wrapped: err}
		}
		d.clock.advance()

		for _, a := range d.attachments {
			if s%a.interval != 0 {
				continue
			}
			if err := a.fn(d.sys, Context{Step: s, Elapsed: d.clock.Elapsed()}); err != nil {
				d.state = Failed
				return &core.StepError{Step: s, Wrapped: err}
			}
		}
	}

	d.state = Completed
	return nil
}
