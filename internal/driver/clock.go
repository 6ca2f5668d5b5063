package driver

import "time"

// Clock is the driver's monotone step counter plus the wall-clock
// start of the run. The step count never decreases or resets within a
// run.
type Clock struct {
	step  int
	start time.Time
}

func newClock() *Clock {
	return &Clock{start: time.Now()}
}

func (c *Clock) advance() { c.step++ }

// Step returns the number of completed steps.
func (c *Clock) Step() int { return c.step }

// Elapsed returns wall-clock time since the run started.
func (c *Clock) Elapsed() time.Duration { return time.Since(c.start) }
