// Package diagnostics derives per-atom energy and temperature
// summaries from a system and emits them at the driver's cadence.
package diagnostics

import (
	"fmt"
	"io"
	"time"

	"github.com/mdlab-go/mdrun/internal/core"
	"github.com/mdlab-go/mdrun/internal/driver"
)

// Sample is one diagnostics measurement. All energies are per atom in
// eV; temperature follows the equipartition relation.
type Sample struct {
	Step        int
	EpotPerAtom float64
	EkinPerAtom float64
	TempK       float64
	EtotPerAtom float64
	Elapsed     time.Duration
}

// Measure computes a sample from the live system. It mutates nothing;
// force evaluation may run if the cached energies are stale.
func Measure(s *core.System, step int, elapsed time.Duration) (Sample, error) {
	if s.Len() == 0 {
		return Sample{}, core.ErrEmptySystem
	}
	epot, err := s.PotentialEnergy()
	if err != nil {
		return Sample{}, err
	}
	n := float64(s.Len())
	ekin := s.KineticEnergy() / n
	epot /= n
	return Sample{
		Step:        step,
		EpotPerAtom: epot,
		EkinPerAtom: ekin,
		TempK:       ekin / (1.5 * core.KB),
		EtotPerAtom: epot + ekin,
		Elapsed:     elapsed,
	}, nil
}

// Sink receives every sample a Reporter produces.
type Sink func(Sample)

// Reporter writes one human-readable line per invocation and fans
// samples out to any registered sinks (run storage, live view).
type Reporter struct {
	out   io.Writer
	sinks []Sink
}

func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

func (r *Reporter) AddSink(fn Sink) {
	r.sinks = append(r.sinks, fn)
}

// Report measures and emits one diagnostics line.
func (r *Reporter) Report(s *core.System, step int, elapsed time.Duration) error {
	sample, err := Measure(s, step, elapsed)
	if err != nil {
		return err
	}
	mins := int(elapsed.Minutes())
	secs := elapsed.Seconds() - float64(mins)*60
	_, err = fmt.Fprintf(r.out,
		"Energy per atom: Epot = %.3feV  Ekin = %.3feV (T=%3.0fK)  Etot = %.3feV Time Elapsed: %dm %.1fs\n",
		sample.EpotPerAtom, sample.EkinPerAtom, sample.TempK, sample.EtotPerAtom, mins, secs)
	if err != nil {
		return err
	}
	for _, sink := range r.sinks {
		sink(sample)
	}
	return nil
}

// Callback adapts the reporter to the driver's periodic-callback
// contract. The driver passes the live system explicitly; nothing is
// captured.
func (r *Reporter) Callback() driver.Callback {
	return func(s *core.System, c driver.Context) error {
		return r.Report(s, c.Step, c.Elapsed)
	}
}
