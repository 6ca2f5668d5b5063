package driver_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mdlab-go/mdrun/internal/core"
	"github.com/mdlab-go/mdrun/internal/driver"
)

// stubIntegrator counts steps and optionally fails at a given one.
type stubIntegrator struct {
	calls  int
	failAt int
	err    error
}

func (in *stubIntegrator) Step(s *core.System, dt float64) error {
	in.calls++
	if in.failAt > 0 && in.calls == in.failAt {
		return in.err
	}
	return nil
}

func newTestSystem() *core.System {
	sys, err := core.NewSystem(
		[]string{"Ar", "Ar"},
		[]float64{39.948, 39.948},
		[]core.Vec3{{0, 0, 0}, {4, 0, 0}},
	)
	Expect(err).NotTo(HaveOccurred())
	return sys
}

var _ = Describe("Driver", func() {
	var (
		sys   *core.System
		integ *stubIntegrator
	)

	BeforeEach(func() {
		sys = newTestSystem()
		integ = &stubIntegrator{}
	})

	Describe("callback cadence", func() {
		It("invokes each callback floor(N/interval) times", func() {
			d := driver.New(sys, integ, 1.0)

			var every10, every7 int
			Expect(d.Attach(10, func(s *core.System, c driver.Context) error {
				every10++
				return nil
			})).To(Succeed())
			Expect(d.Attach(7, func(s *core.System, c driver.Context) error {
				every7++
				return nil
			})).To(Succeed())

			Expect(d.Run(context.Background(), 100)).To(Succeed())
			Expect(every10).To(Equal(10))
			Expect(every7).To(Equal(14))
			Expect(d.State()).To(Equal(driver.Completed))
			Expect(d.Clock().Step()).To(Equal(100))
		})

		It("fires callbacks in attachment order", func() {
			d := driver.New(sys, integ, 1.0)

			var order []string
			Expect(d.Attach(1, func(s *core.System, c driver.Context) error {
				order = append(order, "first")
				return nil
			})).To(Succeed())
			Expect(d.Attach(1, func(s *core.System, c driver.Context) error {
				order = append(order, "second")
				return nil
			})).To(Succeed())

			Expect(d.Run(context.Background(), 1)).To(Succeed())
			Expect(order).To(Equal([]string{"first", "second"}))
		})

		It("passes the live system and step context explicitly", func() {
			d := driver.New(sys, integ, 1.0)

			var steps []int
			Expect(d.Attach(2, func(s *core.System, c driver.Context) error {
				Expect(s).To(BeIdenticalTo(sys))
				steps = append(steps, c.Step)
				return nil
			})).To(Succeed())

			Expect(d.Run(context.Background(), 6)).To(Succeed())
			Expect(steps).To(Equal([]int{2, 4, 6}))
		})

		It("rejects non-positive intervals", func() {
			d := driver.New(sys, integ, 1.0)
			err := d.Attach(0, func(s *core.System, c driver.Context) error { return nil })
			Expect(err).To(MatchError(core.ErrInvalidConfig))
		})
	})

	Describe("failure handling", func() {
		It("fails fast when the integrator errors", func() {
			integ.failAt = 42
			integ.err = core.ErrDiverged
			d := driver.New(sys, integ, 1.0)

			var callbackSteps []int
			Expect(d.Attach(1, func(s *core.System, c driver.Context) error {
				callbackSteps = append(callbackSteps, c.Step)
				return nil
			})).To(Succeed())

			err := d.Run(context.Background(), 100)
			Expect(err).To(MatchError(core.ErrDiverged))

			var stepErr *core.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Step).To(Equal(42))

			Expect(d.State()).To(Equal(driver.Failed))
			Expect(integ.calls).To(Equal(42))
			// the failing step never reaches its callbacks
			Expect(callbackSteps).To(HaveLen(41))
		})

		It("fails when a callback errors, keeping the step index", func() {
			d := driver.New(sys, integ, 1.0)

			ioErr := errors.New("disk full")
			Expect(d.Attach(5, func(s *core.System, c driver.Context) error {
				if c.Step == 15 {
					return ioErr
				}
				return nil
			})).To(Succeed())

			err := d.Run(context.Background(), 100)
			Expect(err).To(MatchError(ioErr))

			var stepErr *core.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Step).To(Equal(15))
			Expect(integ.calls).To(Equal(15))
		})

		It("aborts between steps on context cancellation", func() {
			ctx, cancel := context.WithCancel(context.Background())
			d := driver.New(sys, integ, 1.0)
			Expect(d.Attach(10, func(s *core.System, c driver.Context) error {
				if c.Step == 50 {
					cancel()
				}
				return nil
			})).To(Succeed())

			err := d.Run(ctx, 1000)
			Expect(err).To(MatchError(context.Canceled))
			Expect(d.State()).To(Equal(driver.Failed))
			Expect(integ.calls).To(Equal(50))
		})
	})

	Describe("lifecycle", func() {
		It("rejects a second run", func() {
			d := driver.New(sys, integ, 1.0)
			Expect(d.Run(context.Background(), 3)).To(Succeed())
			Expect(d.Run(context.Background(), 3)).To(MatchError(core.ErrDriverSpent))
		})

		It("rejects non-positive step counts", func() {
			d := driver.New(sys, integ, 1.0)
			Expect(d.Run(context.Background(), 0)).To(MatchError(core.ErrInvalidConfig))
		})

		It("rejects a non-positive timestep", func() {
			d := driver.New(sys, integ, 0)
			Expect(d.Run(context.Background(), 10)).To(MatchError(core.ErrInvalidConfig))
		})

		It("stays failed after a failed run", func() {
			integ.failAt = 1
			integ.err = core.ErrDiverged
			d := driver.New(sys, integ, 1.0)
			Expect(d.Run(context.Background(), 10)).To(HaveOccurred())
			Expect(d.State()).To(Equal(driver.Failed))
			Expect(d.Run(context.Background(), 10)).To(MatchError(core.ErrDriverSpent))
		})
	})
})
