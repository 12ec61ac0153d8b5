package trafficsim

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Runner ticks a simulation at a fixed rate, feeding it the monotonic time
// elapsed since the previous tick. Pausing the simulation does not stop it.
type Runner struct {
	sim      *Simulation
	interval time.Duration
	maxDelta float64
	logger   logrus.FieldLogger
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithInterval overrides the tick period
func WithInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.interval = d
	}
}

// WithMaxFrameDelta overrides the clamp applied to long frames, in seconds
func WithMaxFrameDelta(seconds float64) RunnerOption {
	return func(r *Runner) {
		r.maxDelta = seconds
	}
}

// NewRunner creates a runner using the simulation's runner configuration
func NewRunner(sim *Simulation, opts ...RunnerOption) *Runner {
	cfg := sim.Config()
	r := &Runner{
		sim:      sim,
		interval: cfg.TickInterval(),
		maxDelta: cfg.Runner.MaxFrameDelta,
		logger:   sim.logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run blocks until ctx is done.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.WithField("interval", r.interval).Debug("Runner started")
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("Runner stopped")
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if dt > r.maxDelta {
				dt = r.maxDelta
			}
			r.sim.Tick(dt)
		}
	}
}
