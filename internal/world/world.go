package world

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/jointsim/internal/integrators"
)

// StepFunc is invoked once per simulation step, before physics integration,
// with the current simulation time and the step size in seconds.
type StepFunc func(t, dt float64)

// World owns the fixed-step simulation loop for one model. Step callbacks
// run strictly sequentially on the caller's goroutine; controllers may
// mutate joint state without synchronization.
type World struct {
	model      *Model
	integrator integrators.Integrator
	callbacks  []StepFunc
	t          float64
	dt         float64
}

// New creates a world stepping the model with the given integrator and
// fixed step size.
func New(model *Model, integ integrators.Integrator, dt float64) (*World, error) {
	if model == nil {
		return nil, fmt.Errorf("world requires a model")
	}
	if integ == nil {
		return nil, fmt.Errorf("world requires an integrator")
	}
	if dt <= 0 {
		return nil, fmt.Errorf("step size must be positive, got %f", dt)
	}
	return &World{
		model:      model,
		integrator: integ,
		dt:         dt,
	}, nil
}

// Model returns the simulated model.
func (w *World) Model() *Model { return w.model }

// Time returns the current simulation time in seconds.
func (w *World) Time() float64 { return w.t }

// Dt returns the fixed step size in seconds.
func (w *World) Dt() float64 { return w.dt }

// OnStep registers a callback invoked once per step, before integration.
// Callbacks run in registration order.
func (w *World) OnStep(fn StepFunc) {
	w.callbacks = append(w.callbacks, fn)
}

// Step advances the world by one tick: callbacks first, then joint
// integration.
func (w *World) Step() {
	for _, fn := range w.callbacks {
		fn(w.t, w.dt)
	}
	for _, j := range w.model.joints {
		j.step(w.integrator, w.t, w.dt)
	}
	w.t += w.dt
}

// Run steps the world until duration seconds of simulated time have
// elapsed or the context is canceled. When onStep is non-nil it is invoked
// after each step; returning false stops the run early.
func (w *World) Run(ctx context.Context, duration float64, onStep func(t float64) bool) error {
	steps := int(math.Round(duration / w.dt))
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		w.Step()

		if onStep != nil && !onStep(w.t) {
			return nil
		}
	}
	return nil
}
