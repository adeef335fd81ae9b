// Package integrators provides fixed-step numerical integrators for joint
// dynamics.
package integrators

// Dynamics yields the time derivative of a state vector.
type Dynamics interface {
	Derivative(x []float64, t float64) []float64
}

// Integrator advances a state vector by one step of dt seconds.
type Integrator interface {
	Step(dyn Dynamics, x []float64, t, dt float64) []float64
}

// New returns the integrator registered under name, or nil if unknown.
func New(name string) Integrator {
	switch name {
	case "euler":
		return NewEuler()
	case "rk4":
		return NewRK4()
	default:
		return nil
	}
}
