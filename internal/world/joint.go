// Package world provides the host side of the simulation: single-axis
// joints, the model that names them, and the fixed-step world loop that
// invokes registered controllers once per tick.
package world

import (
	"github.com/san-kum/jointsim/internal/control"
	"github.com/san-kum/jointsim/internal/integrators"
)

// servoStiffness is the proportional gain of the built-in position servo
// used for non-immediate position commands.
const servoStiffness = 100.0

// Joint is a single-axis actuated joint. Commands written during a tick
// (SetForce, non-immediate SetPosition) take effect at the next integration;
// the applied force is cleared after every step.
type Joint struct {
	name        string
	Inertia     float64
	Damping     float64
	effortLimit float64

	position float64
	velocity float64

	force    float64  // force commanded this step
	effForce float64  // effective force seen by Derivative during integration
	maxForce float64  // actuator force cap for position-mode commands, 0 = unset
	target   *float64 // position servo target, nil when not servoing
}

// JointSpec describes a joint to be added to a model.
type JointSpec struct {
	Name        string
	Inertia     float64
	Damping     float64
	EffortLimit float64
	Position    float64
}

// NewJoint creates a joint from its spec. Inertia defaults to 1 when
// unspecified so the dynamics stay well defined.
func NewJoint(spec JointSpec) *Joint {
	inertia := spec.Inertia
	if inertia <= 0 {
		inertia = 1.0
	}
	return &Joint{
		name:        spec.Name,
		Inertia:     inertia,
		Damping:     spec.Damping,
		effortLimit: spec.EffortLimit,
		position:    spec.Position,
	}
}

// Name returns the joint's name within its model.
func (j *Joint) Name() string { return j.name }

// Position returns the current axis position.
func (j *Joint) Position() float64 { return j.position }

// Velocity returns the current axis velocity.
func (j *Joint) Velocity() float64 { return j.velocity }

// EffortLimit returns the physical force limit of the joint.
func (j *Joint) EffortLimit() float64 { return j.effortLimit }

// SetPosition commands the joint position. With immediate set, the position
// is applied as a hard kinematic target right away and the velocity is
// zeroed; otherwise the built-in servo drives toward it, capped by the
// actuator force limit.
func (j *Joint) SetPosition(value float64, immediate bool) {
	if immediate {
		j.position = value
		j.velocity = 0
		j.target = nil
		return
	}
	v := value
	j.target = &v
}

// SetForce commands the force applied at the next integration step.
func (j *Joint) SetForce(value float64) {
	j.force = value
}

// SetMaxForce sets the actuator force cap used by position-mode commands.
func (j *Joint) SetMaxForce(limit float64) {
	j.maxForce = limit
}

// MaxForce returns the actuator force cap, 0 when never primed.
func (j *Joint) MaxForce() float64 { return j.maxForce }

// Derivative implements integrators.Dynamics over the state [position,
// velocity] using the force fixed for the current step.
func (j *Joint) Derivative(x []float64, t float64) []float64 {
	vel := x[1]
	accel := (j.effForce - j.Damping*vel) / j.Inertia
	return []float64{vel, accel}
}

// step integrates the joint one tick forward and clears the applied force.
func (j *Joint) step(integ integrators.Integrator, t, dt float64) {
	force := j.force
	if j.target != nil {
		servo := servoStiffness * (*j.target - j.position)
		if j.maxForce > 0 {
			servo = control.Clamp(servo, -j.maxForce, j.maxForce)
		}
		force += servo
	}
	if j.effortLimit > 0 {
		force = control.Clamp(force, -j.effortLimit, j.effortLimit)
	}

	j.effForce = force
	x := integ.Step(j, []float64{j.position, j.velocity}, t, dt)
	j.position, j.velocity = x[0], x[1]
	j.force = 0
}
