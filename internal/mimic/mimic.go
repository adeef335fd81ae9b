// Package mimic synchronizes one joint to another: a follower joint tracks
// a linear function of a driver joint's position, either by direct position
// commands or through a PID force loop bounded by an effort limit.
package mimic

import (
	"math"

	"github.com/san-kum/jointsim/internal/control"
)

// Joint is the capability surface the controller needs from a host joint.
// Handles are borrowed from the host; the controller never manages their
// lifetime.
type Joint interface {
	Position() float64
	SetPosition(value float64, immediate bool)
	SetForce(value float64)
	EffortLimit() float64
	SetMaxForce(limit float64)
}

// Model resolves joint names to handles. JointByName returns nil when no
// joint with that name exists.
type Model interface {
	JointByName(name string) Joint
}

// Gains holds the PID parameters for feedback mode. IClamp bounds the
// integral term symmetrically in [-IClamp, +IClamp].
type Gains struct {
	Kp     float64
	Ki     float64
	Kd     float64
	IClamp float64
}

// Params configures one driver/follower pair. Scale and Offset define the
// tracked target as driver*Scale + Offset. A zero MaxEffort means "use the
// follower's effort limit". A non-nil Gains enables feedback mode.
type Params struct {
	Driver    string
	Follower  string
	Scale     float64
	Offset    float64
	Deadband  float64
	MaxEffort float64
	Gains     *Gains
}

// Resolve validates params against the model and constructs the controller.
// Any failure is terminal: the caller must not register the controller, and
// no joint is ever commanded by it. In direct mode the follower's actuator
// force limit is primed once, here.
func Resolve(model Model, p Params) (*Controller, error) {
	if model == nil {
		return nil, ErrModelUnavailable
	}

	if p.Driver == "" {
		return nil, &MissingJointError{Role: "driver"}
	}
	if p.Follower == "" {
		return nil, &MissingJointError{Role: "follower"}
	}

	driver := model.JointByName(p.Driver)
	if driver == nil {
		return nil, &MissingJointError{Role: "driver", Name: p.Driver}
	}
	follower := model.JointByName(p.Follower)
	if follower == nil {
		return nil, &MissingJointError{Role: "follower", Name: p.Follower}
	}

	if p.Deadband < 0 {
		return nil, &InvalidParameterError{Field: "deadband", Reason: "must be >= 0"}
	}

	maxEffort := p.MaxEffort
	if maxEffort == 0 {
		maxEffort = follower.EffortLimit()
	}
	if maxEffort <= 0 || !isFinite(maxEffort) {
		return nil, &InvalidParameterError{Field: "max_effort", Reason: "must be > 0"}
	}

	c := &Controller{
		driver:    driver,
		follower:  follower,
		scale:     p.Scale,
		offset:    p.Offset,
		deadband:  p.Deadband,
		maxEffort: maxEffort,
	}

	if p.Gains != nil {
		if err := validateGains(p.Gains); err != nil {
			return nil, err
		}
		c.pid = control.NewPid(p.Gains.Kp, p.Gains.Ki, p.Gains.Kd, p.Gains.IClamp)
	} else {
		// Prime the actuator so position-mode commands are force-capped.
		follower.SetMaxForce(maxEffort)
	}

	return c, nil
}

func validateGains(g *Gains) error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"kp", g.Kp},
		{"ki", g.Ki},
		{"kd", g.Kd},
		{"i_clamp", g.IClamp},
	} {
		if !isFinite(f.value) {
			return &InvalidParameterError{Field: f.name, Reason: "must be finite"}
		}
	}
	if g.IClamp < 0 {
		return &InvalidParameterError{Field: "i_clamp", Reason: "must be >= 0"}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
