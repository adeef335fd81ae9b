// Package control provides the feedback primitives used by the mimic
// controller: a PID law with a symmetric integrator clamp and a saturation
// helper.
package control

// Pid is a discrete PID controller with anti-windup. The integral term is
// clamped to [IMin, IMax] after every update so a persistent error cannot
// wind it up without bound.
type Pid struct {
	Kp float64
	Ki float64
	Kd float64

	// Integrator clamp bounds. NewPid sets them symmetrically.
	IMax float64
	IMin float64

	integral float64
	prevErr  float64
}

// NewPid returns a PID controller with the given gains and a symmetric
// integrator clamp of [-iClamp, +iClamp].
func NewPid(kp, ki, kd, iClamp float64) *Pid {
	return &Pid{
		Kp:   kp,
		Ki:   ki,
		Kd:   kd,
		IMax: iClamp,
		IMin: -iClamp,
	}
}

// Compute advances the controller by one step of dt seconds and returns the
// raw (unsaturated) command for the given error. A dt of zero contributes
// nothing to the integral and yields a zero derivative term.
func (p *Pid) Compute(err, dt float64) float64 {
	p.integral += err * dt
	p.integral = Clamp(p.integral, p.IMin, p.IMax)

	var derivative float64
	if dt > 0 {
		derivative = (err - p.prevErr) / dt
	}
	p.prevErr = err

	return p.Kp*err + p.Ki*p.integral + p.Kd*derivative
}

// Reset clears integral and derivative state.
func (p *Pid) Reset() {
	p.integral = 0
	p.prevErr = 0
}

// Integral returns the current accumulated integral term.
func (p *Pid) Integral() float64 {
	return p.integral
}

// Clamp restricts v to the inclusive range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
