package world

import "math"

// Drives move a designated joint through a motion program so tracking
// behavior can be exercised without external input. They register as step
// callbacks ahead of any controllers.

// SineDrive moves a joint kinematically along a sine wave.
type SineDrive struct {
	Joint     *Joint
	Amplitude float64
	Frequency float64 // Hz
	Phase     float64 // radians
}

func (d *SineDrive) OnStep(t, dt float64) {
	d.Joint.SetPosition(d.Amplitude*math.Sin(2*math.Pi*d.Frequency*t+d.Phase), true)
}

// RampDrive moves a joint at a constant rate from its starting position.
type RampDrive struct {
	Joint *Joint
	Rate  float64 // units per second

	start   float64
	started bool
}

func (d *RampDrive) OnStep(t, dt float64) {
	if !d.started {
		d.start = d.Joint.Position()
		d.started = true
	}
	d.Joint.SetPosition(d.start+d.Rate*t, true)
}

// ForceDrive applies a constant force to a joint every step, letting its
// dynamics integrate freely.
type ForceDrive struct {
	Joint *Joint
	Force float64
}

func (d *ForceDrive) OnStep(t, dt float64) {
	d.Joint.SetForce(d.Force)
}
