package mimic

import (
	"math"

	"github.com/san-kum/jointsim/internal/control"
)

// Controller tracks one driver/follower pair. It is constructed only by
// Resolve and holds no state beyond the PID integrator and the last
// diagnostics snapshot. Tick is invoked by the host once per simulation
// step, strictly sequentially.
type Controller struct {
	driver   Joint
	follower Joint

	scale     float64
	offset    float64
	deadband  float64
	maxEffort float64

	pid *control.Pid // nil in direct mode

	diag Diagnostics
}

// Diagnostics is a read-only snapshot of the last tick, for logging and
// metrics. Commanded is false when the error stayed inside the deadband.
type Diagnostics struct {
	Target    float64
	Error     float64
	Command   float64
	Commanded bool
}

// Feedback reports whether the controller runs a PID force loop rather
// than direct position commands.
func (c *Controller) Feedback() bool { return c.pid != nil }

// MaxEffort returns the resolved effort bound.
func (c *Controller) MaxEffort() float64 { return c.maxEffort }

// Scale returns the resolved scale factor.
func (c *Controller) Scale() float64 { return c.scale }

// Offset returns the resolved offset.
func (c *Controller) Offset() float64 { return c.offset }

// Deadband returns the resolved deadband.
func (c *Controller) Deadband() float64 { return c.deadband }

// Diagnostics returns the snapshot recorded by the last Tick.
func (c *Controller) Diagnostics() Diagnostics { return c.diag }

// Tick performs one control update with dt seconds elapsed since the
// previous tick. When the tracking error is inside the deadband no command
// is issued at all, preserving whatever was last commanded.
func (c *Controller) Tick(dt float64) {
	target := c.driver.Position()*c.scale + c.offset
	err := target - c.follower.Position()

	c.diag = Diagnostics{Target: target, Error: err}

	if math.Abs(err) < c.deadband {
		return
	}

	if c.pid != nil {
		effort := control.Clamp(c.pid.Compute(err, dt), -c.maxEffort, c.maxEffort)
		c.follower.SetForce(effort)
		c.diag.Command = effort
		c.diag.Commanded = true
		return
	}

	c.follower.SetPosition(target, true)
	c.diag.Command = target
	c.diag.Commanded = true
}
