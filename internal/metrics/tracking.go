// Package metrics accumulates per-run tracking quality measures for mimic
// pairs.
package metrics

import "math"

// Metric observes one mimic pair every simulation step. Err is the tracking
// error at that step; command and commanded describe what, if anything, the
// controller issued.
type Metric interface {
	Name() string
	Observe(err, command float64, commanded bool)
	Value() float64
	Reset()
}

// TrackingRMS is the root-mean-square tracking error over the run.
type TrackingRMS struct {
	sumSq   float64
	samples int
}

func NewTrackingRMS() *TrackingRMS { return &TrackingRMS{} }

func (m *TrackingRMS) Name() string { return "tracking_rms" }

func (m *TrackingRMS) Observe(err, command float64, commanded bool) {
	m.sumSq += err * err
	m.samples++
}

func (m *TrackingRMS) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.samples))
}

func (m *TrackingRMS) Reset() {
	m.sumSq = 0
	m.samples = 0
}

// TrackingMax is the largest absolute tracking error seen during the run.
type TrackingMax struct {
	max float64
}

func NewTrackingMax() *TrackingMax { return &TrackingMax{} }

func (m *TrackingMax) Name() string { return "tracking_max" }

func (m *TrackingMax) Observe(err, command float64, commanded bool) {
	if a := math.Abs(err); a > m.max {
		m.max = a
	}
}

func (m *TrackingMax) Value() float64 { return m.max }

func (m *TrackingMax) Reset() { m.max = 0 }

// ControlEffort is the mean absolute command over the steps that actually
// issued one.
type ControlEffort struct {
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort { return &ControlEffort{} }

func (m *ControlEffort) Name() string { return "control_effort" }

func (m *ControlEffort) Observe(err, command float64, commanded bool) {
	if !commanded {
		return
	}
	m.sum += math.Abs(command)
	m.samples++
}

func (m *ControlEffort) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *ControlEffort) Reset() {
	m.sum = 0
	m.samples = 0
}
