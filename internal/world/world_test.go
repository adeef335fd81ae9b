package world

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/jointsim/internal/integrators"
)

func testModel(t *testing.T) *Model {
	t.Helper()
	m := NewModel("test")
	j := NewJoint(JointSpec{Name: "axis", Inertia: 1.0, Damping: 0, EffortLimit: 10.0})
	if err := m.AddJoint(j); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestModelJointLookup(t *testing.T) {
	m := testModel(t)

	if _, ok := m.Joint("axis"); !ok {
		t.Error("expected to find joint axis")
	}
	if _, ok := m.Joint("missing"); ok {
		t.Error("expected lookup miss for unknown joint")
	}
}

func TestModelRejectsDuplicateJoint(t *testing.T) {
	m := testModel(t)
	err := m.AddJoint(NewJoint(JointSpec{Name: "axis"}))
	if err == nil {
		t.Error("expected error for duplicate joint name")
	}
}

func TestWorldValidation(t *testing.T) {
	m := testModel(t)

	if _, err := New(nil, integrators.NewEuler(), 0.01); err == nil {
		t.Error("expected error for nil model")
	}
	if _, err := New(m, nil, 0.01); err == nil {
		t.Error("expected error for nil integrator")
	}
	if _, err := New(m, integrators.NewEuler(), 0); err == nil {
		t.Error("expected error for zero dt")
	}
}

func TestStepRunsCallbacksBeforeIntegration(t *testing.T) {
	m := testModel(t)
	j, _ := m.Joint("axis")

	w, err := New(m, integrators.NewEuler(), 0.1)
	if err != nil {
		t.Fatal(err)
	}

	var posAtCallback float64
	w.OnStep(func(tNow, dt float64) {
		posAtCallback = j.Position()
		j.SetForce(1.0)
	})

	w.Step()

	if posAtCallback != 0 {
		t.Errorf("callback should observe pre-step position, got %f", posAtCallback)
	}
	// One euler step with f=1, m=1: velocity 0.1, position still 0.
	if math.Abs(j.Velocity()-0.1) > 1e-12 {
		t.Errorf("expected velocity 0.1 after one step, got %f", j.Velocity())
	}
}

func TestForceClearedAfterStep(t *testing.T) {
	m := testModel(t)
	j, _ := m.Joint("axis")
	w, _ := New(m, integrators.NewEuler(), 0.1)

	j.SetForce(1.0)
	w.Step()
	v1 := j.Velocity()
	w.Step()

	if j.Velocity() != v1 {
		t.Errorf("force should not persist across steps: velocity went %f -> %f", v1, j.Velocity())
	}
}

func TestEffortLimitClampsForce(t *testing.T) {
	m := testModel(t)
	j, _ := m.Joint("axis")
	w, _ := New(m, integrators.NewEuler(), 0.1)

	j.SetForce(1000.0) // limit is 10
	w.Step()

	if math.Abs(j.Velocity()-1.0) > 1e-12 {
		t.Errorf("expected velocity from clamped force 10, got %f", j.Velocity())
	}
}

func TestSetPositionImmediate(t *testing.T) {
	m := testModel(t)
	j, _ := m.Joint("axis")

	j.SetForce(5.0)
	j.SetPosition(1.5, true)

	if j.Position() != 1.5 {
		t.Errorf("expected position 1.5, got %f", j.Position())
	}
	if j.Velocity() != 0 {
		t.Errorf("immediate position command should zero velocity, got %f", j.Velocity())
	}
}

func TestServoTracksTarget(t *testing.T) {
	m := NewModel("servo")
	j := NewJoint(JointSpec{Name: "axis", Inertia: 0.01, Damping: 2.0, EffortLimit: 50.0})
	if err := m.AddJoint(j); err != nil {
		t.Fatal(err)
	}
	j.SetMaxForce(20.0)
	if j.MaxForce() != 20.0 {
		t.Fatalf("expected primed max force 20.0, got %f", j.MaxForce())
	}

	w, _ := New(m, integrators.NewRK4(), 0.001)
	j.SetPosition(0.5, false)

	if err := w.Run(context.Background(), 2.0, nil); err != nil {
		t.Fatal(err)
	}

	if math.Abs(j.Position()-0.5) > 0.05 {
		t.Errorf("servo should settle near 0.5, got %f", j.Position())
	}
}

func TestRunCancellation(t *testing.T) {
	m := testModel(t)
	w, _ := New(m, integrators.NewEuler(), 0.01)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := w.Run(ctx, 1.0, nil); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunEarlyStop(t *testing.T) {
	m := testModel(t)
	w, _ := New(m, integrators.NewEuler(), 0.01)

	steps := 0
	err := w.Run(context.Background(), 1.0, func(t float64) bool {
		steps++
		return steps < 5
	})
	if err != nil {
		t.Fatal(err)
	}
	if steps != 5 {
		t.Errorf("expected run to stop after 5 steps, got %d", steps)
	}
}

func TestSineDrive(t *testing.T) {
	m := testModel(t)
	j, _ := m.Joint("axis")
	w, _ := New(m, integrators.NewEuler(), 0.25)

	drive := &SineDrive{Joint: j, Amplitude: 2.0, Frequency: 1.0}
	w.OnStep(drive.OnStep)

	w.Step() // t=0: sin(0) = 0
	if j.Position() != 0 {
		t.Errorf("expected position 0 at t=0, got %f", j.Position())
	}
	w.Step() // t=0.25: sin(pi/2) = 1
	if math.Abs(j.Position()-2.0) > 1e-9 {
		t.Errorf("expected position 2.0 at quarter period, got %f", j.Position())
	}
}

func TestRampDrive(t *testing.T) {
	m := testModel(t)
	j, _ := m.Joint("axis")
	j.SetPosition(1.0, true)
	w, _ := New(m, integrators.NewEuler(), 0.5)

	drive := &RampDrive{Joint: j, Rate: 2.0}
	w.OnStep(drive.OnStep)

	w.Step()
	w.Step() // second callback at t=0.5: 1.0 + 2.0*0.5
	if math.Abs(j.Position()-2.0) > 1e-9 {
		t.Errorf("expected ramped position 2.0, got %f", j.Position())
	}
}
