package control

import (
	"math"
	"testing"
)

func TestPidProportional(t *testing.T) {
	pid := NewPid(10.0, 0, 0, 0.2)

	u := pid.Compute(1.0, 0.01)
	if u != 10.0 {
		t.Errorf("expected pure P output 10.0, got %f", u)
	}
}

func TestPidIntegralClamp(t *testing.T) {
	pid := NewPid(0, 1.0, 0, 0.2)

	for i := 0; i < 1000; i++ {
		pid.Compute(1.0, 0.1)
		if math.Abs(pid.Integral()) > 0.2 {
			t.Fatalf("integral %f escaped clamp after step %d", pid.Integral(), i)
		}
	}

	u := pid.Compute(1.0, 0.1)
	if u != 0.2 {
		t.Errorf("expected saturated integral output 0.2, got %f", u)
	}
}

func TestPidIntegralClampNegative(t *testing.T) {
	pid := NewPid(0, 1.0, 0, 0.2)

	for i := 0; i < 1000; i++ {
		pid.Compute(-1.0, 0.1)
	}
	if pid.Integral() != -0.2 {
		t.Errorf("expected integral clamped at -0.2, got %f", pid.Integral())
	}
}

func TestPidZeroDt(t *testing.T) {
	pid := NewPid(1.0, 1.0, 100.0, 1.0)

	pid.Compute(0.5, 0.01)
	u := pid.Compute(1.0, 0)

	// With dt=0 the derivative term must vanish and the integral must not move.
	if u != 1.0*1.0+1.0*pid.Integral() {
		t.Errorf("expected P+I only with dt=0, got %f", u)
	}
}

func TestPidDerivative(t *testing.T) {
	pid := NewPid(0, 0, 2.0, 1.0)

	pid.Compute(1.0, 0.1)
	u := pid.Compute(2.0, 0.1)

	// derivative = (2.0 - 1.0) / 0.1 = 10.0, kd*derivative = 20.0
	if math.Abs(u-20.0) > 1e-9 {
		t.Errorf("expected derivative output 20.0, got %f", u)
	}
}

func TestPidReset(t *testing.T) {
	pid := NewPid(1.0, 1.0, 1.0, 5.0)
	pid.Compute(1.0, 1.0)
	pid.Reset()

	if pid.Integral() != 0 {
		t.Errorf("expected zero integral after reset, got %f", pid.Integral())
	}
	if u := pid.Compute(0, 1.0); u != 0 {
		t.Errorf("expected zero output for zero error after reset, got %f", u)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{0.5, -1, 1, 0.5},
		{-2, -1, 1, -1},
		{2, -1, 1, 1},
		{1, -1, 1, 1},
		{-1, -1, 1, -1},
	}

	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%f, %f, %f) = %f, want %f", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}
