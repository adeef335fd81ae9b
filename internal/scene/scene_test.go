package scene

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/jointsim/internal/config"
	"github.com/san-kum/jointsim/internal/mimic"
)

func TestBuildDefaultScene(t *testing.T) {
	s, err := Build(config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Pairs) != 2 {
		t.Fatalf("expected 2 attached pairs, got %d", len(s.Pairs))
	}
	if s.Pairs[0].Controller.Feedback() {
		t.Error("left finger pair should run in direct mode")
	}
	if !s.Pairs[1].Controller.Feedback() {
		t.Error("right finger pair should run in feedback mode")
	}
}

func TestBuildSkipsUnresolvablePair(t *testing.T) {
	cfg := config.Default()
	cfg.Mimics[0].Follower = "missing_finger"

	s, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Pairs) != 1 {
		t.Fatalf("expected the bad pair to be skipped, got %d pairs", len(s.Pairs))
	}
	if s.Pairs[0].Name != "drive_joint->right_finger" {
		t.Errorf("unexpected surviving pair: %s", s.Pairs[0].Name)
	}
}

func TestBuildRejectsUnknownDriveJoint(t *testing.T) {
	cfg := config.Default()
	cfg.Drives[0].Joint = "missing"

	if _, err := Build(cfg); err == nil {
		t.Error("expected error for drive referencing unknown joint")
	}
}

func TestAttachPairNilWorld(t *testing.T) {
	_, err := AttachPair(nil, config.MimicConfig{Driver: "a", Follower: "b", Scale: 1.0})
	if !errors.Is(err, mimic.ErrHostUnavailable) {
		t.Errorf("expected ErrHostUnavailable, got %v", err)
	}
}

func TestRunDirectModeTracks(t *testing.T) {
	cfg := &config.Config{
		Name: "direct",
		World: config.WorldConfig{
			Dt: 0.001, Duration: 2.0, Integrator: "rk4",
		},
		Joints: []config.JointConfig{
			{Name: "drive", Inertia: 1.0, EffortLimit: 20.0},
			{Name: "follow", Inertia: 0.02, Damping: 0.8, EffortLimit: 10.0},
		},
		Drives: []config.DriveConfig{
			{Joint: "drive", Type: "sine", Amplitude: 0.5, Frequency: 0.5},
		},
		Mimics: []config.MimicConfig{
			{Driver: "drive", Follower: "follow", Scale: 2.0, Offset: 0.1},
		},
	}

	s, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.Steps != 2000 {
		t.Errorf("expected 2000 steps, got %d", result.Steps)
	}

	// Direct mode pins the follower to driver*2 + 0.1 each step.
	drive := result.Positions["drive"]
	follow := result.Positions["follow"]
	last := len(drive) - 1
	want := drive[last]*2.0 + 0.1
	if math.Abs(follow[last]-want) > 1e-6 {
		t.Errorf("follower should sit at the linear target: got %f, want %f", follow[last], want)
	}

	rms := result.Metrics["drive->follow"]["tracking_rms"]
	if rms > 0.01 {
		t.Errorf("direct mode rms error should be tiny, got %f", rms)
	}
}

func TestRunFeedbackModeConverges(t *testing.T) {
	cfg := &config.Config{
		Name: "feedback",
		World: config.WorldConfig{
			Dt: 0.001, Duration: 3.0, Integrator: "rk4",
		},
		Joints: []config.JointConfig{
			{Name: "drive", Inertia: 1.0, EffortLimit: 20.0, Position: 0.4},
			{Name: "follow", Inertia: 0.01, Damping: 1.0, EffortLimit: 10.0},
		},
		Mimics: []config.MimicConfig{
			{
				Driver: "drive", Follower: "follow", Scale: 1.0, MaxEffort: 8.0,
				Pid: &config.PidConfig{Kp: 50.0, Ki: 5.0, Kd: 0.5, IClamp: 0.5},
			},
		},
	}

	s, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	follow := result.Positions["follow"]
	final := follow[len(follow)-1]
	if math.Abs(final-0.4) > 0.05 {
		t.Errorf("feedback pair should converge near 0.4, got %f", final)
	}

	// The force loop must never have exceeded its effort bound.
	effort := result.Metrics["drive->follow"]["control_effort"]
	if effort > 8.0 {
		t.Errorf("mean commanded effort %f exceeds the bound", effort)
	}
}

func TestRunCancellation(t *testing.T) {
	s, err := Build(config.Default())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
