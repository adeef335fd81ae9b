package storage

import (
	"testing"

	"github.com/san-kum/jointsim/internal/scene"
)

func sampleResult() *scene.Result {
	return &scene.Result{
		Times: []float64{0.1, 0.2, 0.3},
		Positions: map[string][]float64{
			"drive":  {0.0, 0.1, 0.2},
			"follow": {0.0, 0.05, 0.15},
		},
		Metrics: map[string]map[string]float64{
			"drive->follow": {"tracking_rms": 0.04},
		},
		Steps: 3,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	runID, err := store.Save("gripper", 0.1, 0.3, "rk4", sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	meta, err := store.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Scene != "gripper" || meta.Steps != 3 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Metrics["drive->follow"]["tracking_rms"] != 0.04 {
		t.Error("metrics should survive the round trip")
	}

	times, positions, err := store.LoadPositions(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(times) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(times))
	}
	if positions["follow"][2] != 0.15 {
		t.Errorf("expected follow[2]=0.15, got %f", positions["follow"][2])
	}
}

func TestList(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Save("a", 0.1, 0.3, "euler", sampleResult()); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save("b", 0.1, 0.3, "rk4", sampleResult()); err != nil {
		t.Fatal(err)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
}

func TestListMissingDir(t *testing.T) {
	store := New(t.TempDir() + "/nope")
	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if runs != nil {
		t.Error("expected no runs for missing directory")
	}
}
