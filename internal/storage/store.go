// Package storage persists simulation runs: one directory per run holding
// metadata (JSON) and the recorded joint positions (CSV).
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/jointsim/internal/scene"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string                        `json:"id"`
	Scene      string                        `json:"scene"`
	Timestamp  time.Time                     `json:"timestamp"`
	Dt         float64                       `json:"dt"`
	Duration   float64                       `json:"duration"`
	Integrator string                        `json:"integrator"`
	Steps      int                           `json:"steps"`
	Metrics    map[string]map[string]float64 `json:"metrics"`
}

// Save writes one run directory and returns its run ID.
func (s *Store) Save(sceneName string, dt, duration float64, integrator string, result *scene.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", sceneName, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scene:      sceneName,
		Timestamp:  time.Now(),
		Dt:         dt,
		Duration:   duration,
		Integrator: integrator,
		Steps:      result.Steps,
		Metrics:    result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := s.writePositions(runDir, result); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) writePositions(runDir string, result *scene.Result) error {
	csvFile, err := os.Create(filepath.Join(runDir, "positions.csv"))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	joints := make([]string, 0, len(result.Positions))
	for name := range result.Positions {
		joints = append(joints, name)
	}
	sort.Strings(joints)

	header := append([]string{"t"}, joints...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i, t := range result.Times {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatFloat(t, 'f', -1, 64))
		for _, name := range joints {
			row = append(row, strconv.FormatFloat(result.Positions[name][i], 'f', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

// Load reads a run's metadata by ID.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadPositions reads a run's recorded traces: times plus one series per
// joint, keyed by joint name.
func (s *Store) LoadPositions(runID string) ([]float64, map[string][]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "positions.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 1 {
		return nil, nil, fmt.Errorf("empty positions file for run %s", runID)
	}

	header := records[0]
	times := make([]float64, 0, len(records)-1)
	positions := make(map[string][]float64, len(header)-1)

	for _, row := range records[1:] {
		t, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, nil, err
		}
		times = append(times, t)
		for i, name := range header[1:] {
			v, err := strconv.ParseFloat(row[i+1], 64)
			if err != nil {
				return nil, nil, err
			}
			positions[name] = append(positions[name], v)
		}
	}

	return times, positions, nil
}

// List returns the metadata of every stored run, newest first.
func (s *Store) List() ([]*RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	runs := make([]*RunMetadata, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})

	return runs, nil
}
