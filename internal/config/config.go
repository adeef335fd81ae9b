// Package config defines the YAML scene description: the simulated model's
// joints, optional driver motion programs, and the mimic pairs attached to
// the model.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.001
	DefaultDuration = 5.0

	// PID defaults for a mimic pair that enables feedback without tuning.
	DefaultKp     = 10.0
	DefaultKi     = 0.1
	DefaultKd     = 0.0
	DefaultIClamp = 0.2
)

type Config struct {
	Name   string        `yaml:"name"`
	World  WorldConfig   `yaml:"world"`
	Joints []JointConfig `yaml:"joints"`
	Drives []DriveConfig `yaml:"drives"`
	Mimics []MimicConfig `yaml:"mimics"`
}

type WorldConfig struct {
	Dt         float64 `yaml:"dt"`
	Duration   float64 `yaml:"duration"`
	Integrator string  `yaml:"integrator"`
}

type JointConfig struct {
	Name        string  `yaml:"name"`
	Inertia     float64 `yaml:"inertia"`
	Damping     float64 `yaml:"damping"`
	EffortLimit float64 `yaml:"effort_limit"`
	Position    float64 `yaml:"position"`
}

type DriveConfig struct {
	Joint     string  `yaml:"joint"`
	Type      string  `yaml:"type"` // sine, ramp, force
	Amplitude float64 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"`
	Phase     float64 `yaml:"phase"`
	Rate      float64 `yaml:"rate"`
	Force     float64 `yaml:"force"`
}

type MimicConfig struct {
	Driver    string     `yaml:"driver"`
	Follower  string     `yaml:"follower"`
	Scale     float64    `yaml:"scale"`
	Offset    float64    `yaml:"offset"`
	Deadband  float64    `yaml:"deadband"`
	MaxEffort float64    `yaml:"max_effort"`
	Pid       *PidConfig `yaml:"pid"`
}

// UnmarshalYAML applies the scale default of 1.0 before decoding, so an
// omitted scale tracks the driver one-to-one while an explicit zero is kept.
func (m *MimicConfig) UnmarshalYAML(value *yaml.Node) error {
	type raw MimicConfig
	r := raw{Scale: 1.0}
	if err := value.Decode(&r); err != nil {
		return err
	}
	*m = MimicConfig(r)
	return nil
}

type PidConfig struct {
	Kp     float64 `yaml:"kp"`
	Ki     float64 `yaml:"ki"`
	Kd     float64 `yaml:"kd"`
	IClamp float64 `yaml:"i_clamp"`
}

// UnmarshalYAML fills in the stock gains so `pid: {}` enables feedback with
// usable defaults.
func (p *PidConfig) UnmarshalYAML(value *yaml.Node) error {
	type raw PidConfig
	r := raw{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd, IClamp: DefaultIClamp}
	if err := value.Decode(&r); err != nil {
		return err
	}
	*p = PidConfig(r)
	return nil
}

// UnmarshalYAML defaults inertia to 1.0 so joint dynamics stay well defined
// when the scene omits it.
func (j *JointConfig) UnmarshalYAML(value *yaml.Node) error {
	type raw JointConfig
	r := raw{Inertia: 1.0}
	if err := value.Decode(&r); err != nil {
		return err
	}
	*j = JointConfig(r)
	return nil
}

// Default returns a two-finger gripper scene: a sine-driven drive joint
// with one direct-mode and one feedback-mode follower.
func Default() *Config {
	return &Config{
		Name: "gripper",
		World: WorldConfig{
			Dt:         DefaultDt,
			Duration:   DefaultDuration,
			Integrator: "rk4",
		},
		Joints: []JointConfig{
			{Name: "drive_joint", Inertia: 1.0, Damping: 0.5, EffortLimit: 20.0},
			{Name: "left_finger", Inertia: 0.02, Damping: 0.8, EffortLimit: 10.0},
			{Name: "right_finger", Inertia: 0.02, Damping: 0.8, EffortLimit: 10.0},
		},
		Drives: []DriveConfig{
			{Joint: "drive_joint", Type: "sine", Amplitude: 0.6, Frequency: 0.5},
		},
		Mimics: []MimicConfig{
			{Driver: "drive_joint", Follower: "left_finger", Scale: 1.0},
			{
				Driver: "drive_joint", Follower: "right_finger", Scale: -1.0,
				MaxEffort: 8.0,
				Pid:       &PidConfig{Kp: 40.0, Ki: 1.0, Kd: 0.2, IClamp: DefaultIClamp},
			},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		World: WorldConfig{
			Dt:         DefaultDt,
			Duration:   DefaultDuration,
			Integrator: "rk4",
		},
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone deep-copies the config via a YAML round trip, so tuning runs can
// mutate candidates independently.
func (c *Config) Clone() (*Config, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, err
	}
	var out Config
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate checks the world-level fields. Per-pair mimic validation happens
// at resolution time so failures disable only the offending pair.
func (c *Config) Validate() error {
	if c.World.Dt <= 0 {
		return fmt.Errorf("world.dt must be positive, got %f", c.World.Dt)
	}
	if c.World.Duration <= 0 {
		return fmt.Errorf("world.duration must be positive, got %f", c.World.Duration)
	}
	switch c.World.Integrator {
	case "euler", "rk4":
	default:
		return fmt.Errorf("unknown integrator: %s", c.World.Integrator)
	}
	if len(c.Joints) == 0 {
		return fmt.Errorf("scene defines no joints")
	}
	for _, d := range c.Drives {
		switch d.Type {
		case "sine", "ramp", "force":
		default:
			return fmt.Errorf("unknown drive type: %s", d.Type)
		}
	}
	return nil
}
