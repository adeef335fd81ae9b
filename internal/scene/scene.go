// Package scene assembles a runnable simulation from a scene config: it
// builds the model and world, attaches driver motion programs, resolves the
// mimic pairs, and runs the whole thing while recording traces and metrics.
package scene

import (
	"context"
	"fmt"

	"github.com/san-kum/jointsim/internal/config"
	"github.com/san-kum/jointsim/internal/integrators"
	"github.com/san-kum/jointsim/internal/log"
	"github.com/san-kum/jointsim/internal/metrics"
	"github.com/san-kum/jointsim/internal/mimic"
	"github.com/san-kum/jointsim/internal/world"
)

// Pair is one attached driver/follower controller plus its metrics.
type Pair struct {
	Name       string
	Controller *mimic.Controller
	Metrics    []metrics.Metric
}

// Scene is a built simulation ready to run.
type Scene struct {
	Config *config.Config
	World  *world.World
	Pairs  []*Pair
}

// Result holds the recorded traces and metric values of one run.
type Result struct {
	Times     []float64
	Positions map[string][]float64
	Metrics   map[string]map[string]float64 // pair -> metric -> value
	Steps     int
}

// modelResolver adapts world.Model to the mimic.Model capability surface.
type modelResolver struct {
	m *world.Model
}

func (r modelResolver) JointByName(name string) mimic.Joint {
	if j, ok := r.m.Joint(name); ok {
		return j
	}
	return nil
}

// AttachPair resolves one mimic block against the world and, on success,
// registers the controller's tick callback. A resolution failure is
// terminal for the pair: nothing is registered and the pair never commands
// a joint.
func AttachPair(w *world.World, mc config.MimicConfig) (*Pair, error) {
	if w == nil {
		return nil, mimic.ErrHostUnavailable
	}
	model := w.Model()
	if model == nil {
		return nil, mimic.ErrModelUnavailable
	}

	params := mimic.Params{
		Driver:    mc.Driver,
		Follower:  mc.Follower,
		Scale:     mc.Scale,
		Offset:    mc.Offset,
		Deadband:  mc.Deadband,
		MaxEffort: mc.MaxEffort,
	}
	if mc.Pid != nil {
		params.Gains = &mimic.Gains{
			Kp:     mc.Pid.Kp,
			Ki:     mc.Pid.Ki,
			Kd:     mc.Pid.Kd,
			IClamp: mc.Pid.IClamp,
		}
	}

	c, err := mimic.Resolve(modelResolver{model}, params)
	if err != nil {
		return nil, err
	}

	w.OnStep(func(t, dt float64) {
		c.Tick(dt)
	})

	return &Pair{
		Name:       fmt.Sprintf("%s->%s", mc.Driver, mc.Follower),
		Controller: c,
		Metrics: []metrics.Metric{
			metrics.NewTrackingRMS(),
			metrics.NewTrackingMax(),
			metrics.NewControlEffort(),
		},
	}, nil
}

// Build constructs the world from the config, attaches drives, and resolves
// every mimic pair. A pair that fails to resolve is logged and skipped; the
// rest of the scene still runs.
func Build(cfg *config.Config) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	model := world.NewModel(cfg.Name)
	for _, jc := range cfg.Joints {
		j := world.NewJoint(world.JointSpec{
			Name:        jc.Name,
			Inertia:     jc.Inertia,
			Damping:     jc.Damping,
			EffortLimit: jc.EffortLimit,
			Position:    jc.Position,
		})
		if err := model.AddJoint(j); err != nil {
			return nil, err
		}
	}

	integ := integrators.New(cfg.World.Integrator)
	w, err := world.New(model, integ, cfg.World.Dt)
	if err != nil {
		return nil, err
	}

	for _, dc := range cfg.Drives {
		if err := attachDrive(w, model, dc); err != nil {
			return nil, err
		}
	}

	s := &Scene{Config: cfg, World: w}
	for _, mc := range cfg.Mimics {
		pair, err := AttachPair(w, mc)
		if err != nil {
			log.Error("mimic pair disabled",
				"driver", mc.Driver,
				"follower", mc.Follower,
				"error", err)
			continue
		}
		log.Info("mimic pair attached",
			"driver", mc.Driver,
			"follower", mc.Follower,
			"scale", pair.Controller.Scale(),
			"offset", pair.Controller.Offset(),
			"deadband", pair.Controller.Deadband(),
			"max_effort", pair.Controller.MaxEffort(),
			"feedback", pair.Controller.Feedback())
		s.Pairs = append(s.Pairs, pair)
	}

	return s, nil
}

func attachDrive(w *world.World, model *world.Model, dc config.DriveConfig) error {
	j, ok := model.Joint(dc.Joint)
	if !ok {
		return fmt.Errorf("drive references unknown joint: %s", dc.Joint)
	}

	switch dc.Type {
	case "sine":
		d := &world.SineDrive{Joint: j, Amplitude: dc.Amplitude, Frequency: dc.Frequency, Phase: dc.Phase}
		w.OnStep(d.OnStep)
	case "ramp":
		d := &world.RampDrive{Joint: j, Rate: dc.Rate}
		w.OnStep(d.OnStep)
	case "force":
		d := &world.ForceDrive{Joint: j, Force: dc.Force}
		w.OnStep(d.OnStep)
	default:
		return fmt.Errorf("unknown drive type: %s", dc.Type)
	}
	return nil
}

// Run executes the scene for its configured duration, recording every
// joint's position and feeding pair diagnostics into the metrics.
func (s *Scene) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		Positions: make(map[string][]float64),
		Metrics:   make(map[string]map[string]float64),
	}

	for _, p := range s.Pairs {
		for _, m := range p.Metrics {
			m.Reset()
		}
	}

	err := s.World.Run(ctx, s.Config.World.Duration, func(t float64) bool {
		result.Times = append(result.Times, t)
		for _, j := range s.World.Model().Joints() {
			result.Positions[j.Name()] = append(result.Positions[j.Name()], j.Position())
		}
		for _, p := range s.Pairs {
			d := p.Controller.Diagnostics()
			for _, m := range p.Metrics {
				m.Observe(d.Error, d.Command, d.Commanded)
			}
		}
		result.Steps++
		return true
	})
	if err != nil {
		return result, err
	}

	for _, p := range s.Pairs {
		vals := make(map[string]float64, len(p.Metrics))
		for _, m := range p.Metrics {
			vals[m.Name()] = m.Value()
		}
		result.Metrics[p.Name] = vals
	}

	return result, nil
}
