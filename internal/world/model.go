package world

import "fmt"

// Model is a named collection of joints.
type Model struct {
	name   string
	joints []*Joint
	byName map[string]*Joint
}

// NewModel creates an empty model.
func NewModel(name string) *Model {
	return &Model{
		name:   name,
		byName: make(map[string]*Joint),
	}
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// AddJoint adds a joint to the model. Joint names must be unique.
func (m *Model) AddJoint(j *Joint) error {
	if j.Name() == "" {
		return fmt.Errorf("joint name must not be empty")
	}
	if _, ok := m.byName[j.Name()]; ok {
		return fmt.Errorf("duplicate joint name: %s", j.Name())
	}
	m.joints = append(m.joints, j)
	m.byName[j.Name()] = j
	return nil
}

// Joint looks up a joint by name.
func (m *Model) Joint(name string) (*Joint, bool) {
	j, ok := m.byName[name]
	return j, ok
}

// Joints returns the model's joints in insertion order.
func (m *Model) Joints() []*Joint {
	return m.joints
}
