// Package taskmode holds the catalog of chat task modes. Modes are defined
// in an embedded YAML file so the list and its instructions can evolve
// without touching code.
package taskmode

import (
	"fmt"

	_ "embed"

	"gopkg.in/yaml.v3"

	"ckryptbit/internal/domain/models"
)

//go:embed config/modes.yaml
var modesFile []byte

// Mode describes one selectable task mode: its id, the label shown to the
// user, and the instruction injected into the prompt as a TASK_MODE prefix.
type Mode struct {
	ID          models.TaskMode `yaml:"id" json:"id"`
	Label       string          `yaml:"label" json:"label"`
	Description string          `yaml:"description" json:"description"`
	Instruction string          `yaml:"instruction" json:"-"`
}

// Registry is an immutable, ordered catalog loaded once at startup.
type Registry struct {
	modes []Mode
	byID  map[models.TaskMode]*Mode
}

// NewRegistry loads the embedded mode catalog.
func NewRegistry() (*Registry, error) {
	var doc struct {
		Modes []Mode `yaml:"modes"`
	}
	if err := yaml.Unmarshal(modesFile, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task modes: %w", err)
	}
	if len(doc.Modes) == 0 {
		return nil, fmt.Errorf("task mode catalog is empty")
	}

	r := &Registry{
		modes: doc.Modes,
		byID:  make(map[models.TaskMode]*Mode, len(doc.Modes)),
	}
	for i := range r.modes {
		m := &r.modes[i]
		if _, dup := r.byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate task mode id %q", m.ID)
		}
		r.byID[m.ID] = m
	}
	if _, ok := r.byID[models.TaskModeDefault]; !ok {
		return nil, fmt.Errorf("task mode catalog must define %q", models.TaskModeDefault)
	}
	return r, nil
}

// Get returns the mode for id, or false when the id is unknown.
func (r *Registry) Get(id models.TaskMode) (Mode, bool) {
	m, ok := r.byID[id]
	if !ok {
		return Mode{}, false
	}
	return *m, true
}

// List returns all modes in catalog order.
func (r *Registry) List() []Mode {
	out := make([]Mode, len(r.modes))
	copy(out, r.modes)
	return out
}
