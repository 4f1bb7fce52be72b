package workflow

import (
	"embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed agents.yaml tasks.yaml
var defaultManifests embed.FS

// Agent describes one pipeline persona: the system prompt material and the
// model settings used for every task assigned to it.
type Agent struct {
	Role        string  `yaml:"role"`
	Goal        string  `yaml:"goal"`
	Backstory   string  `yaml:"backstory"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// Task is one sequential step of the pipeline. Description is a Go
// text/template body; the submission inputs are available as {{.Inputs}}.
type Task struct {
	Name           string `yaml:"name"`
	Agent          string `yaml:"agent"`
	Description    string `yaml:"description"`
	ExpectedOutput string `yaml:"expected_output"`
}

// Manifest binds a set of agents to an ordered task list.
type Manifest struct {
	Agents map[string]Agent `yaml:"agents"`
	Tasks  []Task           `yaml:"tasks"`
}

// DefaultManifest parses the embedded interview-evaluation agent and task
// definitions.
func DefaultManifest() (*Manifest, error) {
	agents, err := defaultManifests.ReadFile("agents.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded agents.yaml: %w", err)
	}
	tasks, err := defaultManifests.ReadFile("tasks.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded tasks.yaml: %w", err)
	}
	return LoadManifest(agents, tasks)
}

// LoadManifest parses agent and task definitions from YAML and validates the
// resulting manifest.
func LoadManifest(agentsYAML, tasksYAML []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(agentsYAML, &m); err != nil {
		return nil, fmt.Errorf("parse agents: %w", err)
	}

	var t struct {
		Tasks []Task `yaml:"tasks"`
	}
	if err := yaml.Unmarshal(tasksYAML, &t); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	m.Tasks = t.Tasks

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that the manifest declares a runnable pipeline: at least
// one task, every task bound to a declared agent, no duplicate task names,
// and no empty prompts or models.
func (m *Manifest) Validate() error {
	if len(m.Tasks) == 0 {
		return errors.New("manifest declares no tasks")
	}

	for name, a := range m.Agents {
		if a.Role == "" {
			return fmt.Errorf("agent %q has no role", name)
		}
		if a.Model == "" {
			return fmt.Errorf("agent %q has no model", name)
		}
	}

	seen := make(map[string]bool, len(m.Tasks))
	for _, t := range m.Tasks {
		if t.Name == "" {
			return errors.New("task with empty name")
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate task name %q", t.Name)
		}
		seen[t.Name] = true
		if t.Description == "" {
			return fmt.Errorf("task %q has no description", t.Name)
		}
		if _, ok := m.Agents[t.Agent]; !ok {
			return fmt.Errorf("task %q references unknown agent %q", t.Name, t.Agent)
		}
	}
	return nil
}
