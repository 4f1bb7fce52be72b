package workflow

import (
	"strings"
	"testing"
)

func TestDefaultManifest(t *testing.T) {
	m, err := DefaultManifest()
	if err != nil {
		t.Fatalf("DefaultManifest: %v", err)
	}

	wantTasks := []string{
		"generate_expected_answers",
		"holistic_interview_evaluation",
		"synthesis_and_development_plan",
		"final_output_assembly",
	}
	if len(m.Tasks) != len(wantTasks) {
		t.Fatalf("task count = %d, want %d", len(m.Tasks), len(wantTasks))
	}
	for i, name := range wantTasks {
		if m.Tasks[i].Name != name {
			t.Errorf("task[%d] = %q, want %q", i, m.Tasks[i].Name, name)
		}
	}

	for _, task := range m.Tasks {
		if _, ok := m.Agents[task.Agent]; !ok {
			t.Errorf("task %q bound to undeclared agent %q", task.Name, task.Agent)
		}
	}

	if !strings.Contains(m.Tasks[0].Description, "{{.Inputs}}") {
		t.Error("first task description does not interpolate submission inputs")
	}
}

func TestLoadManifestUnknownAgent(t *testing.T) {
	agents := []byte(`
agents:
  grader:
    role: Grader
    model: test-model
`)
	tasks := []byte(`
tasks:
  - name: grade
    agent: missing
    description: grade it
`)

	_, err := LoadManifest(agents, tasks)
	if err == nil {
		t.Fatal("LoadManifest accepted a task bound to an unknown agent")
	}
	if !strings.Contains(err.Error(), "unknown agent") {
		t.Errorf("err = %v, want unknown agent error", err)
	}
}

func TestLoadManifestNoTasks(t *testing.T) {
	agents := []byte(`
agents:
  grader:
    role: Grader
    model: test-model
`)
	_, err := LoadManifest(agents, []byte("tasks: []"))
	if err == nil {
		t.Fatal("LoadManifest accepted a manifest with no tasks")
	}
}

func TestLoadManifestEmptyDescription(t *testing.T) {
	agents := []byte(`
agents:
  grader:
    role: Grader
    model: test-model
`)
	tasks := []byte(`
tasks:
  - name: grade
    agent: grader
    description: ""
`)
	_, err := LoadManifest(agents, tasks)
	if err == nil {
		t.Fatal("LoadManifest accepted a task with an empty description")
	}
}

func TestLoadManifestDuplicateTaskNames(t *testing.T) {
	agents := []byte(`
agents:
  grader:
    role: Grader
    model: test-model
`)
	tasks := []byte(`
tasks:
  - name: grade
    agent: grader
    description: first
  - name: grade
    agent: grader
    description: second
`)
	_, err := LoadManifest(agents, tasks)
	if err == nil {
		t.Fatal("LoadManifest accepted duplicate task names")
	}
}

func TestLoadManifestAgentWithoutModel(t *testing.T) {
	agents := []byte(`
agents:
  grader:
    role: Grader
`)
	tasks := []byte(`
tasks:
  - name: grade
    agent: grader
    description: grade it
`)
	_, err := LoadManifest(agents, tasks)
	if err == nil {
		t.Fatal("LoadManifest accepted an agent with no model")
	}
}
