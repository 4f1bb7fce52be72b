package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
)

// Compile-time interface satisfaction check.
var _ Runner = (*Pipeline)(nil)

// Pipeline runs the manifest's tasks sequentially, feeding every completed
// task's output into the context of the next. The final task's output becomes
// the job result.
type Pipeline struct {
	manifest *Manifest
	client   *ChatClient
	logger   *slog.Logger
}

// NewPipeline creates a pipeline over a validated manifest.
func NewPipeline(m *Manifest, client *ChatClient, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		manifest: m,
		client:   client,
		logger:   logger,
	}
}

// templateData is the data available to task description templates.
type templateData struct {
	// Inputs is the raw JSON of the submission payload.
	Inputs string
}

// Run executes every task in order. Any template, transport, or API error
// aborts the pipeline; there is a single invocation attempt per task.
func (p *Pipeline) Run(ctx context.Context, inputs json.RawMessage) (Result, error) {
	data := templateData{Inputs: string(inputs)}

	var priorOutputs []string
	var last Result
	for _, t := range p.manifest.Tasks {
		agent := p.manifest.Agents[t.Agent]

		user, err := buildUserPrompt(t, data, priorOutputs)
		if err != nil {
			return Result{}, fmt.Errorf("task %s: %w", t.Name, err)
		}

		out, err := p.client.Complete(ctx, agent.Model, agent.Temperature, systemPrompt(agent), user)
		if err != nil {
			return Result{}, fmt.Errorf("task %s: %w", t.Name, err)
		}

		p.logger.Debug("task completed", "task", t.Name, "agent", t.Agent, "output_len", len(out))

		priorOutputs = append(priorOutputs, fmt.Sprintf("[%s]\n%s", t.Name, out))
		last = Result{Raw: out, TaskName: t.Name}
	}

	return last, nil
}

// systemPrompt flattens an agent's persona into a system message.
func systemPrompt(a Agent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.", strings.TrimSpace(a.Role))
	if a.Backstory != "" {
		fmt.Fprintf(&b, " %s", strings.TrimSpace(a.Backstory))
	}
	if a.Goal != "" {
		fmt.Fprintf(&b, "\n\nYour goal: %s", strings.TrimSpace(a.Goal))
	}
	return b.String()
}

// buildUserPrompt renders the task description template and appends the
// expected-output hint and the outputs of all prior tasks.
func buildUserPrompt(t Task, data templateData, priorOutputs []string) (string, error) {
	tmpl, err := template.New(t.Name).Option("missingkey=error").Parse(t.Description)
	if err != nil {
		return "", fmt.Errorf("parse description template: %w", err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render description template: %w", err)
	}

	if t.ExpectedOutput != "" {
		fmt.Fprintf(&b, "\n\nExpected output:\n%s", strings.TrimSpace(t.ExpectedOutput))
	}
	if len(priorOutputs) > 0 {
		fmt.Fprintf(&b, "\n\nContext from previous tasks:\n%s", strings.Join(priorOutputs, "\n\n"))
	}
	return b.String(), nil
}
