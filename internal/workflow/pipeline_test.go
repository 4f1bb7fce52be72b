package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeChatServer records every chat-completions request and answers each with
// a canned, per-call response.
type fakeChatServer struct {
	mu       sync.Mutex
	requests []chatRequest
	auths    []string
}

func (f *fakeChatServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.requests = append(f.requests, req)
		f.auths = append(f.auths, r.Header.Get("Authorization"))
		n := len(f.requests)
		f.mu.Unlock()

		resp := fmt.Sprintf(`{"choices":[{"message":{"role":"assistant","content":"output %d"}}]}`, n)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, resp)
	}
}

// snapshot returns the recorded requests and auth headers under the lock.
func (f *fakeChatServer) snapshot() ([]chatRequest, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reqs := make([]chatRequest, len(f.requests))
	copy(reqs, f.requests)
	auths := make([]string, len(f.auths))
	copy(auths, f.auths)
	return reqs, auths
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testManifest(t *testing.T) *Manifest {
	t.Helper()
	m, err := DefaultManifest()
	if err != nil {
		t.Fatalf("DefaultManifest: %v", err)
	}
	return m
}

func TestPipelineRunsTasksSequentially(t *testing.T) {
	fake := &fakeChatServer{}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()

	m := testManifest(t)
	p := NewPipeline(m, NewChatClient(ts.URL, "test-key", 5*time.Second), testLogger())

	res, err := p.Run(context.Background(), json.RawMessage(`{"topic":"SQL"}`))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	requests, auths := fake.snapshot()
	if len(requests) != len(m.Tasks) {
		t.Fatalf("request count = %d, want %d", len(requests), len(m.Tasks))
	}

	// Each request must use the model of the agent bound to that task.
	for i, task := range m.Tasks {
		want := m.Agents[task.Agent].Model
		if requests[i].Model != want {
			t.Errorf("request[%d].Model = %q, want %q", i, requests[i].Model, want)
		}
	}

	// The final task's output becomes the result.
	if res.Raw != fmt.Sprintf("output %d", len(m.Tasks)) {
		t.Errorf("Raw = %q, want output of the final task", res.Raw)
	}
	if res.TaskName != "final_output_assembly" {
		t.Errorf("TaskName = %q, want %q", res.TaskName, "final_output_assembly")
	}

	for _, auth := range auths {
		if auth != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer key", auth)
		}
	}
}

func TestPipelineThreadsContext(t *testing.T) {
	fake := &fakeChatServer{}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()

	m := testManifest(t)
	p := NewPipeline(m, NewChatClient(ts.URL, "k", 5*time.Second), testLogger())

	if _, err := p.Run(context.Background(), json.RawMessage(`{"topic":"Go"}`)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	requests, _ := fake.snapshot()

	// First task's user prompt carries the inputs but no prior context.
	first := requests[0].Messages[1].Content
	if !strings.Contains(first, `{"topic":"Go"}`) {
		t.Error("first prompt does not contain the submission inputs")
	}
	if strings.Contains(first, "Context from previous tasks") {
		t.Error("first prompt unexpectedly carries prior task context")
	}

	// Second task's user prompt must include the first task's output.
	second := requests[1].Messages[1].Content
	if !strings.Contains(second, "output 1") {
		t.Error("second prompt does not include the first task's output")
	}
	if !strings.Contains(second, "[generate_expected_answers]") {
		t.Error("second prompt does not label the prior task's output")
	}

	// System messages carry the agent persona.
	system := requests[0].Messages[0].Content
	if !strings.Contains(system, "Reference Answer Generator") {
		t.Errorf("system prompt = %q, missing agent role", system)
	}
}

func TestPipelineSurfacesAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"model overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	p := NewPipeline(testManifest(t), NewChatClient(ts.URL, "k", 5*time.Second), testLogger())

	_, err := p.Run(context.Background(), json.RawMessage(`{}`))
	if err == nil {
		t.Fatal("Run succeeded against a failing endpoint")
	}
	if !strings.Contains(err.Error(), "generate_expected_answers") {
		t.Errorf("err = %v, want failing task name in message", err)
	}
	if !strings.Contains(err.Error(), "model overloaded") {
		t.Errorf("err = %v, want endpoint detail in message", err)
	}
}

func TestPipelineSurfacesEmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[]}`)
	}))
	defer ts.Close()

	p := NewPipeline(testManifest(t), NewChatClient(ts.URL, "k", 5*time.Second), testLogger())

	_, err := p.Run(context.Background(), json.RawMessage(`{}`))
	if err == nil {
		t.Fatal("Run succeeded on a response with no choices")
	}
	if !strings.Contains(err.Error(), "no choices") {
		t.Errorf("err = %v, want no-choices error", err)
	}
}

func TestPipelineStopsAtFirstFailure(t *testing.T) {
	var calls int
	var mu sync.Mutex
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n >= 2 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`)
	}))
	defer ts.Close()

	p := NewPipeline(testManifest(t), NewChatClient(ts.URL, "k", 5*time.Second), testLogger())

	_, err := p.Run(context.Background(), json.RawMessage(`{}`))
	if err == nil {
		t.Fatal("Run succeeded despite a mid-pipeline failure")
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Errorf("endpoint calls = %d, want pipeline to stop at the failing task", calls)
	}
}
