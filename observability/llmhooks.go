package observability

import (
	"context"
	"sync"
	"time"
)

// RunListener is the lifecycle-hook capability exposed by the LLM invocation
// framework: start/end/error events for chains, tools and model calls, each
// carrying a correlation id. Wiring it is optional; without a listener the
// framework runs unobserved.
type RunListener interface {
	OnStart(ctx context.Context, runID, name string, inputs map[string]any)
	OnEnd(ctx context.Context, runID string, outputs map[string]any)
	OnError(ctx context.Context, runID string, err error)
}

// GraphRecorder implements RunListener by turning run events into graph-step
// operation records in the ambient buffer. Run start times are kept per
// correlation id so completions carry a duration.
type GraphRecorder struct {
	mu   sync.Mutex
	runs map[string]runState
}

type runState struct {
	name    string
	started time.Time
}

// NewGraphRecorder creates a recorder with no in-flight runs.
func NewGraphRecorder() *GraphRecorder {
	return &GraphRecorder{runs: make(map[string]runState)}
}

// OnStart remembers the run and records its inputs.
func (g *GraphRecorder) OnStart(ctx context.Context, runID, name string, inputs map[string]any) {
	g.mu.Lock()
	g.runs[runID] = runState{name: name, started: time.Now()}
	g.mu.Unlock()

	RecordGraphStep(ctx, name, inputs, nil)
}

// OnEnd records the run's completion with its elapsed duration.
func (g *GraphRecorder) OnEnd(ctx context.Context, runID string, outputs map[string]any) {
	name, dur := g.finish(runID)
	details := Sanitize(outputs)
	if details == nil {
		details = make(map[string]any, 2)
	}
	details["name"] = name
	details["status"] = "completed"
	appendRecord(ctx, OpGraphStep, details, dur)
}

// OnError records the run's failure. The error text flows through the shared
// sanitizer like any other detail value.
func (g *GraphRecorder) OnError(ctx context.Context, runID string, err error) {
	name, dur := g.finish(runID)
	details := map[string]any{
		"name":   name,
		"status": "failed",
	}
	if err != nil {
		details["error"] = truncate(err.Error(), maxDetailLen)
	}
	appendRecord(ctx, OpGraphStep, details, dur)
}

func (g *GraphRecorder) finish(runID string) (string, *float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	run, ok := g.runs[runID]
	if !ok {
		return "unknown", nil
	}
	delete(g.runs, runID)
	return run.name, durationSince(run.started)
}
