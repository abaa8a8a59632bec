package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sophon/internal/canon"
)

// TraceSnapshot captures the trace and final graph size of a scenario.
// It serializes to canonical JSON for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
	Nodes        int          `json:"nodes"`
	Edges        int          `json:"edges"`
}

// NewTraceSnapshot builds the snapshot of a finished scenario.
func NewTraceSnapshot(name string, result *Result) TraceSnapshot {
	s := TraceSnapshot{ScenarioName: name, Trace: result.Trace}
	if result.Graph != nil {
		s.Nodes, s.Edges = result.Graph.NodeCount(), result.Graph.EdgeCount()
	}
	return s
}

// toCanonicalMap converts the snapshot to the value shapes canon.Marshal
// accepts: ids become int64, optional fields are omitted when empty.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		inputs := make([]int64, len(event.Inputs))
		for j, id := range event.Inputs {
			inputs[j] = int64(id)
		}
		eventMap := map[string]any{
			"step":          event.Step,
			"index":         event.Index,
			"op":            event.Op,
			"inputs":        inputs,
			"invariants_ok": event.InvariantsOK,
			"new_nodes":     event.NewNodes,
			"new_edges":     event.NewEdges,
		}
		if len(event.Outputs) > 0 {
			outputs := make(map[string]any, len(event.Outputs))
			for role, id := range event.Outputs {
				outputs[role] = int64(id)
			}
			eventMap["outputs"] = outputs
		}
		if event.Error != "" {
			eventMap["error"] = event.Error
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
		"nodes":         s.Nodes,
		"edges":         s.Edges,
	}
}

// MarshalCanonical serializes the snapshot as canonical JSON.
func (s *TraceSnapshot) MarshalCanonical() ([]byte, error) {
	return canon.Marshal(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario cannot run. A trace mismatch fails the
// test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot := NewTraceSnapshot(name, result)
	traceJSON, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, traceJSON)
	return nil
}
