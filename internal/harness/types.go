package harness

import (
	"github.com/roach88/sophon/internal/engine"
	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
)

// TraceEvent is one attempted application, in the order the engine made
// them.
type TraceEvent struct {
	Step         int         `json:"step"`
	Index        int         `json:"index"` // position within the step
	Op           string      `json:"op"`
	Inputs       ops.Inputs  `json:"inputs"`
	Outputs      ops.Outputs `json:"outputs,omitempty"`
	InvariantsOK bool        `json:"invariants_ok"`
	NewNodes     int         `json:"new_nodes"`
	NewEdges     int         `json:"new_edges"`
	Error        string      `json:"error,omitempty"`
}

// succeeded reports whether the application applied with its invariants
// intact.
func (e TraceEvent) succeeded() bool { return e.Error == "" && e.InvariantsOK }

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace holds every attempted application in order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds one message per failed assertion.
	Errors []string `json:"errors,omitempty"`

	// Steps counts the steps that had candidates.
	Steps int `json:"steps"`

	// Graph is the final graph.
	Graph *hypergraph.Graph `json:"-"`

	// Summaries holds every step summary, for callers that need the
	// reward and energy detail the trace leaves out.
	Summaries []*engine.Summary `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// record appends a step summary and its applications to the trace.
func (r *Result) record(s *engine.Summary) {
	r.Steps++
	r.Summaries = append(r.Summaries, s)
	for i, a := range s.Attempts {
		r.Trace = append(r.Trace, TraceEvent{
			Step:         s.Step,
			Index:        i,
			Op:           a.Op,
			Inputs:       a.Inputs,
			Outputs:      a.Outputs,
			InvariantsOK: a.InvariantsOK,
			NewNodes:     a.NewNodes,
			NewEdges:     a.NewEdges,
			Error:        a.Error,
		})
	}
}
