package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
)

func intp(n int) *int { return &n }

func sampleResult() *Result {
	g := hypergraph.New()
	g.AddNode(hypergraph.NodePoint, nil)
	g.AddNode(hypergraph.NodePoint, nil)
	g.AddNode(hypergraph.NodeProposition, nil)

	r := NewResult()
	r.Graph = g
	r.Trace = []TraceEvent{
		{Step: 1, Index: 0, Op: "A", Inputs: ops.Inputs{1}, InvariantsOK: true},
		{Step: 1, Index: 1, Op: "B", Inputs: ops.Inputs{2}, InvariantsOK: true},
		{Step: 2, Index: 0, Op: "A", Inputs: ops.Inputs{2}, InvariantsOK: false},
		{Step: 2, Index: 1, Op: "C", Inputs: ops.Inputs{1, 2}, Error: "boom"},
	}
	return r
}

func TestEvaluateAssertions(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{"applied_exact", Assertion{Type: AssertApplied, Op: "A", Count: intp(1)}, ""},
		{"applied_exact_counts_only_successes", Assertion{Type: AssertApplied, Op: "A", Count: intp(2)}, "expected 2, got 1"},
		{"applied_min", Assertion{Type: AssertApplied, Op: "B", Min: 1}, ""},
		{"applied_min_failed", Assertion{Type: AssertApplied, Op: "C", Min: 1}, "successful applications of C"},
		{"applied_zero", Assertion{Type: AssertApplied, Op: "D", Count: intp(0)}, ""},
		{"order", Assertion{Type: AssertAppliedOrder, Ops: []string{"A", "B", "A"}}, ""},
		{"order_mismatch", Assertion{Type: AssertAppliedOrder, Ops: []string{"B"}}, "application 0 differs"},
		{"order_too_long", Assertion{Type: AssertAppliedOrder, Ops: []string{"A", "B", "A", "C", "A"}}, "trace shorter"},
		{"invariants", Assertion{Type: AssertInvariantsHold}, "step 2 A(2); step 2 C(1,2)"},
		{"node_count_exact", Assertion{Type: AssertNodeCount, NodeType: "point", Count: intp(2)}, ""},
		{"node_count_min", Assertion{Type: AssertNodeCount, NodeType: "proposition", Min: 2}, "proposition nodes"},
		{"unknown", Assertion{Type: "bogus"}, "unknown assertion type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

func TestEvaluateAssertions_IndexesFailures(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertApplied, Op: "A", Min: 1},
		{Type: AssertInvariantsHold},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "assertion[1] invariants_hold")
}

func TestAssertNodeCount_NoGraph(t *testing.T) {
	r := NewResult()
	errs := EvaluateAssertions(r, []Assertion{{Type: AssertNodeCount, NodeType: "point"}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "no final graph")
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("bad")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"bad"}, r.Errors)
}
