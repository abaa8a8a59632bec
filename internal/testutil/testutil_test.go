package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
)

func TestScriptedRand_ReplaysThenFallsBack(t *testing.T) {
	r := NewScriptedRand(0.1, 0.9).WithInts(2)

	assert.Equal(t, 0.1, r.Float64())
	assert.Equal(t, 0.9, r.Float64())
	assert.Equal(t, 0.5, r.Float64(), "exhausted script returns fallback")
	assert.Equal(t, 3, r.FloatCalls)

	assert.Equal(t, 2, r.Intn(3))
	assert.Equal(t, 0, r.Intn(3), "exhausted int script returns 0")
	assert.Equal(t, 2, r.IntnCalls)
}

func TestScriptedRand_IntnOutOfRangePanics(t *testing.T) {
	r := NewScriptedRand().WithInts(5)
	assert.Panics(t, func() { r.Intn(2) })
}

func TestFixedRand(t *testing.T) {
	r := FixedRand(0.25)
	assert.Equal(t, 0.25, r.Float64())
	assert.Equal(t, 0, r.Intn(10))
}

func TestFixedIDs_InOrderThenPanics(t *testing.T) {
	gen := NewFixedIDs("run-1", "run-2")

	assert.Equal(t, "run-1", gen.Generate())
	assert.Equal(t, "run-2", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}

func TestStubOp_Defaults(t *testing.T) {
	g := hypergraph.New()
	op := &StubOp{OpName: "Stub"}

	assert.Equal(t, 1.0, op.Cost())

	tuples, err := op.Precond(g)
	require.NoError(t, err)
	require.Len(t, tuples, 1)

	out, err := op.Apply(g, tuples[0])
	require.NoError(t, err)
	assert.Equal(t, 1, g.NodeCount())
	assert.Contains(t, out, "node")
	assert.True(t, op.Invariants(g, out))
	assert.Len(t, op.Applied, 1)
}

func TestStubOp_Hooks(t *testing.T) {
	g := hypergraph.New()
	op := &StubOp{
		OpName:       "Hooked",
		OpCost:       2.5,
		Tuples:       []ops.Inputs{{1}, {2}},
		InvariantsFn: func(*hypergraph.Graph, ops.Outputs) bool { return false },
	}

	tuples, err := op.Precond(g)
	require.NoError(t, err)
	assert.Len(t, tuples, 2)
	assert.Equal(t, 2.5, op.Cost())
	assert.False(t, op.Invariants(g, nil))
}
