package testutil

import (
	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
)

// StubOp is a configurable op for engine and registry tests.
//
// With only OpName set it offers one empty input tuple, adds one
// concept node per Apply and passes its invariants. Each hook overrides
// the matching default.
type StubOp struct {
	OpName string
	OpCost float64

	// Tuples are returned by Precond when PrecondFn is nil.
	Tuples []ops.Inputs

	PrecondFn    func(g *hypergraph.Graph) ([]ops.Inputs, error)
	ApplyFn      func(g *hypergraph.Graph, in ops.Inputs) (ops.Outputs, error)
	InvariantsFn func(g *hypergraph.Graph, out ops.Outputs) bool

	// Applied records the inputs of every Apply call.
	Applied []ops.Inputs
}

// Name implements ops.Op.
func (s *StubOp) Name() string { return s.OpName }

// Cost implements ops.Op. A zero OpCost reports 1.
func (s *StubOp) Cost() float64 {
	if s.OpCost == 0 {
		return 1
	}
	return s.OpCost
}

// Precond implements ops.Op.
func (s *StubOp) Precond(g *hypergraph.Graph) ([]ops.Inputs, error) {
	if s.PrecondFn != nil {
		return s.PrecondFn(g)
	}
	if s.Tuples == nil {
		return []ops.Inputs{{}}, nil
	}
	return s.Tuples, nil
}

// Apply implements ops.Op.
func (s *StubOp) Apply(g *hypergraph.Graph, in ops.Inputs) (ops.Outputs, error) {
	s.Applied = append(s.Applied, in)
	if s.ApplyFn != nil {
		return s.ApplyFn(g, in)
	}
	id := g.AddNode(hypergraph.NodeConcept, hypergraph.Attrs{"op": s.OpName})
	return ops.Outputs{"node": id}, nil
}

// Invariants implements ops.Op.
func (s *StubOp) Invariants(g *hypergraph.Graph, out ops.Outputs) bool {
	if s.InvariantsFn != nil {
		return s.InvariantsFn(g, out)
	}
	return true
}
