package euclid

import (
	"fmt"

	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
)

// NameBookVProp1 is the op name for Book V, Proposition 1.
const NameBookVProp1 = "BookV.Prop1"

const relationProportional = "proportional"

// BookVProp1 states the proportion between two line segments as a ratio
// of their lengths, backed by a proposition.
//
// Inputs: (first, second) in creation order, for every pair of lines
// without a recorded proportion. Precond is O(nodes^2 + edges).
type BookVProp1 struct{}

// Name implements ops.Op.
func (BookVProp1) Name() string { return NameBookVProp1 }

// Cost implements ops.Op.
func (BookVProp1) Cost() float64 { return opCost }

// Precond implements ops.Op.
func (BookVProp1) Precond(g *hypergraph.Graph) ([]ops.Inputs, error) {
	segs, err := segments(g)
	if err != nil {
		return nil, err
	}
	done := relatedPairs(g, relationProportional)

	var out []ops.Inputs
	for i := range segs {
		if segs[i].length() <= coincident {
			continue
		}
		for j := i + 1; j < len(segs); j++ {
			if segs[j].length() <= coincident || done[unordered(segs[i].line, segs[j].line)] {
				continue
			}
			out = append(out, ops.Inputs{segs[i].line, segs[j].line})
		}
	}
	return out, nil
}

// Apply implements ops.Op.
func (op BookVProp1) Apply(g *hypergraph.Graph, in ops.Inputs) (ops.Outputs, error) {
	if len(in) != 2 {
		return nil, fmt.Errorf("want 2 inputs, got %d", len(in))
	}
	first, err := segmentAt(g, in[0])
	if err != nil {
		return nil, err
	}
	second, err := segmentAt(g, in[1])
	if err != nil {
		return nil, err
	}
	if second.length() <= coincident {
		return nil, fmt.Errorf("line %d: zero length", second.line)
	}

	ratio := first.length() / second.length()
	g.AddEdge(hypergraph.EdgeValuation, []hypergraph.ID{first.line, second.line}, hypergraph.Attrs{
		attrRelation: relationProportional,
		"ratio":      ratio,
		attrOp:       op.Name(),
	})
	prop := propose(g, op.Name(), "magnitudes stand in a fixed ratio", hypergraph.Attrs{"ratio": ratio}, first.line, second.line)

	return ops.Outputs{"first": first.line, "second": second.line, "proposition": prop}, nil
}

// Invariants implements ops.Op: a proportion edge joins the two lines and
// its ratio matches their lengths.
func (BookVProp1) Invariants(g *hypergraph.Graph, out ops.Outputs) bool {
	first, err := segmentAt(g, out["first"])
	if err != nil {
		return false
	}
	second, err := segmentAt(g, out["second"])
	if err != nil {
		return false
	}
	want := first.length() / second.length()

	e, ok := findRelation(g, relationProportional, first.line, second.line)
	if !ok {
		return false
	}
	ratio, ok := floatAttr(e.Attrs, "ratio")
	return ok && approxEqual(ratio, want) && isProposition(g, out["proposition"])
}
