package euclid

import (
	"fmt"
	"math"

	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
)

// NameBookXProp1 is the op name for Book X, Proposition 1.
const NameBookXProp1 = "BookX.Prop1"

const relationIncommensurable = "incommensurable"

// squareRatio returns n when the squares on a and b stand as the whole
// number n to one and n is not itself a square. Such lines are
// commensurable in square only.
func squareRatio(a, b segment) (int64, bool) {
	la, lb := a.length(), b.length()
	if la <= coincident || lb <= coincident {
		return 0, false
	}
	if la < lb {
		la, lb = lb, la
	}
	n, ok := wholeLength(la * la / (lb * lb))
	if !ok || n < 2 {
		return 0, false
	}
	root := int64(math.Round(math.Sqrt(float64(n))))
	if root*root == n {
		return 0, false
	}
	return n, true
}

// BookXProp1 records that two lines whose squares are in a whole,
// non-square ratio have no common measure in length.
//
// Inputs: (first, second) in creation order, for every such pair without
// a recorded relation. Precond is O(nodes^2 + edges).
type BookXProp1 struct{}

// Name implements ops.Op.
func (BookXProp1) Name() string { return NameBookXProp1 }

// Cost implements ops.Op.
func (BookXProp1) Cost() float64 { return opCost }

// Precond implements ops.Op.
func (BookXProp1) Precond(g *hypergraph.Graph) ([]ops.Inputs, error) {
	segs, err := segments(g)
	if err != nil {
		return nil, err
	}
	done := relatedPairs(g, relationIncommensurable)
	var out []ops.Inputs
	for i := range segs {
		for j := i + 1; j < len(segs); j++ {
			if _, ok := squareRatio(segs[i], segs[j]); !ok || done[unordered(segs[i].line, segs[j].line)] {
				continue
			}
			out = append(out, ops.Inputs{segs[i].line, segs[j].line})
		}
	}
	return out, nil
}

// Apply implements ops.Op.
func (op BookXProp1) Apply(g *hypergraph.Graph, in ops.Inputs) (ops.Outputs, error) {
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
	n, ok := squareRatio(first, second)
	if !ok {
		return nil, fmt.Errorf("lines %d and %d: not commensurable in square only", first.line, second.line)
	}

	g.AddEdge(hypergraph.EdgeValuation, []hypergraph.ID{first.line, second.line}, hypergraph.Attrs{
		attrRelation:   relationIncommensurable,
		"square_ratio": n,
		attrOp:         op.Name(),
	})
	prop := propose(g, op.Name(), "straight lines commensurable in square only are incommensurable in length",
		hypergraph.Attrs{"square_ratio": n}, first.line, second.line)

	return ops.Outputs{"first": first.line, "second": second.line, "proposition": prop}, nil
}

// Invariants implements ops.Op: the recorded ratio matches the lines and
// is not a square number.
func (BookXProp1) Invariants(g *hypergraph.Graph, out ops.Outputs) bool {
	first, err := segmentAt(g, out["first"])
	if err != nil {
		return false
	}
	second, err := segmentAt(g, out["second"])
	if err != nil {
		return false
	}
	n, ok := squareRatio(first, second)
	if !ok {
		return false
	}
	e, ok := findRelation(g, relationIncommensurable, first.line, second.line)
	if !ok {
		return false
	}
	recorded, ok := intAttr(e.Attrs, "square_ratio")
	return ok && recorded == n && isProposition(g, out["proposition"])
}
