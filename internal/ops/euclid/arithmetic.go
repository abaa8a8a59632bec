package euclid

import (
	"fmt"
	"math"

	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
)

// Op names for the arithmetic books.
const (
	NameIntegerConcept = "IntegerConcept"
	NameBookVIIProp1   = "BookVII.Prop1"
	NameBookIXProp1    = "BookIX.Prop1"
)

const (
	kindInteger = "integer"

	relationGCD         = "gcd"
	relationProgression = "arithmetic_progression"

	// maxInteger bounds the numbers the arithmetic ops will construct.
	maxInteger = 1 << 20
)

// number is an integer concept node.
type number struct {
	id    hypergraph.ID
	value int64
}

// numbers returns every integer concept in creation order. Concept nodes
// of other kinds are skipped.
func numbers(g *hypergraph.Graph) ([]number, error) {
	var out []number
	for _, n := range g.NodesOf(hypergraph.NodeConcept) {
		if n.Attrs[attrKind] != kindInteger {
			continue
		}
		v, ok := intAttr(n.Attrs, attrValue)
		if !ok {
			return nil, fmt.Errorf("number %d: missing value", n.ID)
		}
		out = append(out, number{id: n.ID, value: v})
	}
	return out, nil
}

// numberAt resolves integer concept id.
func numberAt(g *hypergraph.Graph, id hypergraph.ID) (number, error) {
	n, ok := g.Node(id)
	if !ok {
		return number{}, fmt.Errorf("number %d: no such node", id)
	}
	if n.Type != hypergraph.NodeConcept || n.Attrs[attrKind] != kindInteger {
		return number{}, fmt.Errorf("node %d: not an integer concept", id)
	}
	v, ok := intAttr(n.Attrs, attrValue)
	if !ok {
		return number{}, fmt.Errorf("number %d: missing value", id)
	}
	return number{id: id, value: v}, nil
}

// numberFor returns the concept holding v, adding one tagged with op when
// none exists. Each value has at most one concept.
func numberFor(g *hypergraph.Graph, v int64, op string) (hypergraph.ID, error) {
	nums, err := numbers(g)
	if err != nil {
		return 0, err
	}
	for _, n := range nums {
		if n.value == v {
			return n.id, nil
		}
	}
	return g.AddNode(hypergraph.NodeConcept, hypergraph.Attrs{attrKind: kindInteger, attrValue: v, attrOp: op}), nil
}

// SeedIntegers adds one integer concept per value and returns their ids.
// Values already present are not added again.
func SeedIntegers(g *hypergraph.Graph, values ...int64) []hypergraph.ID {
	out := make([]hypergraph.ID, 0, len(values))
	for _, v := range values {
		id, err := numberFor(g, v, "seed")
		if err != nil {
			panic(fmt.Sprintf("euclid: seed integers: %v", err))
		}
		out = append(out, id)
	}
	return out
}

// wholeLength returns the whole number a length measures, if any.
func wholeLength(length float64) (int64, bool) {
	n := math.Round(length)
	if n < 1 || n > maxInteger || math.Abs(length-n) > Tolerance {
		return 0, false
	}
	return int64(n), true
}

// gcd is Euclid's algorithm with remainders in place of repeated
// subtraction.
func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// IntegerConcept measures a line whose length is a whole number of units
// and links it to the integer concept for that number.
//
// Inputs: (line), once per line of whole length. Precond is O(nodes + edges).
type IntegerConcept struct{}

// Name implements ops.Op.
func (IntegerConcept) Name() string { return NameIntegerConcept }

// Cost implements ops.Op.
func (IntegerConcept) Cost() float64 { return opCost }

// Precond implements ops.Op.
func (op IntegerConcept) Precond(g *hypergraph.Graph) ([]ops.Inputs, error) {
	segs, err := segments(g)
	if err != nil {
		return nil, err
	}
	done := constructed(g, op.Name())
	var out []ops.Inputs
	for _, s := range segs {
		if _, ok := wholeLength(s.length()); ok && !done[s.line] {
			out = append(out, ops.Inputs{s.line})
		}
	}
	return out, nil
}

// Apply implements ops.Op.
func (op IntegerConcept) Apply(g *hypergraph.Graph, in ops.Inputs) (ops.Outputs, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("want 1 input, got %d", len(in))
	}
	s, err := segmentAt(g, in[0])
	if err != nil {
		return nil, err
	}
	v, ok := wholeLength(s.length())
	if !ok {
		return nil, fmt.Errorf("line %d: length %g is not a whole number", s.line, s.length())
	}
	num, err := numberFor(g, v, op.Name())
	if err != nil {
		return nil, err
	}
	g.AddEdge(hypergraph.EdgeConstruction, []hypergraph.ID{s.line, num}, hypergraph.Attrs{
		attrOp: op.Name(),
		"desc": "measure",
	})
	return ops.Outputs{"line": s.line, "number": num}, nil
}

// Invariants implements ops.Op: the number is the line's length.
func (IntegerConcept) Invariants(g *hypergraph.Graph, out ops.Outputs) bool {
	s, err := segmentAt(g, out["line"])
	if err != nil {
		return false
	}
	num, err := numberAt(g, out["number"])
	if err != nil {
		return false
	}
	return num.value >= 1 && approxEqual(float64(num.value), s.length())
}

// BookVIIProp1 finds the greatest common measure of two numbers and
// states whether they are prime to one another.
//
// Inputs: (first, second) in creation order, for every pair of numbers
// without a recorded measure. Precond is O(nodes^2 + edges).
type BookVIIProp1 struct{}

// Name implements ops.Op.
func (BookVIIProp1) Name() string { return NameBookVIIProp1 }

// Cost implements ops.Op.
func (BookVIIProp1) Cost() float64 { return opCost }

// Precond implements ops.Op.
func (BookVIIProp1) Precond(g *hypergraph.Graph) ([]ops.Inputs, error) {
	nums, err := numbers(g)
	if err != nil {
		return nil, err
	}
	done := relatedPairs(g, relationGCD)
	var out []ops.Inputs
	for i := range nums {
		for j := i + 1; j < len(nums); j++ {
			if nums[i].value < 1 || nums[j].value < 1 || done[unordered(nums[i].id, nums[j].id)] {
				continue
			}
			out = append(out, ops.Inputs{nums[i].id, nums[j].id})
		}
	}
	return out, nil
}

// Apply implements ops.Op.
func (op BookVIIProp1) Apply(g *hypergraph.Graph, in ops.Inputs) (ops.Outputs, error) {
	if len(in) != 2 {
		return nil, fmt.Errorf("want 2 inputs, got %d", len(in))
	}
	a, err := numberAt(g, in[0])
	if err != nil {
		return nil, err
	}
	b, err := numberAt(g, in[1])
	if err != nil {
		return nil, err
	}
	if a.value < 1 || b.value < 1 {
		return nil, fmt.Errorf("numbers %d and %d: want positive values", a.id, b.id)
	}

	d := gcd(a.value, b.value)
	g.AddEdge(hypergraph.EdgeValuation, []hypergraph.ID{a.id, b.id}, hypergraph.Attrs{
		attrRelation: relationGCD,
		"gcd":        d,
		"coprime":    d == 1,
		attrOp:       op.Name(),
	})
	statement := "the greatest common measure of two numbers not prime to one another"
	if d == 1 {
		statement = "two numbers whose continued subtraction leaves a unit are prime to one another"
	}
	prop := propose(g, op.Name(), statement, hypergraph.Attrs{"gcd": d}, a.id, b.id)

	return ops.Outputs{"first": a.id, "second": b.id, "proposition": prop}, nil
}

// Invariants implements ops.Op: the recorded measure divides both numbers
// and leaves quotients prime to one another.
func (BookVIIProp1) Invariants(g *hypergraph.Graph, out ops.Outputs) bool {
	a, err := numberAt(g, out["first"])
	if err != nil {
		return false
	}
	b, err := numberAt(g, out["second"])
	if err != nil {
		return false
	}
	e, ok := findRelation(g, relationGCD, a.id, b.id)
	if !ok {
		return false
	}
	d, ok := intAttr(e.Attrs, "gcd")
	if !ok || d < 1 || a.value%d != 0 || b.value%d != 0 {
		return false
	}
	return gcd(a.value/d, b.value/d) == 1 && isProposition(g, out["proposition"])
}

// BookIXProp1 continues an arithmetic progression: from numbers x < y it
// constructs z = 2y - x, so that x, y, z share one difference.
//
// Inputs: (x, y) ordered by value, for every such pair not yet continued
// whose next term stays within bounds. Precond is O(nodes^2 + edges).
type BookIXProp1 struct{}

// Name implements ops.Op.
func (BookIXProp1) Name() string { return NameBookIXProp1 }

// Cost implements ops.Op.
func (BookIXProp1) Cost() float64 { return opCost }

// Precond implements ops.Op.
func (BookIXProp1) Precond(g *hypergraph.Graph) ([]ops.Inputs, error) {
	nums, err := numbers(g)
	if err != nil {
		return nil, err
	}
	done := make(map[pairKey]bool)
	for _, e := range related(g, relationProgression) {
		if len(e.Nodes) == 3 {
			done[pairKey{e.Nodes[0], e.Nodes[1]}] = true
		}
	}
	var out []ops.Inputs
	for _, x := range nums {
		for _, y := range nums {
			if x.value >= y.value || 2*y.value-x.value > maxInteger || done[pairKey{x.id, y.id}] {
				continue
			}
			out = append(out, ops.Inputs{x.id, y.id})
		}
	}
	return out, nil
}

// Apply implements ops.Op.
func (op BookIXProp1) Apply(g *hypergraph.Graph, in ops.Inputs) (ops.Outputs, error) {
	if len(in) != 2 {
		return nil, fmt.Errorf("want 2 inputs, got %d", len(in))
	}
	x, err := numberAt(g, in[0])
	if err != nil {
		return nil, err
	}
	y, err := numberAt(g, in[1])
	if err != nil {
		return nil, err
	}
	if x.value >= y.value {
		return nil, fmt.Errorf("numbers %d and %d: want increasing values", x.id, y.id)
	}

	z, err := numberFor(g, 2*y.value-x.value, op.Name())
	if err != nil {
		return nil, err
	}
	g.AddEdge(hypergraph.EdgeValuation, []hypergraph.ID{x.id, y.id, z}, hypergraph.Attrs{
		attrRelation: relationProgression,
		"difference": y.value - x.value,
		attrOp:       op.Name(),
	})
	return ops.Outputs{"first": x.id, "second": y.id, "third": z}, nil
}

// Invariants implements ops.Op: the three numbers increase by one common
// difference and the progression edge records it.
func (BookIXProp1) Invariants(g *hypergraph.Graph, out ops.Outputs) bool {
	var terms [3]number
	for i, role := range []string{"first", "second", "third"} {
		n, err := numberAt(g, out[role])
		if err != nil {
			return false
		}
		terms[i] = n
	}
	diff := terms[1].value - terms[0].value
	if diff <= 0 || terms[2].value-terms[1].value != diff {
		return false
	}
	e, ok := findRelation(g, relationProgression, terms[0].id, terms[1].id, terms[2].id)
	if !ok {
		return false
	}
	recorded, ok := intAttr(e.Attrs, "difference")
	return ok && recorded == diff
}
