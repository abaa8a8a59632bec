package euclid

import (
	"fmt"
	"math"

	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
)

// Op names for Book I.
const (
	NameBookIProp1       = "BookI.Prop1"
	NameBookIProp10      = "BookI.Prop10"
	NamePostulate1Line   = "Postulate1.Line"
	NamePostulate3Circle = "Postulate3.Circle"
)

// opCost is the cost every construction op reports.
const opCost = 1.0

// BookIProp1 constructs an equilateral triangle on a finite line.
//
// Inputs: (line). Each line is offered until a triangle has been built on
// it. The apex is placed counterclockwise from a to b. Precond is O(nodes
// + edges).
type BookIProp1 struct{}

// Name implements ops.Op.
func (BookIProp1) Name() string { return NameBookIProp1 }

// Cost implements ops.Op.
func (BookIProp1) Cost() float64 { return opCost }

// Precond implements ops.Op.
func (op BookIProp1) Precond(g *hypergraph.Graph) ([]ops.Inputs, error) {
	segs, err := segments(g)
	if err != nil {
		return nil, err
	}
	done := constructed(g, op.Name())
	var out []ops.Inputs
	for _, s := range segs {
		if done[s.line] || s.length() <= coincident {
			continue
		}
		out = append(out, ops.Inputs{s.line})
	}
	return out, nil
}

// Apply implements ops.Op.
func (op BookIProp1) Apply(g *hypergraph.Graph, in ops.Inputs) (ops.Outputs, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("want 1 input, got %d", len(in))
	}
	s, err := segmentAt(g, in[0])
	if err != nil {
		return nil, err
	}

	p := s.pa.Add(s.pb.Sub(s.pa).Rotate(math.Pi / 3))
	apex := g.AddNode(hypergraph.NodePoint, hypergraph.Attrs{attrX: p.X, attrY: p.Y, attrOp: op.Name()})
	tri := g.AddNode(hypergraph.NodePolygon, hypergraph.Attrs{
		attrSides:    3,
		attrVertices: []hypergraph.ID{s.a, s.b, apex},
		attrOp:       op.Name(),
	})
	g.AddEdge(hypergraph.EdgeConstruction, []hypergraph.ID{s.line, tri}, hypergraph.Attrs{
		attrOp: op.Name(),
		"desc": "equilateral triangle",
	})
	g.AddEdge(hypergraph.EdgeIncidence, []hypergraph.ID{tri, s.a, s.b, apex}, nil)

	prop := propose(g, op.Name(), "on a given finite straight line to construct an equilateral triangle", nil, tri)

	return ops.Outputs{"line": s.line, "apex": apex, "triangle": tri, "proposition": prop}, nil
}

// Invariants implements ops.Op: all three sides are equal and non-degenerate,
// and the proposition node exists.
func (BookIProp1) Invariants(g *hypergraph.Graph, out ops.Outputs) bool {
	tri, ok := g.Node(out["triangle"])
	if !ok || tri.Type != hypergraph.NodePolygon {
		return false
	}
	verts, ok := idsAttr(tri.Attrs, attrVertices)
	if !ok || len(verts) != 3 {
		return false
	}
	pts := make([]Point, 3)
	for i, id := range verts {
		p, err := pointAt(g, id)
		if err != nil {
			return false
		}
		pts[i] = p
	}
	d1, d2, d3 := Distance(pts[0], pts[1]), Distance(pts[1], pts[2]), Distance(pts[2], pts[0])
	if d1 <= coincident || !approxEqual(d1, d2) || !approxEqual(d2, d3) {
		return false
	}
	return isProposition(g, out["proposition"])
}

// BookIProp10 bisects a finite line at its midpoint.
//
// Inputs: (line), once per line. Precond is O(nodes + edges).
type BookIProp10 struct{}

// Name implements ops.Op.
func (BookIProp10) Name() string { return NameBookIProp10 }

// Cost implements ops.Op.
func (BookIProp10) Cost() float64 { return opCost }

// Precond implements ops.Op.
func (op BookIProp10) Precond(g *hypergraph.Graph) ([]ops.Inputs, error) {
	segs, err := segments(g)
	if err != nil {
		return nil, err
	}
	done := constructed(g, op.Name())
	var out []ops.Inputs
	for _, s := range segs {
		if done[s.line] || s.length() <= coincident {
			continue
		}
		out = append(out, ops.Inputs{s.line})
	}
	return out, nil
}

// Apply implements ops.Op.
func (op BookIProp10) Apply(g *hypergraph.Graph, in ops.Inputs) (ops.Outputs, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("want 1 input, got %d", len(in))
	}
	s, err := segmentAt(g, in[0])
	if err != nil {
		return nil, err
	}

	m, dir := PerpendicularBisector(s.pa, s.pb)
	mid := g.AddNode(hypergraph.NodePoint, hypergraph.Attrs{
		attrX:         m.X,
		attrY:         m.Y,
		"bisector_dx": dir.X,
		"bisector_dy": dir.Y,
		attrOp:        op.Name(),
	})
	g.AddEdge(hypergraph.EdgeConstruction, []hypergraph.ID{s.line, mid}, hypergraph.Attrs{
		attrOp: op.Name(),
		"desc": "midpoint",
	})
	g.AddEdge(hypergraph.EdgeIncidence, []hypergraph.ID{s.line, mid}, nil)

	return ops.Outputs{"line": s.line, "midpoint": mid}, nil
}

// Invariants implements ops.Op: the midpoint is equidistant from both
// endpoints and lies on the segment.
func (BookIProp10) Invariants(g *hypergraph.Graph, out ops.Outputs) bool {
	s, err := segmentAt(g, out["line"])
	if err != nil {
		return false
	}
	m, err := pointAt(g, out["midpoint"])
	if err != nil {
		return false
	}
	da, db := Distance(s.pa, m), Distance(m, s.pb)
	return approxEqual(da, db) && approxEqual(da+db, s.length())
}

// Postulate1Line draws a straight line from any point to any point.
//
// Inputs: (a, b) with a < b, for every pair of distinct points not yet
// joined. Precond is O(nodes^2 + edges).
type Postulate1Line struct{}

// Name implements ops.Op.
func (Postulate1Line) Name() string { return NamePostulate1Line }

// Cost implements ops.Op.
func (Postulate1Line) Cost() float64 { return opCost }

// Precond implements ops.Op.
func (Postulate1Line) Precond(g *hypergraph.Graph) ([]ops.Inputs, error) {
	segs, err := segments(g)
	if err != nil {
		return nil, err
	}
	joined := make(map[pairKey]bool, len(segs))
	for _, s := range segs {
		joined[unordered(s.a, s.b)] = true
	}

	nodes := g.NodesOf(hypergraph.NodePoint)
	pts := make([]Point, len(nodes))
	for i, n := range nodes {
		p, err := pointAt(g, n.ID)
		if err != nil {
			return nil, err
		}
		pts[i] = p
	}

	var out []ops.Inputs
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i].ID, nodes[j].ID
			if joined[unordered(a, b)] || Distance(pts[i], pts[j]) <= coincident {
				continue
			}
			out = append(out, ops.Inputs{a, b})
		}
	}
	return out, nil
}

// Apply implements ops.Op.
func (op Postulate1Line) Apply(g *hypergraph.Graph, in ops.Inputs) (ops.Outputs, error) {
	if len(in) != 2 {
		return nil, fmt.Errorf("want 2 inputs, got %d", len(in))
	}
	line, err := join(g, in[0], in[1], op.Name())
	if err != nil {
		return nil, err
	}
	return ops.Outputs{"line": line}, nil
}

// Invariants implements ops.Op: the recorded length matches the endpoints.
func (Postulate1Line) Invariants(g *hypergraph.Graph, out ops.Outputs) bool {
	s, err := segmentAt(g, out["line"])
	if err != nil {
		return false
	}
	n, _ := g.Node(s.line)
	length, ok := floatAttr(n.Attrs, attrLength)
	return ok && s.length() > coincident && approxEqual(length, s.length())
}

// join adds a line node between points a and b with an incidence edge
// over (line, a, b).
func join(g *hypergraph.Graph, a, b hypergraph.ID, op string) (hypergraph.ID, error) {
	pa, err := pointAt(g, a)
	if err != nil {
		return 0, err
	}
	pb, err := pointAt(g, b)
	if err != nil {
		return 0, err
	}
	line := g.AddNode(hypergraph.NodeLine, hypergraph.Attrs{
		attrA:      a,
		attrB:      b,
		attrLength: Distance(pa, pb),
		attrOp:     op,
	})
	g.AddEdge(hypergraph.EdgeIncidence, []hypergraph.ID{line, a, b}, hypergraph.Attrs{attrOp: op})
	return line, nil
}

// Postulate3Circle describes a circle with any center and distance.
//
// Inputs: (center, through), ordered, for every pair of distinct points
// with no such circle yet. Precond is O(nodes^2).
type Postulate3Circle struct{}

// Name implements ops.Op.
func (Postulate3Circle) Name() string { return NamePostulate3Circle }

// Cost implements ops.Op.
func (Postulate3Circle) Cost() float64 { return opCost }

// Precond implements ops.Op.
func (Postulate3Circle) Precond(g *hypergraph.Graph) ([]ops.Inputs, error) {
	drawn := make(map[pairKey]bool)
	for _, c := range g.NodesOf(hypergraph.NodeCircle) {
		center, okC := idAttr(c.Attrs, attrCenter)
		through, okT := idAttr(c.Attrs, attrThrough)
		if !okC || !okT {
			return nil, fmt.Errorf("circle %d: missing center or through point", c.ID)
		}
		drawn[pairKey{center, through}] = true
	}

	nodes := g.NodesOf(hypergraph.NodePoint)
	pts := make([]Point, len(nodes))
	for i, n := range nodes {
		p, err := pointAt(g, n.ID)
		if err != nil {
			return nil, err
		}
		pts[i] = p
	}

	var out []ops.Inputs
	for i := range nodes {
		for j := range nodes {
			if i == j {
				continue
			}
			c, p := nodes[i].ID, nodes[j].ID
			if drawn[pairKey{c, p}] || Distance(pts[i], pts[j]) <= coincident {
				continue
			}
			out = append(out, ops.Inputs{c, p})
		}
	}
	return out, nil
}

// Apply implements ops.Op.
func (op Postulate3Circle) Apply(g *hypergraph.Graph, in ops.Inputs) (ops.Outputs, error) {
	if len(in) != 2 {
		return nil, fmt.Errorf("want 2 inputs, got %d", len(in))
	}
	pc, err := pointAt(g, in[0])
	if err != nil {
		return nil, err
	}
	pp, err := pointAt(g, in[1])
	if err != nil {
		return nil, err
	}
	circle := g.AddNode(hypergraph.NodeCircle, hypergraph.Attrs{
		attrCenter:  in[0],
		attrThrough: in[1],
		attrRadius:  Distance(pc, pp),
		attrOp:      op.Name(),
	})
	g.AddEdge(hypergraph.EdgeIncidence, []hypergraph.ID{circle, in[0], in[1]}, hypergraph.Attrs{attrOp: op.Name()})
	return ops.Outputs{"circle": circle}, nil
}

// Invariants implements ops.Op: the radius is the center-to-through distance.
func (Postulate3Circle) Invariants(g *hypergraph.Graph, out ops.Outputs) bool {
	c, ok := g.Node(out["circle"])
	if !ok || c.Type != hypergraph.NodeCircle {
		return false
	}
	center, okC := idAttr(c.Attrs, attrCenter)
	through, okT := idAttr(c.Attrs, attrThrough)
	radius, okR := floatAttr(c.Attrs, attrRadius)
	if !okC || !okT || !okR {
		return false
	}
	pc, err := pointAt(g, center)
	if err != nil {
		return false
	}
	pp, err := pointAt(g, through)
	if err != nil {
		return false
	}
	return radius > coincident && approxEqual(radius, Distance(pc, pp))
}
