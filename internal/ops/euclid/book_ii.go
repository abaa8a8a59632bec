package euclid

import (
	"fmt"
	"math"

	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
)

// Op names for Books II to IV.
const (
	NameBookIIProp1  = "BookII.Prop1"
	NameBookIIIProp1 = "BookIII.Prop1"
	NameBookIVProp1  = "BookIV.Prop1"
)

// BookIIProp1 describes a square on a finite line: the parallelogram with
// four equal sides and right angles, on the counterclockwise side of a->b.
//
// Inputs: (line), once per line. Precond is O(nodes + edges).
type BookIIProp1 struct{}

// Name implements ops.Op.
func (BookIIProp1) Name() string { return NameBookIIProp1 }

// Cost implements ops.Op.
func (BookIIProp1) Cost() float64 { return opCost }

// Precond implements ops.Op.
func (op BookIIProp1) Precond(g *hypergraph.Graph) ([]ops.Inputs, error) {
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
func (op BookIIProp1) Apply(g *hypergraph.Graph, in ops.Inputs) (ops.Outputs, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("want 1 input, got %d", len(in))
	}
	s, err := segmentAt(g, in[0])
	if err != nil {
		return nil, err
	}

	up := s.pb.Sub(s.pa).Rotate(math.Pi / 2)
	pc, pd := s.pb.Add(up), s.pa.Add(up)
	c := g.AddNode(hypergraph.NodePoint, hypergraph.Attrs{attrX: pc.X, attrY: pc.Y, attrOp: op.Name()})
	d := g.AddNode(hypergraph.NodePoint, hypergraph.Attrs{attrX: pd.X, attrY: pd.Y, attrOp: op.Name()})
	sq := g.AddNode(hypergraph.NodePolygon, hypergraph.Attrs{
		attrSides:    4,
		attrVertices: []hypergraph.ID{s.a, s.b, c, d},
		attrOp:       op.Name(),
	})
	g.AddEdge(hypergraph.EdgeConstruction, []hypergraph.ID{s.line, sq}, hypergraph.Attrs{
		attrOp: op.Name(),
		"desc": "square",
	})
	g.AddEdge(hypergraph.EdgeIncidence, []hypergraph.ID{sq, s.a, s.b, c, d}, nil)

	return ops.Outputs{"line": s.line, "square": sq}, nil
}

// Invariants implements ops.Op: the square stands on the line, its
// diagonals bisect each other, its sides are equal and its first angle is
// right.
func (BookIIProp1) Invariants(g *hypergraph.Graph, out ops.Outputs) bool {
	s, err := segmentAt(g, out["line"])
	if err != nil {
		return false
	}
	sq, err := polygonAt(g, out["square"])
	if err != nil || len(sq.pts) != 4 {
		return false
	}
	if sq.verts[0] != s.a || sq.verts[1] != s.b {
		return false
	}
	p := sq.pts
	if !samePoint(Midpoint(p[0], p[2]), Midpoint(p[1], p[3])) {
		return false
	}
	if !approxEqual(sq.sideLength(), s.length()) || !sq.regular() {
		return false
	}
	return math.Abs(p[1].Sub(p[0]).Dot(p[3].Sub(p[0]))) <= Tolerance
}

// BookIIIProp1 marks the point of a circle's circumference diametrically
// opposite its through point.
//
// Inputs: (circle), once per circle. Precond is O(nodes + edges).
type BookIIIProp1 struct{}

// Name implements ops.Op.
func (BookIIIProp1) Name() string { return NameBookIIIProp1 }

// Cost implements ops.Op.
func (BookIIIProp1) Cost() float64 { return opCost }

// Precond implements ops.Op.
func (op BookIIIProp1) Precond(g *hypergraph.Graph) ([]ops.Inputs, error) {
	done := constructed(g, op.Name())
	var out []ops.Inputs
	for _, n := range g.NodesOf(hypergraph.NodeCircle) {
		c, err := circleAt(g, n.ID)
		if err != nil {
			return nil, err
		}
		if done[c.id] || c.radius <= coincident {
			continue
		}
		out = append(out, ops.Inputs{c.id})
	}
	return out, nil
}

// Apply implements ops.Op.
func (op BookIIIProp1) Apply(g *hypergraph.Graph, in ops.Inputs) (ops.Outputs, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("want 1 input, got %d", len(in))
	}
	c, err := circleAt(g, in[0])
	if err != nil {
		return nil, err
	}

	p := c.pc.Add(c.pc.Sub(c.pp))
	pt := g.AddNode(hypergraph.NodePoint, hypergraph.Attrs{attrX: p.X, attrY: p.Y, "on": c.id, attrOp: op.Name()})
	g.AddEdge(hypergraph.EdgeConstruction, []hypergraph.ID{c.id, pt}, hypergraph.Attrs{
		attrOp: op.Name(),
		"desc": "point on circumference",
	})
	g.AddEdge(hypergraph.EdgeIncidence, []hypergraph.ID{c.id, pt}, nil)

	return ops.Outputs{"circle": c.id, "point": pt}, nil
}

// Invariants implements ops.Op: the point lies on the circumference and
// the center bisects the segment from it to the through point.
func (BookIIIProp1) Invariants(g *hypergraph.Graph, out ops.Outputs) bool {
	c, err := circleAt(g, out["circle"])
	if err != nil {
		return false
	}
	p, err := pointAt(g, out["point"])
	if err != nil {
		return false
	}
	return approxEqual(Distance(c.pc, p), c.radius) &&
		Distance(p, c.pp) > coincident &&
		samePoint(Midpoint(p, c.pp), c.pc)
}

// BookIVProp1 inscribes a circle in a regular polygon. The center is the
// centroid and the circle touches the first side at its midpoint.
//
// Inputs: (polygon), once per regular polygon. Precond is O(nodes + edges).
type BookIVProp1 struct{}

// Name implements ops.Op.
func (BookIVProp1) Name() string { return NameBookIVProp1 }

// Cost implements ops.Op.
func (BookIVProp1) Cost() float64 { return opCost }

// Precond implements ops.Op.
func (op BookIVProp1) Precond(g *hypergraph.Graph) ([]ops.Inputs, error) {
	polys, err := polygons(g)
	if err != nil {
		return nil, err
	}
	done := constructed(g, op.Name())
	var out []ops.Inputs
	for _, p := range polys {
		if done[p.id] || !p.regular() {
			continue
		}
		out = append(out, ops.Inputs{p.id})
	}
	return out, nil
}

// Apply implements ops.Op.
func (op BookIVProp1) Apply(g *hypergraph.Graph, in ops.Inputs) (ops.Outputs, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("want 1 input, got %d", len(in))
	}
	poly, err := polygonAt(g, in[0])
	if err != nil {
		return nil, err
	}
	if !poly.regular() {
		return nil, fmt.Errorf("polygon %d: not regular", poly.id)
	}

	pc := Centroid(poly.pts)
	pt := Midpoint(poly.side(0))
	center := g.AddNode(hypergraph.NodePoint, hypergraph.Attrs{attrX: pc.X, attrY: pc.Y, attrOp: op.Name()})
	touch := g.AddNode(hypergraph.NodePoint, hypergraph.Attrs{attrX: pt.X, attrY: pt.Y, attrOp: op.Name()})
	circ := g.AddNode(hypergraph.NodeCircle, hypergraph.Attrs{
		attrCenter:     center,
		attrThrough:    touch,
		attrRadius:     Distance(pc, pt),
		"inscribed_in": poly.id,
		attrOp:         op.Name(),
	})
	g.AddEdge(hypergraph.EdgeConstruction, []hypergraph.ID{poly.id, circ}, hypergraph.Attrs{
		attrOp: op.Name(),
		"desc": "inscribed circle",
	})
	g.AddEdge(hypergraph.EdgeIncidence, []hypergraph.ID{circ, center, touch}, hypergraph.Attrs{attrOp: op.Name()})

	return ops.Outputs{"polygon": poly.id, "circle": circ, "center": center}, nil
}

// Invariants implements ops.Op: the circle touches the line of every side
// at a point within that side.
func (BookIVProp1) Invariants(g *hypergraph.Graph, out ops.Outputs) bool {
	poly, err := polygonAt(g, out["polygon"])
	if err != nil {
		return false
	}
	c, err := circleAt(g, out["circle"])
	if err != nil || c.center != out["center"] || c.radius <= coincident {
		return false
	}
	for i := range poly.pts {
		a, b := poly.side(i)
		d, t := LineDistance(c.pc, a, b)
		if !approxEqual(d, c.radius) || t < -Tolerance || t > 1+Tolerance {
			return false
		}
	}
	return true
}
