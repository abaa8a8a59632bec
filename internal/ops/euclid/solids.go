package euclid

import (
	"fmt"
	"math"

	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
)

// Op names for the solid books.
const (
	NameSolidConcept  = "SolidConcept"
	NameBookXIProp1   = "BookXI.Prop1"
	NameBookXIIProp1  = "BookXII.Prop1"
	NameBookXIIIProp1 = "BookXIII.Prop1"
)

const (
	relationRegular   = "regular"
	relationSimilar   = "similar"
	relationInscribed = "inscribed"

	attrFaces       = "faces"
	attrVertexCount = "vertex_count"
	attrEdgeCount   = "edge_count"
	attrEdgeLength  = "edge_length"
	attrBase        = "base"
)

// solidKind describes a regular solid built from one kind of regular face.
// faceAngle is a face's interior angle in degrees. volume and radiusSq
// scale the cube and the square of the edge to the volume and the squared
// circumradius.
type solidKind struct {
	name      string
	faceSides int
	vertices  int
	edges     int
	faces     int
	faceAngle float64
	volume    float64
	radiusSq  float64
}

var solidKinds = []solidKind{
	{name: "tetrahedron", faceSides: 3, vertices: 4, edges: 6, faces: 4, faceAngle: 60, volume: 1 / (6 * math.Sqrt2), radiusSq: 3.0 / 8},
	{name: "cube", faceSides: 4, vertices: 8, edges: 12, faces: 6, faceAngle: 90, volume: 1, radiusSq: 3.0 / 4},
}

func kindForFace(sides int) (solidKind, bool) {
	for _, k := range solidKinds {
		if k.faceSides == sides {
			return k, true
		}
	}
	return solidKind{}, false
}

func kindNamed(name string) (solidKind, bool) {
	for _, k := range solidKinds {
		if k.name == name {
			return k, true
		}
	}
	return solidKind{}, false
}

// solid is a solid node resolved to its kind and recorded counts.
type solid struct {
	id                     hypergraph.ID
	kind                   solidKind
	faces, vertices, edges int64
	edge                   float64
	base                   hypergraph.ID
}

func (s solid) euler() bool { return s.vertices-s.edges+s.faces == 2 }

// solidAt resolves solid node id.
func solidAt(g *hypergraph.Graph, id hypergraph.ID) (solid, error) {
	n, ok := g.Node(id)
	if !ok {
		return solid{}, fmt.Errorf("solid %d: no such node", id)
	}
	if n.Type != hypergraph.NodeSolid {
		return solid{}, fmt.Errorf("node %d: want solid, got %s", id, n.Type)
	}
	name, _ := n.Attrs[attrKind].(string)
	kind, ok := kindNamed(name)
	if !ok {
		return solid{}, fmt.Errorf("solid %d: unknown kind %q", id, name)
	}
	faces, okF := intAttr(n.Attrs, attrFaces)
	verts, okV := intAttr(n.Attrs, attrVertexCount)
	edges, okE := intAttr(n.Attrs, attrEdgeCount)
	edge, okL := floatAttr(n.Attrs, attrEdgeLength)
	base, okB := idAttr(n.Attrs, attrBase)
	if !okF || !okV || !okE || !okL || !okB {
		return solid{}, fmt.Errorf("solid %d: missing counts, edge length or base", id)
	}
	return solid{id: id, kind: kind, faces: faces, vertices: verts, edges: edges, edge: edge, base: base}, nil
}

// solids resolves every solid node in creation order.
func solids(g *hypergraph.Graph) ([]solid, error) {
	nodes := g.NodesOf(hypergraph.NodeSolid)
	out := make([]solid, 0, len(nodes))
	for _, n := range nodes {
		s, err := solidAt(g, n.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// SolidConcept conceives the regular solid whose faces are a given regular
// polygon: a tetrahedron on a triangle, a cube on a square.
//
// Inputs: (face), once per regular triangle or square. Precond is
// O(nodes + edges).
type SolidConcept struct{}

// Name implements ops.Op.
func (SolidConcept) Name() string { return NameSolidConcept }

// Cost implements ops.Op.
func (SolidConcept) Cost() float64 { return opCost }

// Precond implements ops.Op.
func (op SolidConcept) Precond(g *hypergraph.Graph) ([]ops.Inputs, error) {
	polys, err := polygons(g)
	if err != nil {
		return nil, err
	}
	done := constructed(g, op.Name())
	var out []ops.Inputs
	for _, p := range polys {
		if _, ok := kindForFace(len(p.pts)); !ok || done[p.id] || !p.regular() {
			continue
		}
		out = append(out, ops.Inputs{p.id})
	}
	return out, nil
}

// Apply implements ops.Op.
func (op SolidConcept) Apply(g *hypergraph.Graph, in ops.Inputs) (ops.Outputs, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("want 1 input, got %d", len(in))
	}
	face, err := polygonAt(g, in[0])
	if err != nil {
		return nil, err
	}
	kind, ok := kindForFace(len(face.pts))
	if !ok || !face.regular() {
		return nil, fmt.Errorf("polygon %d: not a regular triangle or square", face.id)
	}

	sol := g.AddNode(hypergraph.NodeSolid, hypergraph.Attrs{
		attrKind:        kind.name,
		attrFaces:       kind.faces,
		attrVertexCount: kind.vertices,
		attrEdgeCount:   kind.edges,
		attrEdgeLength:  face.sideLength(),
		attrBase:        face.id,
		attrOp:          op.Name(),
	})
	g.AddEdge(hypergraph.EdgeConstruction, []hypergraph.ID{face.id, sol}, hypergraph.Attrs{
		attrOp: op.Name(),
		"desc": kind.name,
	})
	g.AddEdge(hypergraph.EdgePartOf, []hypergraph.ID{face.id, sol}, nil)

	return ops.Outputs{"face": face.id, "solid": sol}, nil
}

// Invariants implements ops.Op: the solid's counts are those of its kind,
// satisfy V - E + F = 2, and its edge is the face's side.
func (SolidConcept) Invariants(g *hypergraph.Graph, out ops.Outputs) bool {
	face, err := polygonAt(g, out["face"])
	if err != nil {
		return false
	}
	s, err := solidAt(g, out["solid"])
	if err != nil {
		return false
	}
	k := s.kind
	if s.faces != int64(k.faces) || s.vertices != int64(k.vertices) || s.edges != int64(k.edges) {
		return false
	}
	return s.euler() && k.faceSides == len(face.pts) && s.base == face.id && approxEqual(s.edge, face.sideLength())
}

// BookXIProp1 records that a solid is regular: the same number of faces
// meet at every vertex and their angles there sum to less than four right
// angles.
//
// Inputs: (solid), once per solid. Precond is O(nodes + edges).
type BookXIProp1 struct{}

// Name implements ops.Op.
func (BookXIProp1) Name() string { return NameBookXIProp1 }

// Cost implements ops.Op.
func (BookXIProp1) Cost() float64 { return opCost }

// Precond implements ops.Op.
func (BookXIProp1) Precond(g *hypergraph.Graph) ([]ops.Inputs, error) {
	sols, err := solids(g)
	if err != nil {
		return nil, err
	}
	done := relatedSingles(g, relationRegular)
	var out []ops.Inputs
	for _, s := range sols {
		if !done[s.id] {
			out = append(out, ops.Inputs{s.id})
		}
	}
	return out, nil
}

// Apply implements ops.Op.
func (op BookXIProp1) Apply(g *hypergraph.Graph, in ops.Inputs) (ops.Outputs, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("want 1 input, got %d", len(in))
	}
	s, err := solidAt(g, in[0])
	if err != nil {
		return nil, err
	}
	if s.vertices < 1 {
		return nil, fmt.Errorf("solid %d: no vertices", s.id)
	}
	g.AddEdge(hypergraph.EdgeValuation, []hypergraph.ID{s.id}, hypergraph.Attrs{
		attrRelation:       relationRegular,
		"faces_per_vertex": s.faces * int64(s.kind.faceSides) / s.vertices,
		attrOp:             op.Name(),
	})
	return ops.Outputs{"solid": s.id}, nil
}

// Invariants implements ops.Op.
func (BookXIProp1) Invariants(g *hypergraph.Graph, out ops.Outputs) bool {
	s, err := solidAt(g, out["solid"])
	if err != nil || !s.euler() || s.vertices < 1 {
		return false
	}
	e, ok := findRelation(g, relationRegular, s.id)
	if !ok {
		return false
	}
	perVertex, ok := intAttr(e.Attrs, "faces_per_vertex")
	if !ok || perVertex < 3 || perVertex*s.vertices != s.faces*int64(s.kind.faceSides) {
		return false
	}
	return float64(perVertex)*s.kind.faceAngle < 360
}

// BookXIIProp1 compares two solids of one kind: their volumes stand in
// the triplicate ratio of their edges.
//
// Inputs: (first, second) in creation order, for every same-kind pair not
// yet compared. Precond is O(nodes^2 + edges).
type BookXIIProp1 struct{}

// Name implements ops.Op.
func (BookXIIProp1) Name() string { return NameBookXIIProp1 }

// Cost implements ops.Op.
func (BookXIIProp1) Cost() float64 { return opCost }

// Precond implements ops.Op.
func (BookXIIProp1) Precond(g *hypergraph.Graph) ([]ops.Inputs, error) {
	sols, err := solids(g)
	if err != nil {
		return nil, err
	}
	done := relatedPairs(g, relationSimilar)
	var out []ops.Inputs
	for i := range sols {
		for j := i + 1; j < len(sols); j++ {
			a, b := sols[i], sols[j]
			if a.kind.name != b.kind.name || a.edge <= coincident || b.edge <= coincident || done[unordered(a.id, b.id)] {
				continue
			}
			out = append(out, ops.Inputs{a.id, b.id})
		}
	}
	return out, nil
}

// Apply implements ops.Op.
func (op BookXIIProp1) Apply(g *hypergraph.Graph, in ops.Inputs) (ops.Outputs, error) {
	if len(in) != 2 {
		return nil, fmt.Errorf("want 2 inputs, got %d", len(in))
	}
	a, err := solidAt(g, in[0])
	if err != nil {
		return nil, err
	}
	b, err := solidAt(g, in[1])
	if err != nil {
		return nil, err
	}
	if a.kind.name != b.kind.name {
		return nil, fmt.Errorf("solids %d and %d: %s and %s are not similar", a.id, b.id, a.kind.name, b.kind.name)
	}
	if b.edge <= coincident {
		return nil, fmt.Errorf("solid %d: degenerate edge", b.id)
	}

	ratio := a.edge / b.edge
	volumeRatio := (a.kind.volume * math.Pow(a.edge, 3)) / (b.kind.volume * math.Pow(b.edge, 3))
	g.AddEdge(hypergraph.EdgeValuation, []hypergraph.ID{a.id, b.id}, hypergraph.Attrs{
		attrRelation:   relationSimilar,
		"ratio":        ratio,
		"volume_ratio": volumeRatio,
		attrOp:         op.Name(),
	})
	prop := propose(g, op.Name(), "similar solids are to one another in the triplicate ratio of their corresponding sides",
		hypergraph.Attrs{"ratio": ratio}, a.id, b.id)

	return ops.Outputs{"first": a.id, "second": b.id, "proposition": prop}, nil
}

// Invariants implements ops.Op: the recorded edge ratio matches the solids
// and the volume ratio is its cube.
func (BookXIIProp1) Invariants(g *hypergraph.Graph, out ops.Outputs) bool {
	a, err := solidAt(g, out["first"])
	if err != nil {
		return false
	}
	b, err := solidAt(g, out["second"])
	if err != nil || b.edge <= coincident {
		return false
	}
	e, ok := findRelation(g, relationSimilar, a.id, b.id)
	if !ok {
		return false
	}
	ratio, okR := floatAttr(e.Attrs, "ratio")
	volumeRatio, okV := floatAttr(e.Attrs, "volume_ratio")
	if !okR || !okV || !approxEqual(ratio, a.edge/b.edge) {
		return false
	}
	return approxEqual(volumeRatio, ratio*ratio*ratio) && isProposition(g, out["proposition"])
}

// BookXIIIProp1 inscribes a regular solid in a sphere, recording the
// sphere's radius.
//
// Inputs: (solid), once per solid. Precond is O(nodes + edges).
type BookXIIIProp1 struct{}

// Name implements ops.Op.
func (BookXIIIProp1) Name() string { return NameBookXIIIProp1 }

// Cost implements ops.Op.
func (BookXIIIProp1) Cost() float64 { return opCost }

// Precond implements ops.Op.
func (BookXIIIProp1) Precond(g *hypergraph.Graph) ([]ops.Inputs, error) {
	sols, err := solids(g)
	if err != nil {
		return nil, err
	}
	done := relatedSingles(g, relationInscribed)
	var out []ops.Inputs
	for _, s := range sols {
		if !done[s.id] && s.edge > coincident {
			out = append(out, ops.Inputs{s.id})
		}
	}
	return out, nil
}

// Apply implements ops.Op.
func (op BookXIIIProp1) Apply(g *hypergraph.Graph, in ops.Inputs) (ops.Outputs, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("want 1 input, got %d", len(in))
	}
	s, err := solidAt(g, in[0])
	if err != nil {
		return nil, err
	}
	g.AddEdge(hypergraph.EdgeValuation, []hypergraph.ID{s.id}, hypergraph.Attrs{
		attrRelation:   relationInscribed,
		"circumradius": s.edge * math.Sqrt(s.kind.radiusSq),
		attrOp:         op.Name(),
	})
	return ops.Outputs{"solid": s.id}, nil
}

// Invariants implements ops.Op: the squared radius is the kind's multiple
// of the squared edge.
func (BookXIIIProp1) Invariants(g *hypergraph.Graph, out ops.Outputs) bool {
	s, err := solidAt(g, out["solid"])
	if err != nil {
		return false
	}
	e, ok := findRelation(g, relationInscribed, s.id)
	if !ok {
		return false
	}
	r, ok := floatAttr(e.Attrs, "circumradius")
	return ok && r > 0 && approxEqual(r*r, s.kind.radiusSq*s.edge*s.edge)
}
