package euclid

import (
	"fmt"
	"math"

	"github.com/roach88/sophon/internal/hypergraph"
)

// Attr keys shared by the construction ops.
const (
	attrX       = "x"
	attrY       = "y"
	attrA       = "a"
	attrB       = "b"
	attrLength  = "length"
	attrCenter  = "center"
	attrThrough = "through"
	attrRadius  = "radius"
	attrOp      = "op"

	attrSides    = "sides"
	attrVertices = "vertices"
	attrKind     = "kind"
	attrValue    = "value"
	attrRelation = "relation"
)

func floatAttr(a hypergraph.Attrs, key string) (float64, bool) {
	switch v := a[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// intAttr reads a whole number. JSON-decoded float64 values are accepted
// when integral.
func intAttr(a hypergraph.Attrs, key string) (int64, bool) {
	switch v := a[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

func idAttr(a hypergraph.Attrs, key string) (hypergraph.ID, bool) {
	return toID(a[key])
}

func toID(v any) (hypergraph.ID, bool) {
	switch v := v.(type) {
	case hypergraph.ID:
		return v, true
	case int64:
		return hypergraph.ID(v), true
	case int:
		return hypergraph.ID(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return hypergraph.ID(v), true
	default:
		return 0, false
	}
}

func idsAttr(a hypergraph.Attrs, key string) ([]hypergraph.ID, bool) {
	switch v := a[key].(type) {
	case []hypergraph.ID:
		return v, true
	case []any:
		out := make([]hypergraph.ID, 0, len(v))
		for _, x := range v {
			id, ok := toID(x)
			if !ok {
				return nil, false
			}
			out = append(out, id)
		}
		return out, true
	default:
		return nil, false
	}
}

// pointAt reads the coordinates of point node id.
func pointAt(g *hypergraph.Graph, id hypergraph.ID) (Point, error) {
	n, ok := g.Node(id)
	if !ok {
		return Point{}, fmt.Errorf("point %d: no such node", id)
	}
	if n.Type != hypergraph.NodePoint {
		return Point{}, fmt.Errorf("node %d: want point, got %s", id, n.Type)
	}
	x, okX := floatAttr(n.Attrs, attrX)
	y, okY := floatAttr(n.Attrs, attrY)
	if !okX || !okY {
		return Point{}, fmt.Errorf("point %d: missing coordinates", id)
	}
	return Point{x, y}, nil
}

// segment is a line node resolved to its endpoints.
type segment struct {
	line   hypergraph.ID
	a, b   hypergraph.ID
	pa, pb Point
}

func (s segment) length() float64 { return Distance(s.pa, s.pb) }

// segmentAt resolves line node id.
func segmentAt(g *hypergraph.Graph, id hypergraph.ID) (segment, error) {
	n, ok := g.Node(id)
	if !ok {
		return segment{}, fmt.Errorf("line %d: no such node", id)
	}
	if n.Type != hypergraph.NodeLine {
		return segment{}, fmt.Errorf("node %d: want line, got %s", id, n.Type)
	}
	a, okA := idAttr(n.Attrs, attrA)
	b, okB := idAttr(n.Attrs, attrB)
	if !okA || !okB {
		return segment{}, fmt.Errorf("line %d: missing endpoints", id)
	}
	pa, err := pointAt(g, a)
	if err != nil {
		return segment{}, fmt.Errorf("line %d: %w", id, err)
	}
	pb, err := pointAt(g, b)
	if err != nil {
		return segment{}, fmt.Errorf("line %d: %w", id, err)
	}
	return segment{line: id, a: a, b: b, pa: pa, pb: pb}, nil
}

// segments resolves every line node in creation order.
func segments(g *hypergraph.Graph) ([]segment, error) {
	lines := g.NodesOf(hypergraph.NodeLine)
	out := make([]segment, 0, len(lines))
	for _, n := range lines {
		s, err := segmentAt(g, n.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// constructed returns the ids whose construction by op is already
// recorded: the first node of every construction edge tagged with op.
func constructed(g *hypergraph.Graph, op string) map[hypergraph.ID]bool {
	_, edges := g.ByType(hypergraph.OfEdge(hypergraph.EdgeConstruction))
	out := make(map[hypergraph.ID]bool)
	for _, e := range edges {
		if e.Attrs[attrOp] == op && len(e.Nodes) > 0 {
			out[e.Nodes[0]] = true
		}
	}
	return out
}

// pairKey orders an unordered id pair.
type pairKey [2]hypergraph.ID

func unordered(a, b hypergraph.ID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// circle is a circle node resolved to its center and through point.
type circle struct {
	id              hypergraph.ID
	center, through hypergraph.ID
	pc, pp          Point
	radius          float64
}

// circleAt resolves circle node id.
func circleAt(g *hypergraph.Graph, id hypergraph.ID) (circle, error) {
	n, ok := g.Node(id)
	if !ok {
		return circle{}, fmt.Errorf("circle %d: no such node", id)
	}
	if n.Type != hypergraph.NodeCircle {
		return circle{}, fmt.Errorf("node %d: want circle, got %s", id, n.Type)
	}
	center, okC := idAttr(n.Attrs, attrCenter)
	through, okT := idAttr(n.Attrs, attrThrough)
	radius, okR := floatAttr(n.Attrs, attrRadius)
	if !okC || !okT || !okR {
		return circle{}, fmt.Errorf("circle %d: missing center, through point or radius", id)
	}
	pc, err := pointAt(g, center)
	if err != nil {
		return circle{}, fmt.Errorf("circle %d: %w", id, err)
	}
	pp, err := pointAt(g, through)
	if err != nil {
		return circle{}, fmt.Errorf("circle %d: %w", id, err)
	}
	return circle{id: id, center: center, through: through, pc: pc, pp: pp, radius: radius}, nil
}

// polygon is a polygon node resolved to its vertices, in order.
type polygon struct {
	id    hypergraph.ID
	verts []hypergraph.ID
	pts   []Point
}

// polygonAt resolves polygon node id.
func polygonAt(g *hypergraph.Graph, id hypergraph.ID) (polygon, error) {
	n, ok := g.Node(id)
	if !ok {
		return polygon{}, fmt.Errorf("polygon %d: no such node", id)
	}
	if n.Type != hypergraph.NodePolygon {
		return polygon{}, fmt.Errorf("node %d: want polygon, got %s", id, n.Type)
	}
	verts, ok := idsAttr(n.Attrs, attrVertices)
	if !ok || len(verts) < 3 {
		return polygon{}, fmt.Errorf("polygon %d: missing vertices", id)
	}
	pts := make([]Point, len(verts))
	for i, v := range verts {
		p, err := pointAt(g, v)
		if err != nil {
			return polygon{}, fmt.Errorf("polygon %d: %w", id, err)
		}
		pts[i] = p
	}
	return polygon{id: id, verts: verts, pts: pts}, nil
}

// polygons resolves every polygon node in creation order.
func polygons(g *hypergraph.Graph) ([]polygon, error) {
	nodes := g.NodesOf(hypergraph.NodePolygon)
	out := make([]polygon, 0, len(nodes))
	for _, n := range nodes {
		p, err := polygonAt(g, n.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// side returns the endpoints of side i, from vertex i to vertex i+1.
func (p polygon) side(i int) (Point, Point) {
	return p.pts[i], p.pts[(i+1)%len(p.pts)]
}

// regular reports whether every side has the same non-zero length and
// every vertex lies at the same distance from the centroid.
func (p polygon) regular() bool {
	a, b := p.side(0)
	length := Distance(a, b)
	if length <= coincident {
		return false
	}
	c := Centroid(p.pts)
	r := Distance(c, p.pts[0])
	for i := range p.pts {
		a, b := p.side(i)
		if !approxEqual(Distance(a, b), length) || !approxEqual(Distance(c, p.pts[i]), r) {
			return false
		}
	}
	return true
}

// sideLength returns the length of the first side.
func (p polygon) sideLength() float64 {
	a, b := p.side(0)
	return Distance(a, b)
}
