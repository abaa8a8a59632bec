package euclid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
)

func addPoint(g *hypergraph.Graph, x, y float64) hypergraph.ID {
	return g.AddNode(hypergraph.NodePoint, hypergraph.Attrs{attrX: x, attrY: y})
}

func TestBookIIProp1(t *testing.T) {
	g, a, b, line := seeded(t)
	op := BookIIProp1{}

	out := applyOK(t, g, op, ops.Inputs{line})

	sq, err := polygonAt(g, out["square"])
	require.NoError(t, err)
	require.Len(t, sq.verts, 4)
	assert.Equal(t, a, sq.verts[0])
	assert.Equal(t, b, sq.verts[1])
	assert.InDelta(t, 1.0, sq.pts[2].X, 1e-12)
	assert.InDelta(t, 1.0, sq.pts[2].Y, 1e-12)
	assert.InDelta(t, 0.0, sq.pts[3].X, 1e-12)
	assert.InDelta(t, 1.0, sq.pts[3].Y, 1e-12)

	tuples, err := op.Precond(g)
	require.NoError(t, err)
	assert.Empty(t, tuples, "square already described on the line")
}

func TestBookIIProp1_InvariantsRejectTamperedCorner(t *testing.T) {
	g, _, _, line := seeded(t)
	op := BookIIProp1{}

	out, err := op.Apply(g, ops.Inputs{line})
	require.NoError(t, err)

	sq, err := polygonAt(g, out["square"])
	require.NoError(t, err)
	corner, _ := g.Node(sq.verts[2])
	corner.Attrs[attrY] = 3.0
	assert.False(t, op.Invariants(g, out))
}

func TestBookIIIProp1(t *testing.T) {
	g, a, b, _ := seeded(t)
	op := BookIIIProp1{}

	circ := applyOK(t, g, Postulate3Circle{}, ops.Inputs{a, b})["circle"]

	tuples, err := op.Precond(g)
	require.NoError(t, err)
	assert.Equal(t, []ops.Inputs{{circ}}, tuples)

	out := applyOK(t, g, op, ops.Inputs{circ})
	p, err := pointAt(g, out["point"])
	require.NoError(t, err)
	assert.InDelta(t, -1.0, p.X, 1e-12)
	assert.InDelta(t, 0.0, p.Y, 1e-12)

	tuples, err = op.Precond(g)
	require.NoError(t, err)
	assert.Empty(t, tuples)

	pt, _ := g.Node(out["point"])
	pt.Attrs[attrX] = -2.0
	assert.False(t, op.Invariants(g, out))
}

func TestBookIIIProp1_MalformedCircleIsAnError(t *testing.T) {
	g, _, _, _ := seeded(t)
	g.AddNode(hypergraph.NodeCircle, hypergraph.Attrs{})

	_, err := BookIIIProp1{}.Precond(g)
	assert.Error(t, err)
}

func TestBookIVProp1(t *testing.T) {
	g, _, _, line := seeded(t)
	op := BookIVProp1{}

	tri := applyOK(t, g, BookIProp1{}, ops.Inputs{line})["triangle"]
	sq := applyOK(t, g, BookIIProp1{}, ops.Inputs{line})["square"]

	tuples, err := op.Precond(g)
	require.NoError(t, err)
	assert.Equal(t, []ops.Inputs{{tri}, {sq}}, tuples)

	tests := []struct {
		name       string
		poly       hypergraph.ID
		wantCenter Point
		wantRadius float64
	}{
		{"triangle", tri, Point{0.5, math.Sqrt(3) / 6}, 1 / (2 * math.Sqrt(3))},
		{"square", sq, Point{0.5, 0.5}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := applyOK(t, g, op, ops.Inputs{tt.poly})
			c, err := circleAt(g, out["circle"])
			require.NoError(t, err)
			assert.InDelta(t, tt.wantCenter.X, c.pc.X, 1e-12)
			assert.InDelta(t, tt.wantCenter.Y, c.pc.Y, 1e-12)
			assert.InDelta(t, tt.wantRadius, c.radius, 1e-12)
		})
	}

	tuples, err = op.Precond(g)
	require.NoError(t, err)
	assert.Empty(t, tuples)

	// The inscribed circles are ordinary circles to the other ops.
	_, err = Postulate3Circle{}.Precond(g)
	require.NoError(t, err)
	tuples, err = BookIIIProp1{}.Precond(g)
	require.NoError(t, err)
	assert.Len(t, tuples, 2)
}

func TestBookIVProp1_InvariantsRejectMovedCenter(t *testing.T) {
	g, _, _, line := seeded(t)
	sq := applyOK(t, g, BookIIProp1{}, ops.Inputs{line})["square"]
	op := BookIVProp1{}

	out, err := op.Apply(g, ops.Inputs{sq})
	require.NoError(t, err)

	center, _ := g.Node(out["center"])
	center.Attrs[attrX] = 0.7
	assert.False(t, op.Invariants(g, out))
}

func TestBookIVProp1_SkipsIrregularPolygon(t *testing.T) {
	g, a, b, _ := seeded(t)
	far := addPoint(g, 0, 3)
	poly := g.AddNode(hypergraph.NodePolygon, hypergraph.Attrs{
		attrSides:    3,
		attrVertices: []hypergraph.ID{a, b, far},
	})

	tuples, err := BookIVProp1{}.Precond(g)
	require.NoError(t, err)
	assert.Empty(t, tuples)

	_, err = BookIVProp1{}.Apply(g, ops.Inputs{poly})
	assert.ErrorContains(t, err, "not regular")
}
