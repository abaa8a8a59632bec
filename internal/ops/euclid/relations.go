package euclid

import "github.com/roach88/sophon/internal/hypergraph"

// related returns the valuation edges tagged with relation, in creation
// order.
func related(g *hypergraph.Graph, relation string) []*hypergraph.Edge {
	_, edges := g.ByType(hypergraph.OfEdge(hypergraph.EdgeValuation))
	var out []*hypergraph.Edge
	for _, e := range edges {
		if e.Attrs[attrRelation] == relation {
			out = append(out, e)
		}
	}
	return out
}

// relatedPairs returns the unordered pairs of the first two nodes of every
// relation edge.
func relatedPairs(g *hypergraph.Graph, relation string) map[pairKey]bool {
	out := make(map[pairKey]bool)
	for _, e := range related(g, relation) {
		if len(e.Nodes) >= 2 {
			out[unordered(e.Nodes[0], e.Nodes[1])] = true
		}
	}
	return out
}

// relatedSingles returns the nodes carrying a unary relation edge.
func relatedSingles(g *hypergraph.Graph, relation string) map[hypergraph.ID]bool {
	out := make(map[hypergraph.ID]bool)
	for _, e := range related(g, relation) {
		if len(e.Nodes) == 1 {
			out[e.Nodes[0]] = true
		}
	}
	return out
}

// findRelation returns the first relation edge over exactly nodes.
func findRelation(g *hypergraph.Graph, relation string, nodes ...hypergraph.ID) (*hypergraph.Edge, bool) {
	for _, e := range related(g, relation) {
		if len(e.Nodes) != len(nodes) {
			continue
		}
		match := true
		for i := range nodes {
			if e.Nodes[i] != nodes[i] {
				match = false
				break
			}
		}
		if match {
			return e, true
		}
	}
	return nil, false
}

// propose adds a proposition node named after op and a supports edge from
// the given nodes to it.
func propose(g *hypergraph.Graph, op, statement string, extra hypergraph.Attrs, from ...hypergraph.ID) hypergraph.ID {
	attrs := hypergraph.Attrs{"name": op, "statement": statement}
	for k, v := range extra {
		attrs[k] = v
	}
	prop := g.AddNode(hypergraph.NodeProposition, attrs)
	g.AddEdge(hypergraph.EdgeSupports, append(append([]hypergraph.ID{}, from...), prop), hypergraph.Attrs{attrOp: op})
	return prop
}

// isProposition reports whether id is a proposition node.
func isProposition(g *hypergraph.Graph, id hypergraph.ID) bool {
	n, ok := g.Node(id)
	return ok && n.Type == hypergraph.NodeProposition
}
