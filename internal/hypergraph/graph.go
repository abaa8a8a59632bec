package hypergraph

import (
	"fmt"
	"sort"
)

// Graph owns every node and edge by id.
//
// INVARIANTS:
//   - node and edge ids are strictly increasing and never reused
//   - nothing is ever deleted
//   - iteration order is id order (creation order)
//
// A Graph is not safe for concurrent use; the engine is its single owner.
type Graph struct {
	nodes map[ID]*Node
	edges map[ID]*Edge

	nodeOrder []ID
	edgeOrder []ID

	nodeSeq *Sequence
	edgeSeq *Sequence
}

// New creates an empty graph. The first node and the first edge both get id 1.
func New() *Graph {
	return &Graph{
		nodes:   make(map[ID]*Node),
		edges:   make(map[ID]*Edge),
		nodeSeq: &Sequence{},
		edgeSeq: &Sequence{},
	}
}

// AddNode appends a node and returns its id. A nil attrs map is replaced
// with an empty one.
func (g *Graph) AddNode(t NodeType, attrs Attrs) ID {
	if attrs == nil {
		attrs = Attrs{}
	}
	id := g.nodeSeq.Next()
	g.nodes[id] = &Node{ID: id, Type: t, Attrs: attrs}
	g.nodeOrder = append(g.nodeOrder, id)
	return id
}

// AddEdge appends a hyperedge over the given node tuple and returns its id.
// The tuple is copied so later mutation by the caller cannot change it.
func (g *Graph) AddEdge(t EdgeType, nodes []ID, attrs Attrs) ID {
	if attrs == nil {
		attrs = Attrs{}
	}
	tuple := make([]ID, len(nodes))
	copy(tuple, nodes)

	id := g.edgeSeq.Next()
	g.edges[id] = &Edge{ID: id, Type: t, Nodes: tuple, Attrs: attrs}
	g.edgeOrder = append(g.edgeOrder, id)
	return id
}

// Node returns the node with the given id.
func (g *Graph) Node(id ID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id ID) (*Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// Nodes returns every node in creation order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns every edge in creation order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		out = append(out, g.edges[id])
	}
	return out
}

// NodesSince returns the nodes created after the first n, in creation
// order. Because nothing is deleted, these are exactly the nodes whose ids
// were absent from the graph when it held n nodes.
func (g *Graph) NodesSince(n int) []*Node {
	if n < 0 {
		n = 0
	}
	if n >= len(g.nodeOrder) {
		return nil
	}
	out := make([]*Node, 0, len(g.nodeOrder)-n)
	for _, id := range g.nodeOrder[n:] {
		out = append(out, g.nodes[id])
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodeOrder) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edgeOrder) }

// Neighbors returns every node id that shares an edge with id, excluding
// id itself, in ascending order. Cost is O(edges * edge arity).
func (g *Graph) Neighbors(id ID) []ID {
	set := make(map[ID]struct{})
	for _, eid := range g.edgeOrder {
		e := g.edges[eid]
		if !e.Contains(id) {
			continue
		}
		for _, n := range e.Nodes {
			if n != id {
				set[n] = struct{}{}
			}
		}
	}

	out := make([]ID, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Filter restricts ByType. A nil field places no restriction on that axis.
type Filter struct {
	Node *NodeType
	Edge *EdgeType
}

// OfNode builds a Filter on node type only.
func OfNode(t NodeType) Filter { return Filter{Node: &t} }

// OfEdge builds a Filter on edge type only.
func OfEdge(t EdgeType) Filter { return Filter{Edge: &t} }

// ByType returns the nodes and edges matching the filter, in creation order.
func (g *Graph) ByType(f Filter) ([]*Node, []*Edge) {
	var nodes []*Node
	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		if f.Node == nil || n.Type == *f.Node {
			nodes = append(nodes, n)
		}
	}

	var edges []*Edge
	for _, id := range g.edgeOrder {
		e := g.edges[id]
		if f.Edge == nil || e.Type == *f.Edge {
			edges = append(edges, e)
		}
	}
	return nodes, edges
}

// NodesOf is ByType restricted to the node axis.
func (g *Graph) NodesOf(t NodeType) []*Node {
	nodes, _ := g.ByType(OfNode(t))
	return nodes
}

// Restore inserts a persisted node with an explicit id. Ids must be
// supplied in ascending order above every id already present; the node
// sequence continues from the restored id.
func (g *Graph) Restore(n Node) error {
	if n.ID <= g.nodeSeq.Current() {
		return fmt.Errorf("restore node %d: id not above current %d", n.ID, g.nodeSeq.Current())
	}
	if n.Attrs == nil {
		n.Attrs = Attrs{}
	}
	node := n
	g.nodes[n.ID] = &node
	g.nodeOrder = append(g.nodeOrder, n.ID)
	g.nodeSeq = NewSequenceAt(n.ID)
	return nil
}

// RestoreEdge is Restore for edges.
func (g *Graph) RestoreEdge(e Edge) error {
	if e.ID <= g.edgeSeq.Current() {
		return fmt.Errorf("restore edge %d: id not above current %d", e.ID, g.edgeSeq.Current())
	}
	if e.Attrs == nil {
		e.Attrs = Attrs{}
	}
	edge := e
	edge.Nodes = append([]ID(nil), e.Nodes...)
	g.edges[e.ID] = &edge
	g.edgeOrder = append(g.edgeOrder, e.ID)
	g.edgeSeq = NewSequenceAt(e.ID)
	return nil
}
