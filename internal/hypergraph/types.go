package hypergraph

// NodeType tags a node with one of a fixed, closed set of kinds.
type NodeType string

const (
	NodePoint       NodeType = "point"
	NodeLine        NodeType = "line"
	NodeCircle      NodeType = "circle"
	NodePolygon     NodeType = "polygon"
	NodeSolid       NodeType = "solid"
	NodePercept     NodeType = "percept"
	NodeOption      NodeType = "option"
	NodeConcept     NodeType = "concept"
	NodeProposition NodeType = "proposition"
	NodeProof       NodeType = "proof"
	NodeSchema      NodeType = "schema"
	NodeEmotion     NodeType = "emotion"
)

// EdgeType tags a hyperedge with one of a fixed, closed set of relations.
type EdgeType string

const (
	EdgeIncidence    EdgeType = "incidence"
	EdgeConstruction EdgeType = "construction"
	EdgeSupports     EdgeType = "supports"
	EdgeContradicts  EdgeType = "contradicts"
	EdgeDefines      EdgeType = "defines"
	EdgeCauses       EdgeType = "causes"
	EdgeTemporal     EdgeType = "temporal"
	EdgeValuation    EdgeType = "valuation"
	EdgePartOf       EdgeType = "part-of"
)

var nodeTypes = []NodeType{
	NodePoint, NodeLine, NodeCircle, NodePolygon, NodeSolid, NodePercept,
	NodeOption, NodeConcept, NodeProposition, NodeProof, NodeSchema, NodeEmotion,
}

var edgeTypes = []EdgeType{
	EdgeIncidence, EdgeConstruction, EdgeSupports, EdgeContradicts, EdgeDefines,
	EdgeCauses, EdgeTemporal, EdgeValuation, EdgePartOf,
}

// NodeTypes returns every node type in declaration order.
func NodeTypes() []NodeType {
	out := make([]NodeType, len(nodeTypes))
	copy(out, nodeTypes)
	return out
}

// EdgeTypes returns every edge type in declaration order.
func EdgeTypes() []EdgeType {
	out := make([]EdgeType, len(edgeTypes))
	copy(out, edgeTypes)
	return out
}

// Valid reports whether t belongs to the closed node type set.
func (t NodeType) Valid() bool {
	for _, nt := range nodeTypes {
		if nt == t {
			return true
		}
	}
	return false
}

// Valid reports whether t belongs to the closed edge type set.
func (t EdgeType) Valid() bool {
	for _, et := range edgeTypes {
		if et == t {
			return true
		}
	}
	return false
}

// ID identifies a node or an edge. Node and edge ids come from
// independent sequences, so a node and an edge may share a value.
type ID int64

// Attrs holds free-form attributes. Operations may mutate attributes in
// place; identity and type never change after creation.
type Attrs map[string]any

// Node is a typed hypergraph vertex.
type Node struct {
	ID    ID
	Type  NodeType
	Attrs Attrs
}

// Edge is a typed hyperedge over an ordered tuple of node ids.
// The tuple may repeat an id.
type Edge struct {
	ID    ID
	Type  EdgeType
	Nodes []ID
	Attrs Attrs
}

// Contains reports whether id appears anywhere in the edge tuple.
func (e *Edge) Contains(id ID) bool {
	for _, n := range e.Nodes {
		if n == id {
			return true
		}
	}
	return false
}
