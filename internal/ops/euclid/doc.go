// Package euclid provides straightedge-and-compass construction ops over
// a hypergraph, modelled on Euclid's Elements.
//
// Geometry conventions:
//   - a point node carries float coordinates in attrs "x" and "y"
//   - a line node is a finite segment with endpoint ids in "a" and "b"
//     and its "length"
//   - a circle node has "center", "through" and "radius"
//   - a polygon node lists its vertex ids in order in "vertices"
//   - a solid node records its "kind", counts and "edge_length", and the
//     face it was conceived on in "base"
//   - a number is a concept node of kind "integer" with a whole "value",
//     one per value
//   - relations between existing nodes are valuation edges named in
//     "relation"
//   - every construction edge carries the constructing op's name in "op"
//
// Attrs may arrive as Go values or decoded from JSON, so readers accept
// both hypergraph.ID and float64 ids.
package euclid
