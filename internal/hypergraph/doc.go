// Package hypergraph implements the typed, append-only hypergraph that the
// engine grows.
//
// Nodes and edges carry a type tag from a closed set and a free-form
// attribute map. An edge connects an ordered tuple of node ids of any
// arity, so a single edge can tie a polygon to all of its vertices.
//
// Identity:
//
// Node ids and edge ids come from two independent Sequences. Both start
// at 1 and increase by one per creation. There is no delete operation, so
// an id is never reused and "ids seen before step N" is simply every id
// at or below the sequence value at step N.
package hypergraph
