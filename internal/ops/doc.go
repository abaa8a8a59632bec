// Package ops defines the Op capability and the Registry the engine
// enumerates candidates from.
//
// An Op is a polymorphic construction or proof step exposing three
// operations: Precond (enumerate valid input tuples), Apply (mutate the
// graph) and Invariants (check the result). Concrete ops live in
// subpackages such as ops/euclid and never depend on the engine.
package ops
