package ops

import (
	"fmt"
	"log/slog"

	"github.com/roach88/sophon/internal/hypergraph"
)

// Registry is a name-keyed catalog of ops kept in registration order.
//
// Adding an op whose name is already registered replaces the earlier op
// in place: it keeps the original slot in the ordering.
type Registry struct {
	order []string
	byKey map[string]Op
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]Op)}
}

// Add registers op, overwriting any op with the same name.
func (r *Registry) Add(op Op) {
	name := op.Name()
	if _, exists := r.byKey[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byKey[name] = op
}

// Get returns the op registered under name.
func (r *Registry) Get(name string) (Op, bool) {
	op, ok := r.byKey[name]
	return op, ok
}

// Len returns the number of registered ops.
func (r *Registry) Len() int { return len(r.order) }

// Ops returns every op in registration order.
func (r *Registry) Ops() []Op {
	out := make([]Op, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byKey[name])
	}
	return out
}

// Candidates invokes Precond on every op in registration order and
// returns the full list of (op, inputs) pairs. An op whose Precond fails
// or panics contributes nothing; the failure is logged and enumeration
// continues.
func (r *Registry) Candidates(g *hypergraph.Graph) []Candidate {
	var out []Candidate
	for _, op := range r.Ops() {
		tuples, err := SafePrecond(op, g)
		if err != nil {
			slog.Warn("precond failed", "op", op.Name(), "error", err)
			continue
		}
		for _, in := range tuples {
			out = append(out, Candidate{Op: op, Inputs: in})
		}
	}
	return out
}

// SafePrecond runs op.Precond and reports a panic inside it as an error.
func SafePrecond(op Op, g *hypergraph.Graph) (tuples []Inputs, err error) {
	defer func() {
		if r := recover(); r != nil {
			tuples, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return op.Precond(g)
}
