package ops

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/sophon/internal/hypergraph"
)

// Inputs is an ordered tuple of node ids an op is applied to.
type Inputs []hypergraph.ID

// Equal reports whether two tuples hold the same ids in the same order.
func (in Inputs) Equal(other Inputs) bool {
	if len(in) != len(other) {
		return false
	}
	for i := range in {
		if in[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the tuple as "(1,2,3)".
func (in Inputs) String() string {
	parts := make([]string, len(in))
	for i, id := range in {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// Outputs maps role names ("triangle", "apex", "proposition") to the node
// ids an application produced.
type Outputs map[string]hypergraph.ID

// Roles returns the role names in sorted order.
func (o Outputs) Roles() []string {
	roles := make([]string, 0, len(o))
	for r := range o {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	return roles
}

// Op is one construction or proof step.
//
// Contract:
//   - Precond is side-effect free. It returns every input tuple the op can
//     currently be applied to. Implementations document their complexity.
//   - Apply mutates the graph and is neither idempotent nor transactional:
//     when it fails part-way, whatever it already added stays in the graph.
//   - Invariants is a pure postcondition check over Apply's outputs.
//
// Name is the registry key. Cost is a fixed energy price per application.
type Op interface {
	Name() string
	Cost() float64
	Precond(g *hypergraph.Graph) ([]Inputs, error)
	Apply(g *hypergraph.Graph, in Inputs) (Outputs, error)
	Invariants(g *hypergraph.Graph, out Outputs) bool
}

// Candidate is a concrete (op, inputs) pair valid to apply right now.
type Candidate struct {
	Op     Op
	Inputs Inputs
}

// Same reports whether two candidates name the same op and tuple.
func (c Candidate) Same(other Candidate) bool {
	return c.Op.Name() == other.Op.Name() && c.Inputs.Equal(other.Inputs)
}

// String renders "Name(1,2)".
func (c Candidate) String() string {
	return c.Op.Name() + c.Inputs.String()
}
