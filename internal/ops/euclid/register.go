package euclid

import (
	"fmt"

	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
)

// books maps each book name to its ops in registration order.
var books = map[string]func() []ops.Op{
	"I": func() []ops.Op {
		return []ops.Op{BookIProp1{}, BookIProp10{}, Postulate1Line{}, Postulate3Circle{}}
	},
	"II":   func() []ops.Op { return []ops.Op{BookIIProp1{}} },
	"III":  func() []ops.Op { return []ops.Op{BookIIIProp1{}} },
	"IV":   func() []ops.Op { return []ops.Op{BookIVProp1{}} },
	"V":    func() []ops.Op { return []ops.Op{BookVProp1{}} },
	"VII":  func() []ops.Op { return []ops.Op{IntegerConcept{}, BookVIIProp1{}} },
	"IX":   func() []ops.Op { return []ops.Op{BookIXProp1{}} },
	"X":    func() []ops.Op { return []ops.Op{BookXProp1{}} },
	"XI":   func() []ops.Op { return []ops.Op{SolidConcept{}, BookXIProp1{}} },
	"XII":  func() []ops.Op { return []ops.Op{BookXIIProp1{}} },
	"XIII": func() []ops.Op { return []ops.Op{BookXIIIProp1{}} },
}

// bookOrder lists the books in the order of the Elements.
var bookOrder = []string{"I", "II", "III", "IV", "V", "VII", "IX", "X", "XI", "XII", "XIII"}

// Books returns the available book names in the order of the Elements.
func Books() []string {
	return append([]string(nil), bookOrder...)
}

// Register adds every op of every book to reg, book by book.
func Register(reg *ops.Registry) {
	for _, name := range bookOrder {
		for _, op := range books[name]() {
			reg.Add(op)
		}
	}
}

// RegisterBooks adds the ops of the named books to reg in the order given.
// With no names it registers everything.
func RegisterBooks(reg *ops.Registry, names ...string) error {
	if len(names) == 0 {
		Register(reg)
		return nil
	}
	for _, name := range names {
		build, ok := books[name]
		if !ok {
			return fmt.Errorf("unknown book %q (available: %v)", name, Books())
		}
		for _, op := range build() {
			reg.Add(op)
		}
	}
	return nil
}

// SeedSegment adds the unit segment from (0,0) to (1,0): two points and
// the line joining them. It returns the ids of both points and the line.
func SeedSegment(g *hypergraph.Graph) (a, b, line hypergraph.ID) {
	a = g.AddNode(hypergraph.NodePoint, hypergraph.Attrs{attrX: 0.0, attrY: 0.0, attrOp: "seed"})
	b = g.AddNode(hypergraph.NodePoint, hypergraph.Attrs{attrX: 1.0, attrY: 0.0, attrOp: "seed"})
	line, err := join(g, a, b, "seed")
	if err != nil {
		panic(fmt.Sprintf("euclid: seed segment: %v", err))
	}
	return a, b, line
}
