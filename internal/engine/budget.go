package engine

// Budget tracks energy committed during one step's selection.
//
// The budget is step-local: it gates which candidates may be accepted but
// does not itself change the engine's energy. Energy moves only through
// consolidation and release.
type Budget struct {
	available float64
	spent     float64
}

// NewBudget creates a budget with the given amount available.
func NewBudget(available float64) *Budget {
	return &Budget{available: available}
}

// Fits reports whether cost can be paid from what remains.
func (b *Budget) Fits(cost float64) bool {
	return cost <= b.available-b.spent
}

// Debit pays cost if it fits and reports whether it did.
func (b *Budget) Debit(cost float64) bool {
	if !b.Fits(cost) {
		return false
	}
	b.spent += cost
	return true
}

// Force pays cost unconditionally. Spent may exceed available afterwards;
// used only by the greedy fallback.
func (b *Budget) Force(cost float64) {
	b.spent += cost
}

// Available returns the budget the step started with.
func (b *Budget) Available() float64 { return b.available }

// Spent returns the total cost committed so far.
func (b *Budget) Spent() float64 { return b.spent }

// Remaining returns available minus spent. Negative after Force overspends.
func (b *Budget) Remaining() float64 { return b.available - b.spent }
