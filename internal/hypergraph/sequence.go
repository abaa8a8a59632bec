package hypergraph

// Sequence hands out strictly increasing ids starting at 1.
//
// Values are never reused; there is no way to move a sequence backwards.
// A Sequence is owned by a single Graph and is not safe for concurrent use.
type Sequence struct {
	last ID
}

// NewSequenceAt creates a sequence whose next value is start+1.
// Used when rebuilding a graph from a persisted snapshot.
func NewSequenceAt(start ID) *Sequence {
	return &Sequence{last: start}
}

// Next returns the next id and advances the sequence.
func (s *Sequence) Next() ID {
	s.last++
	return s.last
}

// Current returns the last id handed out, or 0 if none has been.
func (s *Sequence) Current() ID {
	return s.last
}
