package engine

import (
	"github.com/roach88/sophon/internal/canon"
	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
)

// applicationSet records every (op-name, inputs) pair ever applied in a run.
//
// The set only grows. Memory is proportional to the number of distinct
// applications over the run's lifetime.
type applicationSet struct {
	keys map[string]struct{}
}

func newApplicationSet() *applicationSet {
	return &applicationSet{keys: make(map[string]struct{})}
}

// applicationKey is the content-addressed key for an application.
func applicationKey(name string, in ops.Inputs) string {
	ids := make([]int64, len(in))
	for i, id := range in {
		ids[i] = int64(id)
	}
	return canon.ApplicationKey(name, ids)
}

// Seen reports whether (name, in) has been applied before.
func (s *applicationSet) Seen(name string, in ops.Inputs) bool {
	_, ok := s.keys[applicationKey(name, in)]
	return ok
}

// Record marks (name, in) as applied. It returns true when the pair was new.
func (s *applicationSet) Record(name string, in ops.Inputs) bool {
	key := applicationKey(name, in)
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Len returns the number of distinct applications recorded.
func (s *applicationSet) Len() int { return len(s.keys) }

// propositionSet records every proposition node id seen in a run.
// Like applicationSet it never evicts.
type propositionSet struct {
	ids map[hypergraph.ID]struct{}
}

func newPropositionSet() *propositionSet {
	return &propositionSet{ids: make(map[hypergraph.ID]struct{})}
}

// Record marks id as seen and returns true when it was new.
func (s *propositionSet) Record(id hypergraph.ID) bool {
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Len returns the number of distinct proposition ids recorded.
func (s *propositionSet) Len() int { return len(s.ids) }
