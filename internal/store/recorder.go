package store

import (
	"context"

	"github.com/roach88/sophon/internal/engine"
)

// Recorder persists every step of one run. Implements engine.Observer.
type Recorder struct {
	store *Store
	runID string
}

// NewRecorder creates a recorder appending to runID.
func NewRecorder(s *Store, runID string) *Recorder {
	return &Recorder{store: s, runID: runID}
}

// RunID returns the run being recorded.
func (r *Recorder) RunID() string { return r.runID }

// OnStep implements engine.Observer.
func (r *Recorder) OnStep(ctx context.Context, s *engine.Summary) error {
	return r.store.WriteStep(ctx, r.runID, s)
}
