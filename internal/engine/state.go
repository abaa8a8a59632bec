package engine

// State is the run state the engine mutates every step.
//
// It is created once per run and has no teardown. The seen sets grow for
// the lifetime of the run.
type State struct {
	Energy float64
	Mass   float64
	Steps  int

	recent    *recentWindow
	applied   map[string]int
	seenApps  *applicationSet
	seenProps *propositionSet
	last      *Summary
}

func newState(cfg Config) *State {
	return &State{
		Energy:    cfg.InitialEnergy,
		Mass:      cfg.InitialMass,
		recent:    newRecentWindow(cfg.RecentWindow),
		applied:   make(map[string]int),
		seenApps:  newApplicationSet(),
		seenProps: newPropositionSet(),
	}
}

// Applications returns how many times the named op has been applied.
func (s *State) Applications(name string) int { return s.applied[name] }

// Recent returns the recent-ops window, oldest first.
func (s *State) Recent() []string { return s.recent.Names() }

// SeenApplications returns the number of distinct (op, inputs) pairs applied.
func (s *State) SeenApplications() int { return s.seenApps.Len() }

// SeenPropositions returns the number of distinct proposition ids seen.
func (s *State) SeenPropositions() int { return s.seenProps.Len() }

// Last returns the most recent step summary, if any step has completed.
func (s *State) Last() (*Summary, bool) {
	return s.last, s.last != nil
}
