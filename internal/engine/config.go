package engine

// Config holds the engine's construction-time settings.
type Config struct {
	InitialEnergy float64 // E at step 0, >= 0
	InitialMass   float64 // m at step 0, >= 0
	C2            float64 // energy per unit mass

	// Verbose logs every step summary at Info instead of Debug.
	Verbose bool

	// MinEnergyFloor is the smallest selection budget a step gets, even
	// when E has been drained below it.
	MinEnergyFloor float64

	// ForceGreedyIfEmpty accepts the top-scored candidate when nothing
	// fit the budget, so every step with candidates applies something.
	ForceGreedyIfEmpty bool

	Epsilon      float64 // probability of the exploration pass
	TopNExplore  int     // exploration picks among this many top candidates
	RecentWindow int     // capacity of the recent-ops window
}

// StepParams are per-step knobs.
type StepParams struct {
	MaxCandidates int     // hard cap on enumerated candidates
	KCommit       int     // maximum applications per step
	ReleaseProb   float64 // probability of releasing mass back to energy
	ReleaseDM     float64 // mass requested when a release fires
}

// Defaults.
const (
	DefaultInitialEnergy = 10.0
	DefaultC2            = 1.0
	DefaultEpsilon       = 0.1
	DefaultTopNExplore   = 5
	DefaultRecentWindow  = 8

	DefaultMaxCandidates = 64
	DefaultKCommit       = 4
	DefaultReleaseProb   = 0.1
	DefaultReleaseDM     = 0.1

	// PredictedOutcome is the fixed optimistic prediction every candidate
	// is scored and rewarded against.
	PredictedOutcome = 0.8
)

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		InitialEnergy:      DefaultInitialEnergy,
		C2:                 DefaultC2,
		ForceGreedyIfEmpty: true,
		Epsilon:            DefaultEpsilon,
		TopNExplore:        DefaultTopNExplore,
		RecentWindow:       DefaultRecentWindow,
	}
}

// DefaultStepParams returns the default per-step parameters.
func DefaultStepParams() StepParams {
	return StepParams{
		MaxCandidates: DefaultMaxCandidates,
		KCommit:       DefaultKCommit,
		ReleaseProb:   DefaultReleaseProb,
		ReleaseDM:     DefaultReleaseDM,
	}
}

// withDefaults fills zero-valued caps so a zero StepParams behaves like
// DefaultStepParams for the fields that cannot meaningfully be zero.
func (p StepParams) withDefaults() StepParams {
	if p.MaxCandidates <= 0 {
		p.MaxCandidates = DefaultMaxCandidates
	}
	if p.KCommit <= 0 {
		p.KCommit = DefaultKCommit
	}
	return p
}
