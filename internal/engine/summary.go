package engine

import (
	"github.com/roach88/sophon/internal/ops"
	"github.com/roach88/sophon/internal/valuator"
)

// Pair names an (op, inputs) application without holding the op itself.
type Pair struct {
	Op     string     `json:"op"`
	Inputs ops.Inputs `json:"inputs"`
}

// ScoredCandidate is a candidate with its pre-application priority.
type ScoredCandidate struct {
	Op     string     `json:"op"`
	Inputs ops.Inputs `json:"inputs"`
	Score  float64    `json:"score"`
	Cost   float64    `json:"cost"`
}

// RewardBreakdown itemizes how a reward was shaped. Total is the clamped sum.
type RewardBreakdown struct {
	Base          float64 `json:"base"`
	Growth        float64 `json:"growth"`
	Propositions  float64 `json:"propositions"`
	Diversity     float64 `json:"diversity"`
	Novelty       float64 `json:"novelty"`
	Complexity    float64 `json:"complexity"`
	Structure     float64 `json:"structure"`
	RepeatPenalty float64 `json:"repeat_penalty"`
	Total         float64 `json:"total"`
}

// Attempt is the explicit result of applying one accepted candidate.
// Err is set when Apply failed; the reward is then 0 and the breakdown
// is empty. Partial mutations made by a failed Apply are not rolled back.
type Attempt struct {
	Op           string          `json:"op"`
	Inputs       ops.Inputs      `json:"inputs"`
	Outputs      ops.Outputs     `json:"outputs,omitempty"`
	InvariantsOK bool            `json:"invariants_ok"`
	Affect       valuator.Affect `json:"affect"`
	NewNodes     int             `json:"new_nodes"`
	NewEdges     int             `json:"new_edges"`
	Reward       float64         `json:"reward"`
	Breakdown    RewardBreakdown `json:"breakdown"`
	Err          error           `json:"-"`
	Error        string          `json:"error,omitempty"`
}

// Failed reports whether the application failed.
func (a Attempt) Failed() bool { return a.Err != nil }

// Summary is the snapshot of one completed step. It replaces the previous
// summary wholesale and is the engine's entire observability contract.
type Summary struct {
	Step            int               `json:"step"`
	Candidates      int               `json:"candidates"`
	Chosen          int               `json:"chosen"`
	ChosenPairs     []Pair            `json:"chosen_pairs"`
	BudgetAvailable float64           `json:"budget_available"`
	BudgetSpent     float64           `json:"budget_spent"`
	FallbackUsed    bool              `json:"fallback_used"`
	Explored        bool              `json:"explored"`
	Released        bool              `json:"released"`
	Top             []ScoredCandidate `json:"top"`
	Rewards         []float64         `json:"rewards"`

	NovelPropositions int `json:"novel_propositions"`
	NovelApplications int `json:"novel_applications"`
	SeenPropositions  int `json:"seen_propositions"`
	SeenApplications  int `json:"seen_applications"`

	Energy float64 `json:"energy"`
	Mass   float64 `json:"mass"`

	Attempts      []Attempt `json:"attempts"`
	PrecondErrors []string  `json:"precond_errors,omitempty"`
}

// TotalReward sums the step's rewards.
func (s *Summary) TotalReward() float64 {
	var total float64
	for _, r := range s.Rewards {
		total += r
	}
	return total
}
