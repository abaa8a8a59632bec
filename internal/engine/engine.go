package engine

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
	"github.com/roach88/sophon/internal/valuator"
)

// Observer receives every completed step summary. A returned error is
// logged; it never fails the step.
type Observer interface {
	OnStep(ctx context.Context, s *Summary) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, s *Summary) error

// OnStep implements Observer.
func (f ObserverFunc) OnStep(ctx context.Context, s *Summary) error { return f(ctx, s) }

// Engine runs the per-step decision loop over one graph and registry.
//
// INVARIANTS:
//   - Step is never invoked concurrently on the same Engine
//   - every random draw comes from the single Rand passed to New
//   - E and m never go negative
type Engine struct {
	graph     *hypergraph.Graph
	registry  *ops.Registry
	valuator  valuator.Valuator
	rng       Rand
	estimator Estimator
	observers []Observer
	cfg       Config
	state     *State
}

// Option allows configuration of engine collaborators.
type Option func(*Engine)

// WithValuator replaces the valuator's alpha, beta and weights.
// C2 always comes from Config.
func WithValuator(v valuator.Valuator) Option {
	return func(e *Engine) {
		c2 := e.valuator.C2
		e.valuator = v
		e.valuator.C2 = c2
	}
}

// WithEstimator replaces the default uniform uncertainty estimator.
func WithEstimator(est Estimator) Option {
	return func(e *Engine) {
		e.estimator = est
	}
}

// WithObserver adds an observer. Observers run in the order added.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

// New creates an Engine. The graph, registry and rng are owned by the
// engine for the lifetime of the run.
func New(g *hypergraph.Graph, reg *ops.Registry, rng Rand, cfg Config, opts ...Option) (*Engine, error) {
	switch {
	case g == nil:
		return nil, &ContractError{Message: "nil graph"}
	case reg == nil:
		return nil, &ContractError{Message: "nil registry"}
	case rng == nil:
		return nil, &ContractError{Message: "nil random source"}
	case cfg.C2 <= 0:
		return nil, &ContractError{Message: "c2 must be positive"}
	}

	cfg.InitialEnergy = math.Max(cfg.InitialEnergy, 0)
	cfg.InitialMass = math.Max(cfg.InitialMass, 0)

	e := &Engine{
		graph:     g,
		registry:  reg,
		valuator:  valuator.New(cfg.C2),
		rng:       rng,
		estimator: UniformEstimator{Rand: rng},
		cfg:       cfg,
		state:     newState(cfg),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// State returns the engine's live run state.
func (e *Engine) State() *State { return e.state }

// Graph returns the graph the engine grows.
func (e *Engine) Graph() *hypergraph.Graph { return e.graph }

// Valuator returns the engine's valuator.
func (e *Engine) Valuator() valuator.Valuator { return e.valuator }

// scored is a candidate with its priority and discovery index.
type scored struct {
	cand      ops.Candidate
	w         float64
	cost      float64
	predicted float64
}

// Step runs one decision step. It returns the step summary, or nil when
// there were no candidates (the step is then a no-op: E, m, the step
// counter and the last summary are unchanged).
//
// Op failures never fail a step. The only errors are ContractErrors and
// context cancellation.
func (e *Engine) Step(ctx context.Context, p StepParams) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p = p.withDefaults()

	cands, precondErrs, err := e.enumerate(p.MaxCandidates)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		slog.Debug("no candidates, step skipped", "step", e.state.Steps+1)
		return nil, nil
	}

	ranked := e.score(cands)
	budget := NewBudget(math.Max(e.state.Energy, e.cfg.MinEnergyFloor))
	accepted, explored, fallback := e.selectCandidates(ranked, budget, p.KCommit)

	summary := &Summary{
		Candidates:      len(cands),
		Chosen:          len(accepted),
		ChosenPairs:     make([]Pair, 0, len(accepted)),
		BudgetAvailable: budget.Available(),
		BudgetSpent:     budget.Spent(),
		FallbackUsed:    fallback,
		Explored:        explored,
		Top:             topN(ranked, 3),
		Rewards:         make([]float64, 0, len(accepted)),
		Attempts:        make([]Attempt, 0, len(accepted)),
		PrecondErrors:   precondErrs,
	}

	for _, s := range accepted {
		attempt, novelProps, novelPair := e.apply(s)
		summary.ChosenPairs = append(summary.ChosenPairs, Pair{Op: s.cand.Op.Name(), Inputs: s.cand.Inputs})
		summary.Rewards = append(summary.Rewards, attempt.Reward)
		summary.Attempts = append(summary.Attempts, attempt)
		summary.NovelPropositions += novelProps
		if novelPair {
			summary.NovelApplications++
		}
	}

	e.state.Energy, e.state.Mass = e.valuator.Consolidate(e.state.Energy, e.state.Mass, summary.Rewards)

	if e.rng.Float64() < p.ReleaseProb {
		e.state.Energy, e.state.Mass = e.valuator.Release(e.state.Energy, e.state.Mass, p.ReleaseDM)
		summary.Released = true
	}

	e.state.Steps++
	summary.Step = e.state.Steps
	summary.SeenPropositions = e.state.seenProps.Len()
	summary.SeenApplications = e.state.seenApps.Len()
	summary.Energy = e.state.Energy
	summary.Mass = e.state.Mass
	e.state.last = summary

	e.logSummary(ctx, summary)
	for _, o := range e.observers {
		if err := o.OnStep(ctx, summary); err != nil {
			slog.Warn("observer failed", "step", summary.Step, "error", err)
		}
	}
	return summary, nil
}

// Run calls Step n times, stopping early only on error. Steps without
// candidates still count towards n.
func (e *Engine) Run(ctx context.Context, n int, p StepParams) error {
	for i := 0; i < n; i++ {
		if _, err := e.Step(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// enumerate collects candidates in registration order and stops as soon
// as limit have been collected. Later ops are not consulted once the cap
// binds, so earlier-registered ops take priority.
func (e *Engine) enumerate(limit int) ([]ops.Candidate, []string, error) {
	var (
		out  []ops.Candidate
		errs []string
	)
	for _, op := range e.registry.Ops() {
		if len(out) >= limit {
			break
		}
		if op == nil {
			return nil, nil, &ContractError{Message: "registry holds a nil op"}
		}
		tuples, err := callPrecond(op, e.graph)
		if err != nil {
			slog.Warn("precond failed", "op", op.Name(), "error", err)
			errs = append(errs, err.Error())
			continue
		}
		for _, in := range tuples {
			if len(out) >= limit {
				break
			}
			out = append(out, ops.Candidate{Op: op, Inputs: in})
		}
	}
	return out, errs, nil
}

// score assigns every candidate its priority and returns them sorted
// descending. The sort is stable: ties keep discovery order. Closure is
// fixed at 0 before application.
func (e *Engine) score(cands []ops.Candidate) []scored {
	aff := e.valuator.EOE(PredictedOutcome, 1.0)
	out := make([]scored, len(cands))
	for i, c := range cands {
		u := e.estimator.Estimate(e.state, c)
		out[i] = scored{
			cand:      c,
			w:         e.valuator.Priority(aff.Valence, aff.Arousal, u, 0),
			cost:      c.Op.Cost(),
			predicted: PredictedOutcome,
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].w > out[j].w })
	return out
}

// selectCandidates runs the exploration pass, then the greedy pass, then
// the fallback.
//
// Exploration: with probability epsilon, one candidate is drawn uniformly
// from the top-N whose cost fits. The first occurrence of that (op,
// inputs) pair in the ranking is skipped by the greedy pass; literal
// duplicates further down stay eligible.
func (e *Engine) selectCandidates(ranked []scored, budget *Budget, k int) ([]scored, bool, bool) {
	var (
		accepted []scored
		explored bool
		excluded = -1
	)

	if e.rng.Float64() < e.cfg.Epsilon {
		n := e.cfg.TopNExplore
		if n > len(ranked) {
			n = len(ranked)
		}
		var fit []scored
		for _, s := range ranked[:n] {
			if budget.Fits(s.cost) {
				fit = append(fit, s)
			}
		}
		if len(fit) > 0 {
			pick := fit[e.rng.Intn(len(fit))]
			budget.Debit(pick.cost)
			accepted = append(accepted, pick)
			explored = true
			for i, s := range ranked {
				if s.cand.Same(pick.cand) {
					excluded = i
					break
				}
			}
			slog.Debug("exploring", "candidate", pick.cand.String(), "score", pick.w)
		}
	}

	for i, s := range ranked {
		if len(accepted) >= k {
			break
		}
		if i == excluded {
			continue
		}
		if budget.Debit(s.cost) {
			accepted = append(accepted, s)
		}
	}

	if len(accepted) == 0 && e.cfg.ForceGreedyIfEmpty && len(ranked) > 0 {
		top := ranked[0]
		budget.Force(top.cost)
		slog.Debug("greedy fallback", "candidate", top.cand.String(), "cost", top.cost, "budget", budget.Available())
		return []scored{top}, explored, true
	}
	return accepted, explored, false
}

// apply runs one accepted candidate and shapes its reward.
func (e *Engine) apply(s scored) (Attempt, int, bool) {
	op, in := s.cand.Op, s.cand.Inputs
	name := op.Name()
	attempt := Attempt{Op: name, Inputs: in}

	preNodes := e.graph.NodeCount()
	preEdges := e.graph.EdgeCount()

	out, err := callApply(op, e.graph, in)
	if err != nil {
		// Partial mutations stay: Apply has no transaction boundary.
		slog.Warn("apply failed", "op", name, "inputs", in.String(), "error", err)
		attempt.Err = err
		attempt.Error = err.Error()
		attempt.NewNodes = e.graph.NodeCount() - preNodes
		attempt.NewEdges = e.graph.EdgeCount() - preEdges
		return attempt, 0, false
	}
	attempt.Outputs = out

	ok, invErr := callInvariants(op, e.graph, in, out)
	if invErr != nil {
		slog.Warn("invariants panicked", "op", name, "error", invErr)
	}
	attempt.InvariantsOK = ok

	perceived := 0.0
	if ok {
		perceived = 1.0
	}
	aff := e.valuator.EOE(s.predicted, perceived)
	attempt.Affect = aff
	base := math.Max(0, 0.6*aff.Valence+0.4*aff.Arousal+closure(e.graph, out))

	newNodes := e.graph.NodesSince(preNodes)
	newEdges := e.graph.EdgeCount() - preEdges
	attempt.NewNodes = len(newNodes)
	attempt.NewEdges = newEdges

	breakdown, novelProps, novelPair := e.shape(name, in, out, base, newNodes, newEdges)
	attempt.Breakdown = breakdown
	attempt.Reward = breakdown.Total

	e.state.applied[name]++
	e.state.recent.Push(name)

	slog.Debug("applied",
		"op", name,
		"inputs", in.String(),
		"invariants_ok", ok,
		"reward", attempt.Reward,
		"new_nodes", len(newNodes),
		"new_edges", newEdges,
	)
	return attempt, novelProps, novelPair
}

func (e *Engine) logSummary(ctx context.Context, s *Summary) {
	level := slog.LevelDebug
	if e.cfg.Verbose {
		level = slog.LevelInfo
	}
	slog.Log(ctx, level, "step complete",
		"step", s.Step,
		"candidates", s.Candidates,
		"chosen", s.Chosen,
		"budget_spent", s.BudgetSpent,
		"budget_available", s.BudgetAvailable,
		"fallback", s.FallbackUsed,
		"explored", s.Explored,
		"reward", s.TotalReward(),
		"energy", s.Energy,
		"mass", s.Mass,
	)
}

func topN(ranked []scored, n int) []ScoredCandidate {
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]ScoredCandidate, n)
	for i, s := range ranked[:n] {
		out[i] = ScoredCandidate{
			Op:     s.cand.Op.Name(),
			Inputs: s.cand.Inputs,
			Score:  s.w,
			Cost:   s.cost,
		}
	}
	return out
}
