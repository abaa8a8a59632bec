package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
	"github.com/roach88/sophon/internal/testutil"
	"github.com/roach88/sophon/internal/valuator"
)

// baseReward is the base reward of a passing application: EOE(0.8, 1.0)
// blended as 0.6*valence + 0.4*arousal, without closure.
var baseReward = 0.6*math.Tanh(0.4) + 0.4*0.2

func newTestEngine(t *testing.T, cfg Config, rng Rand, op ...ops.Op) *Engine {
	t.Helper()
	reg := ops.NewRegistry()
	for _, o := range op {
		reg.Add(o)
	}
	e, err := New(hypergraph.New(), reg, rng, cfg)
	require.NoError(t, err)
	return e
}

// quietConfig disables exploration so selection is purely greedy.
func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.Epsilon = 0
	return cfg
}

func noRelease(k int) StepParams {
	p := DefaultStepParams()
	p.KCommit = k
	p.ReleaseProb = 0
	return p
}

func TestNew_ContractErrors(t *testing.T) {
	g := hypergraph.New()
	reg := ops.NewRegistry()
	rng := testutil.FixedRand(0.5)

	tests := []struct {
		name string
		g    *hypergraph.Graph
		reg  *ops.Registry
		rng  Rand
		c2   float64
	}{
		{"nil graph", nil, reg, rng, 1},
		{"nil registry", g, nil, rng, 1},
		{"nil rand", g, reg, nil, 1},
		{"zero c2", g, reg, rng, 0},
		{"negative c2", g, reg, rng, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.C2 = tt.c2
			_, err := New(tt.g, tt.reg, tt.rng, cfg)
			require.Error(t, err)
			assert.True(t, IsContractError(err))
		})
	}
}

func TestNew_ClampsNegativeInitialState(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialEnergy = -3
	cfg.InitialMass = -1

	e := newTestEngine(t, cfg, testutil.FixedRand(0.5))

	assert.Equal(t, 0.0, e.State().Energy)
	assert.Equal(t, 0.0, e.State().Mass)
}

func TestStep_NoCandidatesIsNoOp(t *testing.T) {
	rng := testutil.NewScriptedRand()
	op := &testutil.StubOp{OpName: "Idle", Tuples: []ops.Inputs{}}
	e := newTestEngine(t, DefaultConfig(), rng, op)

	summary, err := e.Step(context.Background(), DefaultStepParams())

	require.NoError(t, err)
	assert.Nil(t, summary)
	assert.Equal(t, DefaultInitialEnergy, e.State().Energy)
	assert.Equal(t, 0.0, e.State().Mass)
	assert.Equal(t, 0, e.State().Steps)
	assert.Equal(t, 0, rng.FloatCalls, "no randomness consumed")

	_, ok := e.State().Last()
	assert.False(t, ok)
}

func TestStep_CancelledContext(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), testutil.FixedRand(0.5), &testutil.StubOp{OpName: "A"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Step(ctx, DefaultStepParams())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, e.State().Steps)
}

func TestStep_GreedyFallback(t *testing.T) {
	cfg := quietConfig()
	cfg.InitialEnergy = 0
	op := &testutil.StubOp{OpName: "Expensive", OpCost: 5}
	e := newTestEngine(t, cfg, testutil.FixedRand(0.5), op)

	summary, err := e.Step(context.Background(), noRelease(4))
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.True(t, summary.FallbackUsed)
	assert.Equal(t, 1, summary.Chosen)
	assert.Equal(t, 0.0, summary.BudgetAvailable)
	assert.Equal(t, 5.0, summary.BudgetSpent, "forced spend may exceed the budget")
	assert.Len(t, op.Applied, 1)
}

func TestStep_NoFallbackWhenDisabled(t *testing.T) {
	cfg := quietConfig()
	cfg.InitialEnergy = 0
	cfg.ForceGreedyIfEmpty = false
	op := &testutil.StubOp{OpName: "Expensive", OpCost: 5}
	e := newTestEngine(t, cfg, testutil.FixedRand(0.5), op)

	summary, err := e.Step(context.Background(), noRelease(4))
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.False(t, summary.FallbackUsed)
	assert.Equal(t, 0, summary.Chosen)
	assert.Empty(t, op.Applied)
	assert.Equal(t, 1, e.State().Steps, "a step with candidates counts even if nothing runs")
}

func TestStep_EnergyFloorFundsSelection(t *testing.T) {
	cfg := quietConfig()
	cfg.InitialEnergy = 0
	cfg.MinEnergyFloor = 2
	op := &testutil.StubOp{OpName: "A", Tuples: []ops.Inputs{{1}, {2}, {3}}}
	e := newTestEngine(t, cfg, testutil.FixedRand(0.5), op)

	summary, err := e.Step(context.Background(), noRelease(4))
	require.NoError(t, err)

	assert.Equal(t, 2.0, summary.BudgetAvailable)
	assert.Equal(t, 2, summary.Chosen)
	assert.False(t, summary.FallbackUsed)
}

func TestStep_KCommitBoundsApplications(t *testing.T) {
	op := &testutil.StubOp{OpName: "A", Tuples: []ops.Inputs{{1}, {2}, {3}, {4}, {5}}}
	e := newTestEngine(t, quietConfig(), testutil.FixedRand(0.5), op)

	summary, err := e.Step(context.Background(), noRelease(2))
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Candidates)
	assert.Equal(t, 2, summary.Chosen)
	assert.Equal(t, []Pair{{Op: "A", Inputs: ops.Inputs{1}}, {Op: "A", Inputs: ops.Inputs{2}}}, summary.ChosenPairs,
		"equal scores keep discovery order")
	assert.Equal(t, 2.0, summary.BudgetSpent)
}

func TestEnumerate_CapHonorsRegistrationOrder(t *testing.T) {
	a := &testutil.StubOp{OpName: "A", Tuples: []ops.Inputs{{1}, {2}, {3}}}
	b := &testutil.StubOp{OpName: "B", Tuples: []ops.Inputs{{4}, {5}, {6}}}
	c := &testutil.StubOp{OpName: "C", PrecondFn: func(*hypergraph.Graph) ([]ops.Inputs, error) {
		t.Fatal("precond consulted after the cap was reached")
		return nil, nil
	}}
	e := newTestEngine(t, DefaultConfig(), testutil.FixedRand(0.5), a, b, c)

	cands, errs, err := e.enumerate(4)
	require.NoError(t, err)
	assert.Empty(t, errs)

	var got []string
	for _, cand := range cands {
		got = append(got, cand.String())
	}
	assert.Equal(t, []string{"A(1)", "A(2)", "A(3)", "B(4)"}, got)
}

func TestStep_PrecondFailuresAreIsolated(t *testing.T) {
	failing := &testutil.StubOp{OpName: "Failing", PrecondFn: func(*hypergraph.Graph) ([]ops.Inputs, error) {
		return nil, errors.New("no points")
	}}
	panicking := &testutil.StubOp{OpName: "Panicking", PrecondFn: func(*hypergraph.Graph) ([]ops.Inputs, error) {
		panic("index out of range")
	}}
	healthy := &testutil.StubOp{OpName: "Healthy"}
	e := newTestEngine(t, quietConfig(), testutil.FixedRand(0.5), failing, panicking, healthy)

	summary, err := e.Step(context.Background(), noRelease(4))
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Len(t, summary.PrecondErrors, 2)
	assert.Contains(t, summary.PrecondErrors[0], "no points")
	assert.Contains(t, summary.PrecondErrors[1], "panic")
	assert.Equal(t, 1, summary.Candidates)
	assert.Len(t, healthy.Applied, 1)
}

func TestCallPrecond_WrapsErrors(t *testing.T) {
	op := &testutil.StubOp{OpName: "Failing", PrecondFn: func(*hypergraph.Graph) ([]ops.Inputs, error) {
		return nil, errors.New("boom")
	}}

	_, err := callPrecond(op, hypergraph.New())

	require.Error(t, err)
	assert.True(t, IsPrecondError(err))
	assert.False(t, IsApplyError(err))
	assert.EqualError(t, errors.Unwrap(err), "boom")
}

func TestStep_ApplyFailuresAreIsolated(t *testing.T) {
	broken := &testutil.StubOp{OpName: "Broken", ApplyFn: func(g *hypergraph.Graph, _ ops.Inputs) (ops.Outputs, error) {
		g.AddNode(hypergraph.NodePoint, nil)
		return nil, errors.New("degenerate circle")
	}}
	panicking := &testutil.StubOp{OpName: "Panicking", ApplyFn: func(*hypergraph.Graph, ops.Inputs) (ops.Outputs, error) {
		panic("nil map")
	}}
	healthy := &testutil.StubOp{OpName: "Healthy"}
	e := newTestEngine(t, quietConfig(), testutil.FixedRand(0.5), broken, panicking, healthy)

	summary, err := e.Step(context.Background(), noRelease(4))
	require.NoError(t, err)
	require.Len(t, summary.Attempts, 3)

	first := summary.Attempts[0]
	assert.True(t, first.Failed())
	assert.True(t, IsApplyError(first.Err))
	assert.Equal(t, 0.0, first.Reward)
	assert.Equal(t, 1, first.NewNodes, "partial mutation stays in the graph")

	second := summary.Attempts[1]
	assert.True(t, IsApplyError(second.Err))
	assert.Contains(t, second.Error, "panic")

	third := summary.Attempts[2]
	assert.False(t, third.Failed())
	assert.Greater(t, third.Reward, 0.0)

	assert.Equal(t, 0, e.State().Applications("Broken"))
	assert.Equal(t, 0, e.State().Applications("Panicking"))
	assert.Equal(t, 1, e.State().Applications("Healthy"))
	assert.Equal(t, []string{"Healthy"}, e.State().Recent())
	assert.Equal(t, 1, e.State().SeenApplications())
}

func TestStep_FailedInvariantsScoreLow(t *testing.T) {
	op := &testutil.StubOp{OpName: "Wrong", InvariantsFn: func(*hypergraph.Graph, ops.Outputs) bool { return false }}
	e := newTestEngine(t, quietConfig(), testutil.FixedRand(0.5), op)

	summary, err := e.Step(context.Background(), noRelease(1))
	require.NoError(t, err)

	a := summary.Attempts[0]
	assert.False(t, a.InvariantsOK)
	assert.Less(t, a.Affect.Valence, 0.0)
	assert.Equal(t, 0.0, a.Breakdown.Base, "negative base is floored at zero")
}

func TestStep_PanickingInvariantsCountAsFailed(t *testing.T) {
	op := &testutil.StubOp{OpName: "Fragile", InvariantsFn: func(*hypergraph.Graph, ops.Outputs) bool { panic("bad cast") }}
	e := newTestEngine(t, quietConfig(), testutil.FixedRand(0.5), op)

	summary, err := e.Step(context.Background(), noRelease(1))
	require.NoError(t, err)

	assert.False(t, summary.Attempts[0].InvariantsOK)
	assert.False(t, summary.Attempts[0].Failed())
}

func TestStep_RewardBreakdownFirstAndRepeat(t *testing.T) {
	op := &testutil.StubOp{OpName: "Stub"}
	e := newTestEngine(t, quietConfig(), testutil.FixedRand(0.5), op)
	ctx := context.Background()

	first, err := e.Step(ctx, noRelease(1))
	require.NoError(t, err)
	b := first.Attempts[0].Breakdown

	assert.InDelta(t, baseReward, b.Base, 1e-9)
	assert.InDelta(t, 0.02, b.Growth, 1e-9)
	assert.InDelta(t, 0.15, b.Diversity, 1e-9, "absent bonus only: no previous op")
	assert.InDelta(t, 0.2, b.Novelty, 1e-9)
	assert.Equal(t, 0.0, b.RepeatPenalty)
	assert.InDelta(t, baseReward+0.02+0.15+0.2, b.Total, 1e-9)
	assert.Equal(t, 1, first.NovelApplications)

	second, err := e.Step(ctx, noRelease(1))
	require.NoError(t, err)
	b = second.Attempts[0].Breakdown

	assert.Equal(t, 0.0, b.Diversity)
	assert.Equal(t, 0.0, b.Novelty)
	assert.InDelta(t, -0.15, b.RepeatPenalty, 1e-9)
	assert.InDelta(t, baseReward+0.02-0.15, b.Total, 1e-9)
	assert.Equal(t, 0, second.NovelApplications)
}

func TestStep_RepeatPenaltySaturates(t *testing.T) {
	op := &testutil.StubOp{OpName: "Stub"}
	e := newTestEngine(t, quietConfig(), testutil.FixedRand(0.5), op)

	want := []float64{0, -0.15, -0.30, -0.45, -0.60, -0.75, -0.8, -0.8}
	for i, w := range want {
		summary, err := e.Step(context.Background(), noRelease(1))
		require.NoError(t, err)
		assert.InDelta(t, w, summary.Attempts[0].Breakdown.RepeatPenalty, 1e-9, "application %d", i+1)
		assert.GreaterOrEqual(t, summary.Attempts[0].Reward, 0.0)
	}
}

func TestStep_DiversityBonusOnSwitch(t *testing.T) {
	a := &testutil.StubOp{OpName: "A"}
	b := &testutil.StubOp{OpName: "B"}
	e := newTestEngine(t, quietConfig(), testutil.FixedRand(0.5), a, b)

	summary, err := e.Step(context.Background(), noRelease(2))
	require.NoError(t, err)
	require.Len(t, summary.Attempts, 2)

	assert.InDelta(t, 0.15, summary.Attempts[0].Breakdown.Diversity, 1e-9)
	assert.InDelta(t, 0.25+0.15, summary.Attempts[1].Breakdown.Diversity, 1e-9)
}

func TestStep_PropositionRewards(t *testing.T) {
	op := &testutil.StubOp{OpName: "Conclude", ApplyFn: func(g *hypergraph.Graph, _ ops.Inputs) (ops.Outputs, error) {
		p := g.AddNode(hypergraph.NodeProposition, hypergraph.Attrs{"name": "conclusion"})
		c := g.AddNode(hypergraph.NodeConcept, nil)
		g.AddEdge(hypergraph.EdgeSupports, []hypergraph.ID{c, p}, nil)
		return ops.Outputs{"result": p}, nil
	}}
	e := newTestEngine(t, quietConfig(), testutil.FixedRand(0.5), op)

	summary, err := e.Step(context.Background(), noRelease(1))
	require.NoError(t, err)
	b := summary.Attempts[0].Breakdown

	assert.InDelta(t, baseReward+0.5, b.Base, 1e-9, "closure from a proposition-typed output")
	assert.InDelta(t, 0.3, b.Propositions, 1e-9)
	assert.InDelta(t, 0.02*2+0.02, b.Growth, 1e-9)
	assert.InDelta(t, 0.1+0.05, b.Structure, 1e-9)
	assert.Equal(t, 1, summary.NovelPropositions)
	assert.Equal(t, 1, summary.SeenPropositions)
}

func TestStep_ExplorationPick(t *testing.T) {
	a := &testutil.StubOp{OpName: "A"}
	b := &testutil.StubOp{OpName: "B"}

	// Draw order: uncertainty A, uncertainty B, epsilon roll, release roll.
	rng := testutil.NewScriptedRand(0.9, 0.1, 0.0, 0.99).WithInts(1)
	e := newTestEngine(t, DefaultConfig(), rng, a, b)

	summary, err := e.Step(context.Background(), StepParams{KCommit: 1, ReleaseProb: 0.5})
	require.NoError(t, err)

	assert.True(t, summary.Explored)
	assert.Equal(t, []Pair{{Op: "B", Inputs: ops.Inputs{}}}, summary.ChosenPairs)
	assert.Equal(t, "A", summary.Top[0].Op, "A ranks first")
	assert.False(t, summary.Released)
	assert.Equal(t, 4, rng.FloatCalls)
	assert.Equal(t, 1, rng.IntnCalls)
}

func TestStep_ExplorationPickCountsTowardsK(t *testing.T) {
	a := &testutil.StubOp{OpName: "A"}
	b := &testutil.StubOp{OpName: "B"}
	rng := testutil.NewScriptedRand(0.9, 0.1, 0.0, 0.99).WithInts(1)
	e := newTestEngine(t, DefaultConfig(), rng, a, b)

	summary, err := e.Step(context.Background(), StepParams{KCommit: 2, ReleaseProb: 0.5})
	require.NoError(t, err)

	assert.Equal(t, []Pair{{Op: "B", Inputs: ops.Inputs{}}, {Op: "A", Inputs: ops.Inputs{}}}, summary.ChosenPairs,
		"explored pick is not selected twice")
	assert.Len(t, b.Applied, 1)
}

func TestStep_ExplorationSkippedOnHighRoll(t *testing.T) {
	a := &testutil.StubOp{OpName: "A"}
	rng := testutil.NewScriptedRand(0.5, 0.95, 0.99)
	e := newTestEngine(t, DefaultConfig(), rng, a)

	summary, err := e.Step(context.Background(), StepParams{KCommit: 1, ReleaseProb: 0.5})
	require.NoError(t, err)

	assert.False(t, summary.Explored)
	assert.Equal(t, 0, rng.IntnCalls)
	assert.Equal(t, 3, rng.FloatCalls)
}

func TestStep_Release(t *testing.T) {
	op := &testutil.StubOp{OpName: "A"}
	e := newTestEngine(t, quietConfig(), testutil.FixedRand(0.5), op)
	v := e.Valuator()

	p := noRelease(1)
	p.ReleaseProb = 1
	p.ReleaseDM = 0.1

	summary, err := e.Step(context.Background(), p)
	require.NoError(t, err)
	require.True(t, summary.Released)

	wantE, wantM := v.Consolidate(DefaultInitialEnergy, 0, summary.Rewards)
	wantE, wantM = v.Release(wantE, wantM, 0.1)
	assert.InDelta(t, wantE, e.State().Energy, 1e-12)
	assert.InDelta(t, wantM, e.State().Mass, 1e-12)
	assert.Equal(t, e.State().Energy, summary.Energy)
}

func TestStep_ConsolidationWithoutRelease(t *testing.T) {
	op := &testutil.StubOp{OpName: "A"}
	e := newTestEngine(t, quietConfig(), testutil.FixedRand(0.5), op)

	summary, err := e.Step(context.Background(), noRelease(1))
	require.NoError(t, err)

	assert.False(t, summary.Released)
	r := summary.TotalReward()
	assert.InDelta(t, DefaultInitialEnergy-valuator.DefaultAlpha*r, e.State().Energy, 1e-12)
	assert.InDelta(t, valuator.DefaultAlpha*r, e.State().Mass, 1e-12)
	assert.GreaterOrEqual(t, e.State().Energy, 0.0)
}

func TestStep_ObserversSeeEverySummary(t *testing.T) {
	op := &testutil.StubOp{OpName: "A"}

	var seen []int
	failing := ObserverFunc(func(context.Context, *Summary) error { return errors.New("disk full") })
	recording := ObserverFunc(func(_ context.Context, s *Summary) error {
		seen = append(seen, s.Step)
		return nil
	})

	reg := ops.NewRegistry()
	reg.Add(op)
	e, err := New(hypergraph.New(), reg, testutil.FixedRand(0.5), quietConfig(),
		WithObserver(failing), WithObserver(recording))
	require.NoError(t, err)

	require.NoError(t, e.Run(context.Background(), 3, noRelease(1)))
	assert.Equal(t, []int{1, 2, 3}, seen)

	last, ok := e.State().Last()
	require.True(t, ok)
	assert.Equal(t, 3, last.Step)
}

func TestWithEstimator_ReordersCandidates(t *testing.T) {
	a := &testutil.StubOp{OpName: "A"}
	b := &testutil.StubOp{OpName: "B"}
	favourB := EstimatorFunc(func(_ *State, c ops.Candidate) float64 {
		if c.Op.Name() == "B" {
			return 1
		}
		return 0
	})

	reg := ops.NewRegistry()
	reg.Add(a)
	reg.Add(b)
	e, err := New(hypergraph.New(), reg, testutil.FixedRand(0.5), quietConfig(), WithEstimator(favourB))
	require.NoError(t, err)

	summary, err := e.Step(context.Background(), noRelease(1))
	require.NoError(t, err)
	assert.Equal(t, "B", summary.ChosenPairs[0].Op)
}

func TestNoveltyEstimator(t *testing.T) {
	op := &testutil.StubOp{OpName: "A"}
	e := newTestEngine(t, quietConfig(), testutil.FixedRand(0.5), op)
	cand := ops.Candidate{Op: op, Inputs: ops.Inputs{}}

	assert.Equal(t, 1.0, NoveltyEstimator{}.Estimate(e.State(), cand))

	_, err := e.Step(context.Background(), noRelease(1))
	require.NoError(t, err)
	assert.Equal(t, 0.5, NoveltyEstimator{}.Estimate(e.State(), cand))
}

func TestStep_Determinism(t *testing.T) {
	run := func() []Pair {
		a := &testutil.StubOp{OpName: "A", Tuples: []ops.Inputs{{1}, {2}}}
		b := &testutil.StubOp{OpName: "B", Tuples: []ops.Inputs{{3}}}
		e := newTestEngine(t, DefaultConfig(), NewRand(42), a, b)

		var pairs []Pair
		for i := 0; i < 20; i++ {
			s, err := e.Step(context.Background(), DefaultStepParams())
			require.NoError(t, err)
			pairs = append(pairs, s.ChosenPairs...)
		}
		return pairs
	}

	assert.Equal(t, run(), run())
}
