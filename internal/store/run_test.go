package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sophon/internal/canon"
	"github.com/roach88/sophon/internal/engine"
	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
	"github.com/roach88/sophon/internal/ops/euclid"
)

type testConfig struct {
	Epsilon float64 `json:"epsilon"`
	Steps   int     `json:"steps"`
}

func testSummary(step int) *engine.Summary {
	return &engine.Summary{
		Step:         step,
		Candidates:   3,
		Chosen:       2,
		ChosenPairs:  []engine.Pair{{Op: "BookI.Prop1", Inputs: ops.Inputs{3}}, {Op: "Postulate3.Circle", Inputs: ops.Inputs{1, 2}}},
		FallbackUsed: step == 1,
		Released:     true,
		Rewards:      []float64{1.5, 0},
		Energy:       9.7,
		Mass:         0.3,
		Attempts: []engine.Attempt{
			{Op: "BookI.Prop1", Inputs: ops.Inputs{3}, InvariantsOK: true, Reward: 1.5,
				Outputs: ops.Outputs{"triangle": 5}},
			{Op: "Postulate3.Circle", Inputs: ops.Inputs{1, 2}, Error: "APPLY_FAILED: boom"},
		},
	}
}

func TestCreateRun(t *testing.T) {
	s := createTestStore(t, "run-a", "run-b")
	ctx := context.Background()
	cfg := testConfig{Epsilon: 0.1, Steps: 100}

	a, err := s.CreateRun(ctx, 42, cfg)
	require.NoError(t, err)
	b, err := s.CreateRun(ctx, 42, cfg)
	require.NoError(t, err)

	assert.Equal(t, "run-a", a.ID)
	assert.Equal(t, int64(1), a.Seq)
	assert.Equal(t, int64(2), b.Seq)
	assert.Equal(t, StatusRunning, a.Status)
	assert.JSONEq(t, `{"epsilon":0.1,"steps":100}`, a.Config)
	assert.Equal(t, a.ConfigHash, b.ConfigHash, "same seed and config share a fingerprint")
	assert.Len(t, a.ConfigHash, 64)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-a", runs[0].ID)
	assert.Equal(t, "run-b", runs[1].ID)
}

func TestCreateRun_SeedChangesFingerprint(t *testing.T) {
	s := createTestStore(t, "run-a", "run-b")
	ctx := context.Background()

	a, err := s.CreateRun(ctx, 1, testConfig{})
	require.NoError(t, err)
	b, err := s.CreateRun(ctx, 2, testConfig{})
	require.NoError(t, err)

	assert.NotEqual(t, a.ConfigHash, b.ConfigHash)
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestGetRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	assert.True(t, IsNotFound(err))

	err = s.FinishRun(context.Background(), "missing")
	assert.True(t, IsNotFound(err))
}

func TestWriteStep_RoundTrip(t *testing.T) {
	s := createTestStore(t, "run-1")
	ctx := context.Background()
	run, err := s.CreateRun(ctx, 7, testConfig{})
	require.NoError(t, err)

	require.NoError(t, s.WriteStep(ctx, run.ID, testSummary(1)))
	require.NoError(t, s.WriteStep(ctx, run.ID, testSummary(2)))

	steps, err := s.ReadSteps(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, 1, steps[0].Step)
	assert.True(t, steps[0].FallbackUsed)
	assert.False(t, steps[1].FallbackUsed)
	assert.InDelta(t, 1.5, steps[0].Reward, 1e-12)
	assert.True(t, steps[0].Released)

	decoded, err := steps[1].Decode()
	require.NoError(t, err)
	assert.Equal(t, testSummary(2).ChosenPairs, decoded.ChosenPairs)
	assert.Equal(t, hypergraph.ID(5), decoded.Attempts[0].Outputs["triangle"])

	apps, err := s.ReadApplications(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, apps, 4)
	assert.Equal(t, "BookI.Prop1", apps[0].Op)
	assert.Equal(t, ops.Inputs{3}, apps[0].Inputs)
	assert.Equal(t, canon.ApplicationKey("BookI.Prop1", []int64{3}), apps[0].Key)
	assert.True(t, apps[0].InvariantsOK)
	assert.Equal(t, "APPLY_FAILED: boom", apps[1].Error)
	assert.Equal(t, apps[0].Key, apps[2].Key, "same pair, same key across steps")

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Steps)
	assert.InDelta(t, 9.7, got.Energy, 1e-12)
	assert.InDelta(t, 0.3, got.Mass, 1e-12)
}

func TestWriteStep_Idempotent(t *testing.T) {
	s := createTestStore(t, "run-1")
	ctx := context.Background()
	run, err := s.CreateRun(ctx, 7, testConfig{})
	require.NoError(t, err)

	require.NoError(t, s.WriteStep(ctx, run.ID, testSummary(1)))
	require.NoError(t, s.WriteStep(ctx, run.ID, testSummary(1)))

	apps, err := s.ReadApplications(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, apps, 2)
}

func TestWriteStep_UnknownRun(t *testing.T) {
	s := createTestStore(t)
	err := s.WriteStep(context.Background(), "missing", testSummary(1))
	assert.Error(t, err, "foreign key enforced")
}

func TestFinishRun(t *testing.T) {
	s := createTestStore(t, "run-1")
	ctx := context.Background()
	run, err := s.CreateRun(ctx, 7, testConfig{})
	require.NoError(t, err)

	require.NoError(t, s.FinishRun(ctx, run.ID))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, got.Status)
}

func TestSaveLoadGraph(t *testing.T) {
	s := createTestStore(t, "run-1")
	ctx := context.Background()
	run, err := s.CreateRun(ctx, 7, testConfig{})
	require.NoError(t, err)

	g := hypergraph.New()
	_, _, line := euclid.SeedSegment(g)
	_, err = euclid.BookIProp1{}.Apply(g, ops.Inputs{line})
	require.NoError(t, err)

	require.NoError(t, s.SaveGraph(ctx, run.ID, g))
	require.NoError(t, s.SaveGraph(ctx, run.ID, g), "saving again replaces the snapshot")

	loaded, err := s.LoadGraph(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, g.NodeCount(), loaded.NodeCount())
	assert.Equal(t, g.EdgeCount(), loaded.EdgeCount())

	for _, e := range g.Edges() {
		got, ok := loaded.Edge(e.ID)
		require.True(t, ok)
		assert.Equal(t, e.Type, got.Type)
		assert.Equal(t, e.Nodes, got.Nodes)
	}

	// The loaded graph continues its id sequences and stays usable by ops.
	next := loaded.AddNode(hypergraph.NodePoint, hypergraph.Attrs{"x": 3.0, "y": 0.0})
	assert.Equal(t, hypergraph.ID(g.NodeCount()+1), next)

	tuples, err := euclid.BookIProp10{}.Precond(loaded)
	require.NoError(t, err)
	assert.Len(t, tuples, 1)
}

func TestRecorder_PersistsEngineSteps(t *testing.T) {
	s := createTestStore(t, "run-1")
	ctx := context.Background()
	run, err := s.CreateRun(ctx, 3, testConfig{})
	require.NoError(t, err)

	g := hypergraph.New()
	euclid.SeedSegment(g)
	reg := ops.NewRegistry()
	euclid.Register(reg)

	rec := NewRecorder(s, run.ID)
	e, err := engine.New(g, reg, engine.NewRand(3), engine.DefaultConfig(), engine.WithObserver(rec))
	require.NoError(t, err)
	require.NoError(t, e.Run(ctx, 5, engine.DefaultStepParams()))

	steps, err := s.ReadSteps(ctx, rec.RunID())
	require.NoError(t, err)
	assert.Len(t, steps, 5)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Steps)
	assert.InDelta(t, e.State().Energy, got.Energy, 1e-12)
}
