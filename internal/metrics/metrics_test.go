package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sophon/internal/engine"
)

func summary() *engine.Summary {
	return &engine.Summary{
		Step:             1,
		Candidates:       4,
		FallbackUsed:     true,
		Released:         true,
		Energy:           9.5,
		Mass:             0.4,
		SeenApplications: 2,
		SeenPropositions: 1,
		PrecondErrors:    []string{"PRECOND_FAILED: X: boom"},
		Attempts: []engine.Attempt{
			{Op: "BookI.Prop1", InvariantsOK: true, Reward: 1.9},
			{Op: "BookI.Prop1", InvariantsOK: false, Reward: 0.2},
			{Op: "Postulate3.Circle", Err: errors.New("boom"), Error: "boom"},
		},
	}
}

func TestRecorder_OnStep(t *testing.T) {
	r := NewRecorder()

	require.NoError(t, r.OnStep(context.Background(), summary()))
	require.NoError(t, r.OnStep(context.Background(), &engine.Summary{Step: 2, Explored: true, Energy: 8}))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.steps))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.explorations))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.releases))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.precondErrors))
	assert.Equal(t, 8.0, testutil.ToFloat64(r.energy), "gauges hold the latest step")
	assert.Equal(t, 0.0, testutil.ToFloat64(r.mass))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.applications.WithLabelValues("BookI.Prop1", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.applications.WithLabelValues("BookI.Prop1", OutcomeInvariantsFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.applications.WithLabelValues("Postulate3.Circle", OutcomeApplyFailed)))
}

func TestRecorder_RewardSkipsFailedApplications(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.OnStep(context.Background(), summary()))

	assert.Equal(t, 1, testutil.CollectAndCount(r.reward))

	expected := `
# HELP sophon_engine_reward Distribution of per-application rewards
# TYPE sophon_engine_reward histogram
sophon_engine_reward_bucket{le="0"} 0
sophon_engine_reward_bucket{le="0.1"} 0
sophon_engine_reward_bucket{le="0.25"} 1
sophon_engine_reward_bucket{le="0.5"} 1
sophon_engine_reward_bucket{le="0.75"} 1
sophon_engine_reward_bucket{le="1"} 1
sophon_engine_reward_bucket{le="1.5"} 1
sophon_engine_reward_bucket{le="2"} 2
sophon_engine_reward_bucket{le="3"} 2
sophon_engine_reward_bucket{le="+Inf"} 2
sophon_engine_reward_sum 2.1
sophon_engine_reward_count 2
`
	assert.NoError(t, testutil.CollectAndCompare(r.reward, strings.NewReader(expected)))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.OnStep(context.Background(), summary()))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "sophon_engine_steps_total 1")
	assert.Contains(t, body, `sophon_engine_applications_total{op="BookI.Prop1",outcome="ok"} 1`)
	assert.Contains(t, body, "sophon_engine_energy 9.5")
}

func TestRecorder_IndependentRegistries(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	require.NoError(t, a.OnStep(context.Background(), summary()))

	assert.Equal(t, 1.0, testutil.ToFloat64(a.steps))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.steps))
}
