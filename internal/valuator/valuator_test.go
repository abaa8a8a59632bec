package valuator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func TestEOE_NoSurprise(t *testing.T) {
	a := New(1.0).EOE(0.5, 0.5)
	assert.Equal(t, Affect{}, a)
}

func TestEOE_PositiveSurprise(t *testing.T) {
	a := New(1.0).EOE(0, 1)
	assert.InDelta(t, 1.0, a.Error, eps)
	assert.InDelta(t, math.Tanh(2), a.Valence, eps)
	assert.InDelta(t, 0.964, a.Valence, 1e-3)
	assert.InDelta(t, 1.0, a.Arousal, eps)
}

func TestEOE_NegativeSurpriseKeepsArousalPositive(t *testing.T) {
	a := New(1.0).EOE(0.8, 0.0)
	assert.InDelta(t, -0.8, a.Error, eps)
	assert.Less(t, a.Valence, 0.0)
	assert.Greater(t, a.Valence, -1.0)
	assert.InDelta(t, 0.8, a.Arousal, eps)
}

func TestPriority_DotProduct(t *testing.T) {
	v := Valuator{Weights: Weights{Valence: 1, Arousal: 2, Uncertainty: 3, Closure: 4}}
	assert.InDelta(t, 1*0.5+2*0.25+3*0.1+4*1.0, v.Priority(0.5, 0.25, 0.1, 1.0), eps)
	assert.Equal(t, 0.0, v.Priority(0, 0, 0, 0))
}

func TestConsolidate(t *testing.T) {
	v := Valuator{C2: 1.0, Alpha: 0.2}
	e, m := v.Consolidate(10, 0, []float64{1, 1})
	assert.InDelta(t, 9.6, e, eps)
	assert.InDelta(t, 0.4, m, eps)
}

func TestConsolidate_EnergyFloorsAtZero(t *testing.T) {
	v := Valuator{C2: 2.0, Alpha: 0.5}
	e, m := v.Consolidate(1, 0, []float64{10})
	assert.Equal(t, 0.0, e)
	assert.InDelta(t, 2.5, m, eps)
}

func TestConsolidate_NoRewards(t *testing.T) {
	e, m := New(1.0).Consolidate(3, 1, nil)
	assert.Equal(t, 3.0, e)
	assert.Equal(t, 1.0, m)
}

func TestRelease(t *testing.T) {
	v := Valuator{C2: 1.0}

	e, m := v.Release(9.6, 0.4, 0.1)
	assert.InDelta(t, 9.7, e, eps)
	assert.InDelta(t, 0.3, m, eps)

	e, m = v.Release(e, m, 10)
	assert.InDelta(t, 10.0, e, eps)
	assert.InDelta(t, 0.0, m, eps)
}

func TestRelease_NeverNegative(t *testing.T) {
	v := Valuator{C2: 1.0}
	e, m := v.Release(1, 0, 5)
	assert.Equal(t, 1.0, e)
	assert.Equal(t, 0.0, m)

	e, m = v.Release(1, 1, -3)
	assert.Equal(t, 1.0, e)
	assert.Equal(t, 1.0, m)
}

func TestNew_Defaults(t *testing.T) {
	v := New(2.0)
	assert.Equal(t, 2.0, v.C2)
	assert.Equal(t, DefaultAlpha, v.Alpha)
	assert.Equal(t, DefaultBeta, v.Beta)
	assert.Equal(t, DefaultWeights, v.Weights)
}
