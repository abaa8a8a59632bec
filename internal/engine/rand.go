package engine

import (
	"math/rand"

	"github.com/roach88/sophon/internal/ops"
)

// Rand is the run's single source of randomness: exploration draws,
// uncertainty sampling and release triggers all come from it.
// *rand.Rand satisfies it; tests substitute scripted doubles.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewRand returns a seeded math/rand source. Seeding once at process
// start makes a whole run reproducible for a fixed registration order.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Estimator estimates how uncertain the outcome of a candidate is, in [0, 1].
type Estimator interface {
	Estimate(s *State, c ops.Candidate) float64
}

// EstimatorFunc adapts a function to Estimator.
type EstimatorFunc func(s *State, c ops.Candidate) float64

// Estimate implements Estimator.
func (f EstimatorFunc) Estimate(s *State, c ops.Candidate) float64 { return f(s, c) }

// UniformEstimator samples uncertainty uniformly from [0, 1). This is the
// default, placeholder estimator.
type UniformEstimator struct {
	Rand Rand
}

// Estimate implements Estimator.
func (u UniformEstimator) Estimate(*State, ops.Candidate) float64 {
	return u.Rand.Float64()
}

// NoveltyEstimator treats ops applied less often as more uncertain:
// 1 / (1 + prior applications). It draws no randomness.
type NoveltyEstimator struct{}

// Estimate implements Estimator.
func (NoveltyEstimator) Estimate(s *State, c ops.Candidate) float64 {
	return 1 / (1 + float64(s.Applications(c.Op.Name())))
}
