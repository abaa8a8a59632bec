package testutil

import "fmt"

// ScriptedRand replays predetermined values for deterministic tests.
//
// Float64 and Intn draw from separate scripts. When a script runs out,
// the matching method returns its fallback value (Float64Fallback, or 0
// for Intn), so tests only spell out the draws they care about.
//
// Implements engine.Rand.
type ScriptedRand struct {
	floats []float64
	ints   []int
	fi, ii int

	// Float64Fallback is returned once the float script is exhausted.
	Float64Fallback float64

	// FloatCalls and IntnCalls count draws, for asserting draw order.
	FloatCalls int
	IntnCalls  int
}

// NewScriptedRand creates a rand that returns floats in order.
func NewScriptedRand(floats ...float64) *ScriptedRand {
	return &ScriptedRand{floats: floats, Float64Fallback: 0.5}
}

// WithInts sets the Intn script.
func (r *ScriptedRand) WithInts(ints ...int) *ScriptedRand {
	r.ints = ints
	return r
}

// Float64 returns the next scripted float.
func (r *ScriptedRand) Float64() float64 {
	r.FloatCalls++
	if r.fi >= len(r.floats) {
		return r.Float64Fallback
	}
	v := r.floats[r.fi]
	r.fi++
	return v
}

// Intn returns the next scripted int. Panics if the value is outside
// [0, n), which would indicate a misconfigured test.
func (r *ScriptedRand) Intn(n int) int {
	r.IntnCalls++
	if r.ii >= len(r.ints) {
		return 0
	}
	v := r.ints[r.ii]
	r.ii++
	if v < 0 || v >= n {
		panic(fmt.Sprintf("ScriptedRand: scripted Intn value %d outside [0,%d)", v, n))
	}
	return v
}

// FixedRand returns the same float for every Float64 and 0 for Intn.
// Implements engine.Rand.
type FixedRand float64

// Float64 returns the fixed value.
func (f FixedRand) Float64() float64 { return float64(f) }

// Intn always returns 0.
func (FixedRand) Intn(int) int { return 0 }
