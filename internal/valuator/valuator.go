package valuator

import "math"

// Weights combines the four affect signals into a priority score.
type Weights struct {
	Valence     float64 `yaml:"valence" json:"valence"`
	Arousal     float64 `yaml:"arousal" json:"arousal"`
	Uncertainty float64 `yaml:"uncertainty" json:"uncertainty"`
	Closure     float64 `yaml:"closure" json:"closure"`
}

// Default constants.
const (
	DefaultC2    = 1.0
	DefaultAlpha = 0.2
	DefaultBeta  = 0.1
)

// DefaultWeights weights valence and closure fully and arousal and
// uncertainty at half strength.
var DefaultWeights = Weights{Valence: 1.0, Arousal: 0.5, Uncertainty: 0.5, Closure: 1.0}

// Valuator holds the affect model's tunable constants. It has no other
// state; every method is a pure function of its arguments.
type Valuator struct {
	C2      float64 // energy per unit mass
	Alpha   float64 // consolidation rate
	Beta    float64 // release rate, reserved
	Weights Weights
}

// New returns a Valuator with the default constants and the given c2.
func New(c2 float64) Valuator {
	return Valuator{C2: c2, Alpha: DefaultAlpha, Beta: DefaultBeta, Weights: DefaultWeights}
}

// Affect is the prediction-error signal triple.
//
// Valence is the direction of the surprise, bounded to (-1, 1).
// Arousal is its magnitude, always >= 0.
type Affect struct {
	Error   float64 `json:"error"`
	Valence float64 `json:"valence"`
	Arousal float64 `json:"arousal"`
}

// EOE computes the affect triple for an outcome: error = perceived - expected.
func (Valuator) EOE(expected, perceived float64) Affect {
	e := perceived - expected
	return Affect{
		Error:   e,
		Valence: math.Tanh(2 * e),
		Arousal: math.Abs(e),
	}
}

// Priority is the weighted sum of the four signals.
func (v Valuator) Priority(valence, arousal, uncertainty, closure float64) float64 {
	w := v.Weights
	return w.Valence*valence + w.Arousal*arousal + w.Uncertainty*uncertainty + w.Closure*closure
}

// Consolidate banks reward as mass: alpha * sum(rewards) energy is drained
// and converted at rate 1/c2. Energy is floored at zero; the mass gain is
// computed from the unfloored drain.
func (v Valuator) Consolidate(energy, mass float64, rewards []float64) (float64, float64) {
	var total float64
	for _, r := range rewards {
		total += r
	}
	dE := -v.Alpha * total
	dM := -dE / v.C2
	return math.Max(energy+dE, 0), mass + dM
}

// Release converts up to dm mass back into energy. The amount released
// is capped by the mass available.
func (v Valuator) Release(energy, mass, dm float64) (float64, float64) {
	actual := math.Min(dm, mass)
	if actual < 0 {
		actual = 0
	}
	return energy + v.C2*actual, mass - actual
}
