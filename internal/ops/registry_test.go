package ops

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sophon/internal/hypergraph"
)

type stubOp struct {
	name      string
	cost      float64
	tuples    []Inputs
	precErr   error
	precPanic any
}

func (s *stubOp) Name() string   { return s.name }
func (s *stubOp) Cost() float64  { return s.cost }
func (s *stubOp) Precond(*hypergraph.Graph) ([]Inputs, error) {
	if s.precPanic != nil {
		panic(s.precPanic)
	}
	return s.tuples, s.precErr
}
func (s *stubOp) Apply(*hypergraph.Graph, Inputs) (Outputs, error) { return Outputs{}, nil }
func (s *stubOp) Invariants(*hypergraph.Graph, Outputs) bool       { return true }

func TestRegistry_OrderIsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Add(&stubOp{name: "b"})
	r.Add(&stubOp{name: "a"})
	r.Add(&stubOp{name: "c"})

	var names []string
	for _, op := range r.Ops() {
		names = append(names, op.Name())
	}
	assert.Equal(t, []string{"b", "a", "c"}, names)
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_AddOverwritesByName(t *testing.T) {
	r := NewRegistry()
	r.Add(&stubOp{name: "a", cost: 1})
	r.Add(&stubOp{name: "b", cost: 1})
	r.Add(&stubOp{name: "a", cost: 5})

	require.Equal(t, 2, r.Len())
	op, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, 5.0, op.Cost())
	assert.Equal(t, "a", r.Ops()[0].Name(), "overwrite keeps the original slot")
}

func TestRegistry_CandidatesInOrderAndIsolatesFailures(t *testing.T) {
	r := NewRegistry()
	r.Add(&stubOp{name: "first", tuples: []Inputs{{1}, {2}}})
	r.Add(&stubOp{name: "broken", tuples: []Inputs{{9}}, precErr: errors.New("boom")})
	r.Add(&stubOp{name: "last", tuples: []Inputs{{1, 2}}})

	got := r.Candidates(hypergraph.New())
	require.Len(t, got, 3)
	assert.Equal(t, "first(1)", got[0].String())
	assert.Equal(t, "first(2)", got[1].String())
	assert.Equal(t, "last(1,2)", got[2].String())
}

func TestRegistry_CandidatesSurvivePrecondPanic(t *testing.T) {
	r := NewRegistry()
	r.Add(&stubOp{name: "first", tuples: []Inputs{{1}}})
	r.Add(&stubOp{name: "panicking", precPanic: "index out of range"})
	r.Add(&stubOp{name: "last", tuples: []Inputs{{2}}})

	var got []Candidate
	require.NotPanics(t, func() { got = r.Candidates(hypergraph.New()) })
	require.Len(t, got, 2)
	assert.Equal(t, "first(1)", got[0].String())
	assert.Equal(t, "last(2)", got[1].String())
}

func TestSafePrecond(t *testing.T) {
	tuples, err := SafePrecond(&stubOp{name: "ok", tuples: []Inputs{{1}}}, hypergraph.New())
	require.NoError(t, err)
	assert.Equal(t, []Inputs{{1}}, tuples)

	tuples, err = SafePrecond(&stubOp{name: "p", precPanic: "nil map"}, hypergraph.New())
	assert.Nil(t, tuples)
	require.Error(t, err)
	assert.Equal(t, "panic: nil map", err.Error())

	_, err = SafePrecond(&stubOp{name: "e", precErr: errors.New("boom")}, hypergraph.New())
	assert.EqualError(t, err, "boom")
}

func TestInputs_EqualAndString(t *testing.T) {
	assert.True(t, Inputs{1, 2}.Equal(Inputs{1, 2}))
	assert.False(t, Inputs{1, 2}.Equal(Inputs{2, 1}))
	assert.False(t, Inputs{1}.Equal(Inputs{1, 1}))
	assert.Equal(t, "()", Inputs{}.String())
}

func TestCandidate_Same(t *testing.T) {
	a := &stubOp{name: "x"}
	other := &stubOp{name: "x"}
	assert.True(t, Candidate{Op: a, Inputs: Inputs{3}}.Same(Candidate{Op: other, Inputs: Inputs{3}}))
	assert.False(t, Candidate{Op: a, Inputs: Inputs{3}}.Same(Candidate{Op: a, Inputs: Inputs{4}}))
}

func TestOutputs_Roles(t *testing.T) {
	out := Outputs{"triangle": 4, "apex": 3}
	assert.Equal(t, []string{"apex", "triangle"}, out.Roles())
}
