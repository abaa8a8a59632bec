package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/sophon/internal/hypergraph"
)

// AssertionError describes one failed assertion.
type AssertionError struct {
	Index    int
	Type     string
	Message  string
	Expected any
	Actual   any
}

func (e *AssertionError) Error() string {
	msg := fmt.Sprintf("assertion[%d] %s: %s", e.Index, e.Type, e.Message)
	if e.Expected != nil || e.Actual != nil {
		msg += fmt.Sprintf(" (expected %v, got %v)", e.Expected, e.Actual)
	}
	return msg
}

// EvaluateAssertions checks every assertion and returns one message per
// failure, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err *AssertionError
		switch a.Type {
		case AssertApplied:
			err = assertApplied(result.Trace, a)
		case AssertAppliedOrder:
			err = assertAppliedOrder(result.Trace, a)
		case AssertInvariantsHold:
			err = assertInvariantsHold(result.Trace)
		case AssertNodeCount:
			err = assertNodeCount(result.Graph, a)
		default:
			err = &AssertionError{Message: "unknown assertion type"}
		}
		if err != nil {
			err.Index, err.Type = i, a.Type
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// checkCount applies the exact-count or minimum rule of a.
func checkCount(a Assertion, got int, what string) *AssertionError {
	if a.Count != nil {
		if got != *a.Count {
			return &AssertionError{Message: what, Expected: *a.Count, Actual: got}
		}
		return nil
	}
	if got < a.Min {
		return &AssertionError{Message: what, Expected: fmt.Sprintf(">= %d", a.Min), Actual: got}
	}
	return nil
}

func assertApplied(trace []TraceEvent, a Assertion) *AssertionError {
	n := 0
	for _, e := range trace {
		if e.Op == a.Op && e.succeeded() {
			n++
		}
	}
	return checkCount(a, n, fmt.Sprintf("successful applications of %s", a.Op))
}

func assertAppliedOrder(trace []TraceEvent, a Assertion) *AssertionError {
	if len(trace) < len(a.Ops) {
		return &AssertionError{
			Message:  "trace shorter than expected order",
			Expected: len(a.Ops),
			Actual:   len(trace),
		}
	}
	got := make([]string, len(a.Ops))
	for i := range a.Ops {
		got[i] = trace[i].Op
	}
	for i := range a.Ops {
		if got[i] != a.Ops[i] {
			return &AssertionError{
				Message:  fmt.Sprintf("application %d differs", i),
				Expected: strings.Join(a.Ops, ", "),
				Actual:   strings.Join(got, ", "),
			}
		}
	}
	return nil
}

func assertInvariantsHold(trace []TraceEvent) *AssertionError {
	var bad []string
	for _, e := range trace {
		if !e.succeeded() {
			bad = append(bad, fmt.Sprintf("step %d %s%s", e.Step, e.Op, e.Inputs.String()))
		}
	}
	if len(bad) > 0 {
		return &AssertionError{Message: "failed applications: " + strings.Join(bad, "; ")}
	}
	return nil
}

func assertNodeCount(g *hypergraph.Graph, a Assertion) *AssertionError {
	if g == nil {
		return &AssertionError{Message: "no final graph"}
	}
	got := len(g.NodesOf(hypergraph.NodeType(a.NodeType)))
	return checkCount(a, got, fmt.Sprintf("%s nodes", a.NodeType))
}
