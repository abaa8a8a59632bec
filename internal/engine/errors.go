package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
)

// OpErrorCode categorizes isolated op failures.
type OpErrorCode string

const (
	// ErrCodePrecondFailed indicates Precond returned an error or panicked.
	ErrCodePrecondFailed OpErrorCode = "PRECOND_FAILED"

	// ErrCodeApplyFailed indicates Apply returned an error or panicked.
	// Mutations Apply made before failing stay in the graph.
	ErrCodeApplyFailed OpErrorCode = "APPLY_FAILED"

	// ErrCodeInvariantsPanicked indicates Invariants panicked. The
	// application is scored as if the check returned false.
	ErrCodeInvariantsPanicked OpErrorCode = "INVARIANTS_PANICKED"
)

// OpError is an isolated failure of one op. It never aborts a step: it is
// logged, recorded on the step summary, and enumeration or application
// moves on to the next op or candidate.
type OpError struct {
	Code   OpErrorCode
	Op     string
	Inputs ops.Inputs // nil for precond failures
	Err    error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Inputs != nil {
		return fmt.Sprintf("%s: %s%s: %v", e.Code, e.Op, e.Inputs, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
}

// Unwrap returns the op's own error.
func (e *OpError) Unwrap() error { return e.Err }

// IsPrecondError returns true if err is an OpError from Precond.
// Uses errors.As to handle wrapped errors.
func IsPrecondError(err error) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Code == ErrCodePrecondFailed
	}
	return false
}

// IsApplyError returns true if err is an OpError from Apply.
// Uses errors.As to handle wrapped errors.
func IsApplyError(err error) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Code == ErrCodeApplyFailed
	}
	return false
}

// ContractError reports a violation of the graph, registry or op
// contracts. It is a programming defect, not a runtime condition, and is
// the only error class Step propagates besides context cancellation.
type ContractError struct {
	Message string
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	return "contract violation: " + e.Message
}

// IsContractError returns true if err is a ContractError.
func IsContractError(err error) bool {
	var ce *ContractError
	return errors.As(err, &ce)
}

// callPrecond runs op.Precond through ops.SafePrecond, converting both
// returned errors and panics into an OpError.
func callPrecond(op ops.Op, g *hypergraph.Graph) ([]ops.Inputs, error) {
	tuples, err := ops.SafePrecond(op, g)
	if err != nil {
		return nil, &OpError{Code: ErrCodePrecondFailed, Op: op.Name(), Err: err}
	}
	return tuples, nil
}

// callApply runs op.Apply, converting both returned errors and panics
// into an OpError.
func callApply(op ops.Op, g *hypergraph.Graph, in ops.Inputs) (out ops.Outputs, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &OpError{Code: ErrCodeApplyFailed, Op: op.Name(), Inputs: in, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	out, err = op.Apply(g, in)
	if err != nil {
		return nil, &OpError{Code: ErrCodeApplyFailed, Op: op.Name(), Inputs: in, Err: err}
	}
	return out, nil
}

// callInvariants runs op.Invariants. A panic counts as a failed check
// and is reported through err.
func callInvariants(op ops.Op, g *hypergraph.Graph, in ops.Inputs, out ops.Outputs) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = &OpError{Code: ErrCodeInvariantsPanicked, Op: op.Name(), Inputs: in, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return op.Invariants(g, out), nil
}
