package harness

import (
	"context"
	"fmt"

	"github.com/roach88/sophon/internal/engine"
	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
	"github.com/roach88/sophon/internal/ops/euclid"
)

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Resolve the run configuration from the defaults and overrides
//  2. Register the scenario's books and seed a fresh graph
//  3. Step the engine, tracing every application
//  4. Evaluate assertions against the trace and the final graph
//
// An error is returned only when the scenario cannot run; failed
// assertions are reported on the Result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	cfg, err := scenario.RunConfig()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	reg := ops.NewRegistry()
	if err := euclid.RegisterBooks(reg, cfg.Run.Books...); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	g := hypergraph.New()
	euclid.SeedSegment(g)

	result := NewResult()
	trace := engine.ObserverFunc(func(_ context.Context, s *engine.Summary) error {
		result.record(s)
		return nil
	})

	eng, err := engine.New(g, reg, engine.NewRand(cfg.Run.Seed), cfg.ToEngine(),
		engine.WithValuator(cfg.ToValuator()),
		engine.WithObserver(trace),
	)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	if err := eng.Run(ctx, cfg.Run.Steps, cfg.ToStep()); err != nil {
		return nil, fmt.Errorf("scenario %s: run: %w", scenario.Name, err)
	}
	result.Graph = g

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}
