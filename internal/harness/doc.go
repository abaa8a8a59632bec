// Package harness runs engine scenarios as executable contract tests.
//
// A scenario fixes everything a run depends on (seed, op books, step
// count, configuration overrides), runs the engine from the seed segment,
// records every application as a trace event, and checks assertions
// against the trace and the final graph.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	seed: 7
//	steps: 10
//	books: [I, V]
//	config:
//	  engine:
//	    epsilon: 0
//	  valuator:
//	    weights: { uncertainty: 0 }
//	assertions:
//	  - type: applied
//	    op: BookI.Prop1
//	    min: 1
//	  - type: invariants_hold
//
// The config block is decoded over the defaults, so it names only the
// fields that differ.
//
// # Assertion Types
//
//   - applied: op succeeded exactly count times, or at least min times
//   - applied_order: the first applications of the trace are exactly ops
//   - invariants_hold: no application failed or broke its invariants
//   - node_count: the final graph holds count (or at least min) nodes of node_type
//
// # Deterministic Testing
//
// The engine's only randomness is the seeded source built from the
// scenario's seed, and op registration order follows the books list, so
// a scenario always produces the same trace. Traces serialize to
// canonical JSON for golden comparison; they carry only ids, names,
// counts and flags, never floats.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/first_step.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
