// Package engine implements the sophon decision loop.
//
// Each Step enumerates candidate (op, inputs) pairs from the registry,
// scores them with the valuator's affect model, selects a budgeted subset
// with an epsilon-greedy exploration pass, applies them, shapes a reward
// for each application, and feeds the rewards into the energy/mass cycle.
//
// ARCHITECTURE:
//
// Single Owner:
// The engine is single-threaded and fully synchronous. It starts no
// goroutines and Step always runs to completion. Graph, registry and run
// state belong to one logical thread of control; Step must never be
// called concurrently on the same Engine.
//
// Step Flow:
//  1. Enumerate candidates in registration order, up to MaxCandidates
//  2. Score each candidate: priority(valence, arousal, uncertainty, 0)
//  3. Select: exploration pass, greedy pass under budget, greedy fallback
//  4. Apply, check invariants, shape reward
//  5. Consolidate rewards into mass
//  6. Release mass back to energy with probability ReleaseProb
//  7. Snapshot the step into a Summary and notify observers
//
// CRITICAL PATTERNS:
//
// Deterministic Randomness:
// Every random draw (uncertainty samples, the exploration roll and pick,
// the release roll) comes from the one Rand given to New, in that order
// within a step. A seeded Rand and a fixed registration order reproduce a
// run exactly.
//
// Isolated Failures:
// Precond and Apply failures, including panics, become OpErrors. They are
// logged and recorded on the Summary; the step continues. Apply is not
// transactional, so a failed Apply's partial mutations stay in the graph.
//
// Unbounded Novelty Memory:
// The seen-application and seen-proposition sets never evict. Their size
// grows with the number of distinct applications in a run.
package engine
