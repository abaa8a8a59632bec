// Package testutil provides deterministic doubles for engine tests:
// scripted random sources, fixed run ids and a configurable stub op.
package testutil
