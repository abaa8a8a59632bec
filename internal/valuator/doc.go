// Package valuator implements the affect model and the energy/mass
// conversion used by the engine.
//
// Operations are paid for out of the energy budget. Reward is banked as
// mass by Consolidate, and Release converts mass back into energy. Because
// rewards are never negative, Consolidate only moves energy into mass.
package valuator
