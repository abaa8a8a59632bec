package engine

import (
	"math"
	"strings"

	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
)

// Reward shaping constants.
const (
	bonusPerNode        = 0.02
	bonusPerEdge        = 0.02
	bonusNewProposition = 0.3
	bonusOpSwitch       = 0.25
	bonusOpAbsent       = 0.15
	bonusNovelPair      = 0.2
	bonusMultiNode      = 0.1
	bonusAnyEdge        = 0.05

	repeatPenaltyStep = 0.15
	repeatPenaltyCap  = 0.8

	complexityCap = 0.35

	closureSignal = 0.5

	// absentLookback is how many recent entries the op-absent bonus checks.
	absentLookback = 3
)

var (
	proofMarkers        = []string{"proof", "prove", "theorem"}
	constructionMarkers = []string{"prop", "construct", "solid"}
)

// closure reports 0.5 when the outputs mention a proposition, either by
// role name or by pointing at a proposition-typed node.
func closure(g *hypergraph.Graph, out ops.Outputs) float64 {
	for role, id := range out {
		if strings.Contains(strings.ToLower(role), "prop") {
			return closureSignal
		}
		if n, ok := g.Node(id); ok && n.Type == hypergraph.NodeProposition {
			return closureSignal
		}
	}
	return 0
}

// complexityBonus rewards proof-like and construction-like op names and
// outputs with several roles. The total is capped at complexityCap.
func complexityBonus(name string, out ops.Outputs) float64 {
	lower := strings.ToLower(name)
	var bonus float64
	if containsAny(lower, proofMarkers) {
		bonus += 0.15
	}
	if containsAny(lower, constructionMarkers) {
		bonus += 0.10
	}
	if extra := len(out) - 1; extra > 0 {
		bonus += math.Min(0.05*float64(extra), 0.10)
	}
	return math.Min(bonus, complexityCap)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// repeatPenalty grows by repeatPenaltyStep per prior application of the
// op and saturates at repeatPenaltyCap. The result is <= 0.
func repeatPenalty(prior int) float64 {
	return -math.Min(repeatPenaltyStep*float64(prior), repeatPenaltyCap)
}

// shape computes the reward for one successful application and updates
// the novelty bookkeeping it depends on. It must run before the op's
// counters and the recent window are updated for this application.
func (e *Engine) shape(name string, in ops.Inputs, out ops.Outputs, base float64, newNodes []*hypergraph.Node, newEdges int) (RewardBreakdown, int, bool) {
	b := RewardBreakdown{Base: base}
	b.Growth = bonusPerNode*float64(len(newNodes)) + bonusPerEdge*float64(newEdges)

	novelProps := 0
	for _, n := range newNodes {
		if n.Type == hypergraph.NodeProposition && e.state.seenProps.Record(n.ID) {
			novelProps++
		}
	}
	b.Propositions = bonusNewProposition * float64(novelProps)

	if prev, ok := e.state.recent.Last(); ok && prev != name {
		b.Diversity += bonusOpSwitch
	}
	if !e.state.recent.InLast(name, absentLookback) {
		b.Diversity += bonusOpAbsent
	}

	novelPair := e.state.seenApps.Record(name, in)
	if novelPair {
		b.Novelty = bonusNovelPair
	}

	b.Complexity = complexityBonus(name, out)

	if len(newNodes) >= 2 {
		b.Structure += bonusMultiNode
	}
	if newEdges >= 1 {
		b.Structure += bonusAnyEdge
	}

	b.RepeatPenalty = repeatPenalty(e.state.applied[name])

	total := b.Base + b.Growth + b.Propositions + b.Diversity + b.Novelty +
		b.Complexity + b.Structure + b.RepeatPenalty
	b.Total = math.Max(total, 0)
	return b, novelProps, novelPair
}
