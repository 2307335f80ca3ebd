package engine

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/yourusername/bgadvisor/internal/positionid"
)

// ScoredCandidate is one distinct result position of a roll with its
// scores. Index is the first-seen order of its position.
type ScoredCandidate struct {
	Index        int
	Sequence     MoveSequence // Representative sequence
	Key          positionid.PositionKey
	Alternatives []MoveSequence

	Factors    Factors
	Heuristic  float64
	Normalized float64 // Heuristic min-max normalized over the roll

	Shortlisted bool
	MC          RolloutStats
	HasMC       bool // Shortlisted and at least one decided rollout

	Hybrid   float64
	PipCount int // Mover's pip count after the move
	Notation string
}

// MCScore returns the Monte Carlo score and whether there is one.
func (c *ScoredCandidate) MCScore() (float64, bool) {
	if !c.HasMC {
		return 0, false
	}
	return c.MC.WinRate, true
}

// RankOptions are the blend weights of the hybrid score.
// They are intended to sum to 1 but are not required to.
type RankOptions struct {
	HeuristicWeight float64
	MCWeight        float64
}

// DefaultRankOptions weighs heuristic and rollouts equally.
func DefaultRankOptions() RankOptions {
	return RankOptions{HeuristicWeight: 0.5, MCWeight: 0.5}
}

// Normalize min-max normalizes scores into [0, 1].
// When all scores are equal every value is 1.
func Normalize(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	lo, hi := floats.Min(scores), floats.Max(scores)
	if hi == lo {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	copy(out, scores)
	floats.AddConst(-lo, out)
	floats.Scale(1/(hi-lo), out)
	return out
}

// Rank computes the hybrid score of every candidate and returns them
// best first. Candidates without a Monte Carlo score only get the
// heuristic term. Ties go to the lower pip count, then to the candidate
// seen first. The input slice is not reordered.
func Rank(cands []ScoredCandidate, opts RankOptions) []ScoredCandidate {
	ranked := make([]ScoredCandidate, len(cands))
	copy(ranked, cands)

	heur := make([]float64, len(ranked))
	for i := range ranked {
		heur[i] = ranked[i].Heuristic
	}
	norm := Normalize(heur)

	for i := range ranked {
		c := &ranked[i]
		c.Normalized = norm[i]
		c.Hybrid = opts.HeuristicWeight * c.Normalized
		if mc, ok := c.MCScore(); ok {
			c.Hybrid += opts.MCWeight * mc
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := &ranked[i], &ranked[j]
		if a.Hybrid != b.Hybrid {
			return a.Hybrid > b.Hybrid
		}
		if a.PipCount != b.PipCount {
			return a.PipCount < b.PipCount
		}
		return a.Index < b.Index
	})
	return ranked
}

// Confidence is the hybrid margin of the best candidate over the
// runner-up, or 1 when there is only one candidate.
func Confidence(ranked []ScoredCandidate) float64 {
	switch len(ranked) {
	case 0:
		return 0
	case 1:
		return 1
	}
	return ranked[0].Hybrid - ranked[1].Hybrid
}
