package engine

import (
	"sort"
)

// scoredMove pairs a candidate with its quick evaluation score
type scoredMove struct {
	index int
	score float64
	pips  int
}

// Shortlist returns the indexes of the k best candidates by heuristic
// score, best first. Ties go to the lower pip count, then to the earlier
// candidate. When k is at least the number of candidates, all of them
// are returned.
func Shortlist(cands []ScoredCandidate, k int) []int {
	if k <= 0 || len(cands) == 0 {
		return nil
	}

	scored := make([]scoredMove, len(cands))
	for i, c := range cands {
		scored[i] = scoredMove{index: i, score: c.Heuristic, pips: c.PipCount}
	}

	// Sort by score (higher is better)
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].pips < scored[j].pips
	})

	numToKeep := min(k, len(scored))
	result := make([]int, numToKeep)
	for i := 0; i < numToKeep; i++ {
		result[i] = scored[i].index
	}
	return result
}
