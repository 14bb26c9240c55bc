package optimizer

import (
	"context"
	"time"
)

// scoreEps guards floating comparisons in the search: an incumbent is
// only replaced by a strictly better objective, so among tied optima
// the first one found in candidate order wins, keeping runs
// reproducible.
const scoreEps = 1e-9

// abortCheckInterval is how many nodes pass between deadline and
// cancellation checks.
const abortCheckInterval = 1024

// searchServiceSet selects exactly target candidates maximizing the
// summed combined score, by depth-first branch-and-bound over
// include/exclude decisions in candidate order.
//
// Candidates must be pre-sorted by combined score descending. The first
// depth-first descent is then the greedy prefix, which immediately
// becomes the incumbent; the prefix-sum upper bound prunes the rest of
// the tree. Returns the chosen candidate indices, the node count, and
// whether optimality was proven before the deadline or cancellation.
func searchServiceSet(ctx context.Context, candidates []candidate, target int, deadline time.Time) (best []int, nodes int, proven bool) {
	n := len(candidates)
	if target <= 0 {
		return nil, 0, true
	}
	if target >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all, 0, true
	}

	// prefix[i] = sum of combined scores of candidates[0:i]. The best
	// possible completion from position i taking m more candidates is
	// prefix[i+m]-prefix[i], because candidates are sorted descending.
	prefix := make([]float64, n+1)
	for i, c := range candidates {
		prefix[i+1] = prefix[i] + c.combined
	}

	var (
		bestValue   float64
		bestSet     []int
		current     = make([]int, 0, target)
		haveBest    bool
		interrupted bool
	)

	var dfs func(pos int, chosen int, value float64)
	dfs = func(pos int, chosen int, value float64) {
		if interrupted {
			return
		}
		nodes++
		if nodes%abortCheckInterval == 0 {
			if ctx.Err() != nil || time.Now().After(deadline) {
				interrupted = true
				return
			}
		}

		if chosen == target {
			if !haveBest || value > bestValue+scoreEps {
				bestValue = value
				bestSet = append(bestSet[:0], current...)
				haveBest = true
			}
			return
		}
		remaining := target - chosen
		if n-pos < remaining {
			return
		}

		// Upper bound on any completion from here.
		bound := value + prefix[pos+remaining] - prefix[pos]
		if haveBest && bound <= bestValue+scoreEps {
			return
		}

		// Include candidates[pos] first: preserves greedy-first order.
		current = append(current, pos)
		dfs(pos+1, chosen+1, value+candidates[pos].combined)
		current = current[:len(current)-1]

		dfs(pos+1, chosen, value)
	}

	dfs(0, 0, 0)

	return bestSet, nodes, !interrupted
}
