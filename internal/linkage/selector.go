package linkage

// bestMatch returns the index and score of the highest-scoring candidate
// title for the normalized query. Ties go to the first candidate in slice
// order, which follows the catalog query's row order, so selection is
// reproducible for an identical candidate set. Returns (-1, -1) when there
// are no candidates.
func bestMatch(query string, candidates []string, score func(a, b string) int) (int, int) {
	bestIdx := -1
	bestScore := -1
	for i, candidate := range candidates {
		if s := score(query, candidate); s > bestScore {
			bestIdx = i
			bestScore = s
		}
	}
	return bestIdx, bestScore
}
