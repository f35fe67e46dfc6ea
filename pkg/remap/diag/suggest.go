package diag

// Distance returns the Levenshtein edit distance between a and b, counted
// in runes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// Nearest returns the candidate with the smallest edit distance from target.
// Ties resolve to the earliest candidate, so callers control precedence with
// ordering. ok is false only when candidates is empty.
func Nearest(target string, candidates []string) (best string, ok bool) {
	bestScore := -1
	for _, c := range candidates {
		score := Distance(target, c)
		if bestScore < 0 || score < bestScore {
			bestScore = score
			best = c
			ok = true
		}
	}
	return best, ok
}
