// Package levenshtein implements edit distance over runes, with a
// bounded variant for threshold searches against a candidate list.
package levenshtein

// Distance returns the Levenshtein edit distance between s and t
// (insertions, deletions, substitutions, all at cost 1).
func Distance(s, t string) int {
	return DistanceWithin(s, t, -1)
}

// DistanceWithin returns the edit distance between s and t as long as
// it does not exceed maxDist, and maxDist+1 otherwise. A negative
// maxDist disables the bound. The early exit makes scanning a large
// candidate list with a small threshold cheap.
func DistanceWithin(s, t string, maxDist int) int {
	sr := []rune(s)
	tr := []rune(t)

	if len(sr) == 0 {
		return bounded(len(tr), maxDist)
	}
	if len(tr) == 0 {
		return bounded(len(sr), maxDist)
	}
	if maxDist >= 0 {
		diff := len(sr) - len(tr)
		if diff < 0 {
			diff = -diff
		}
		if diff > maxDist {
			return maxDist + 1
		}
	}

	// Keep the shorter string on the row to bound memory at O(min(m,n)).
	if len(sr) > len(tr) {
		sr, tr = tr, sr
	}

	prev := make([]int, len(sr)+1)
	curr := make([]int, len(sr)+1)
	for i := range prev {
		prev[i] = i
	}

	for j, tc := range tr {
		curr[0] = j + 1
		rowMin := curr[0]
		for i, sc := range sr {
			cost := 1
			if sc == tc {
				cost = 0
			}
			del := curr[i] + 1
			ins := prev[i+1] + 1
			sub := prev[i] + cost
			best := del
			if ins < best {
				best = ins
			}
			if sub < best {
				best = sub
			}
			curr[i+1] = best
			if best < rowMin {
				rowMin = best
			}
		}
		if maxDist >= 0 && rowMin > maxDist {
			return maxDist + 1
		}
		prev, curr = curr, prev
	}

	return bounded(prev[len(sr)], maxDist)
}

func bounded(d, maxDist int) int {
	if maxDist >= 0 && d > maxDist {
		return maxDist + 1
	}
	return d
}
