// Package suggest fuzzy-matches a bad input token against a fixed set of
// known names to produce "did you mean X?" hints, the same user-experience
// idea as listing available commands on an unrecognized name, generalized
// with edit-distance ranking instead of an exact-match failure.
package suggest

import "github.com/lithammer/fuzzysearch/levenshtein"

// maxDistance bounds how different a candidate may be from the input before
// it's considered too far off to be a useful suggestion (roughly: a couple
// of typos, not a different word).
const maxDistance = 2

// Opcode returns the closest entry in candidates to got by Levenshtein
// distance, or "" if nothing is within maxDistance. Among equally close
// candidates, the one listed first wins.
func Opcode(got string, candidates []string) string {
	best := ""
	bestDist := maxDistance + 1
	for _, c := range candidates {
		d := levenshtein.Distance(got, c, levenshtein.DefaultOptions)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	if bestDist > maxDistance {
		return ""
	}
	return best
}
