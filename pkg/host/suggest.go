package host

import "github.com/agnivade/levenshtein"

// suggest returns the candidate closest to name, or "" if none is close
// enough to be a likely typo.
func suggest(name string, candidates []string) string {
	best := ""
	bestDist := len(name)/3 + 2
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
