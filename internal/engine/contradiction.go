package engine

import "strings"

// negationMarkers flag a statement as negated. Contradiction requires the
// marker to straddle the pair: present on one side, absent on the other.
var negationMarkers = []string{
	"not ", "n't", "never", "no longer", "stop using", "stopped using",
	"instead of", "avoid", "without",
}

// polarityPairs are opposite-polarity keywords; one on each side of a pair
// of contents signals contradiction regardless of negation.
var polarityPairs = [][2]string{
	{"fast", "slow"},
	{"better", "worse"},
	{"good", "bad"},
	{"always", "never"},
	{"enable", "disable"},
	{"works", "broken"},
	{"working", "broken"},
	{"love", "hate"},
	{"like", "dislike"},
	{"accept", "reject"},
	{"allow", "forbid"},
	{"increase", "decrease"},
	{"before", "after"},
	{"keep", "remove"},
}

// contradicts reports whether two contents make opposing claims, using the
// negation-straddle and polarity-pair heuristics. It does not check that the
// contents are about the same thing; callers gate on topic overlap.
func contradicts(a, b string) bool {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)

	if negated(la) != negated(lb) {
		return true
	}
	for _, p := range polarityPairs {
		if (strings.Contains(la, p[0]) && strings.Contains(lb, p[1])) ||
			(strings.Contains(la, p[1]) && strings.Contains(lb, p[0])) {
			return true
		}
	}
	return false
}

func negated(lower string) bool {
	for _, m := range negationMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
