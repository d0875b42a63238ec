package score

// Dimension weights for combined similarity. The structural-flag bonus is a
// fifth dimension weighted at 0.05.
const (
	wordWeight    = 0.30
	entityWeight  = 0.25
	conceptWeight = 0.25
	codeWeight    = 0.15
	flagWeight    = 0.05
)

// Similarity computes the combined similarity of two contents in [0, 1].
// Each feature dimension contributes its Jaccard overlap; dimensions where
// both sides are empty are excluded and the remaining weights renormalized,
// so identical non-empty contents always score 1.0. Symmetric by
// construction. Two fully empty inputs score 0.
func Similarity(a, b string) float64 {
	return FeatureSimilarity(Extract(a), Extract(b))
}

// FeatureSimilarity is Similarity over pre-extracted feature bundles, for
// callers that compare one content against many.
func FeatureSimilarity(fa, fb Features) float64 {
	type dimension struct {
		weight float64
		a, b   map[string]bool
	}
	dims := []dimension{
		{wordWeight, fa.Words, fb.Words},
		{entityWeight, fa.Entities, fb.Entities},
		{conceptWeight, fa.Concepts, fb.Concepts},
		{codeWeight, fa.CodeTokens, fb.CodeTokens},
	}

	sum := 0.0
	totalWeight := 0.0
	nonEmpty := false
	for _, d := range dims {
		if len(d.a) == 0 && len(d.b) == 0 {
			continue
		}
		nonEmpty = true
		totalWeight += d.weight
		sum += d.weight * jaccard(d.a, d.b)
	}
	if !nonEmpty {
		return 0
	}

	sum += flagWeight * flagAgreement(fa, fb)
	totalWeight += flagWeight

	s := sum / totalWeight
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// EntityOverlap is the Jaccard overlap of the two contents' entity sets
// alone. Used as a topic-match signal independent of phrasing.
func EntityOverlap(a, b string) float64 {
	return jaccard(Extract(a).Entities, Extract(b).Entities)
}

// jaccard computes |A ∩ B| / |A ∪ B|. An empty union scores 0.
func jaccard(a, b map[string]bool) float64 {
	intersection := 0
	union := len(b)
	for k := range a {
		if b[k] {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// flagAgreement is the fraction of structural flags on which both bundles agree.
func flagAgreement(a, b Features) float64 {
	agree := 0
	if a.HasCode == b.HasCode {
		agree++
	}
	if a.HasQuestion == b.HasQuestion {
		agree++
	}
	if a.HasCommand == b.HasCommand {
		agree++
	}
	return float64(agree) / 3.0
}
