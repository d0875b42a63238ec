package graph

import (
	"strings"

	"github.com/recallhq/recall/internal/store"
)

// relationCue maps a relationship kind to the phrases that signal it.
// Checked in order; the first kind with a matching cue wins, and anything
// without a cue falls back to a semantic link.
type relationCue struct {
	Kind string
	Cues []string
}

var relationCues = []relationCue{
	{store.RelCausal, []string{
		"because", "causes", "caused by", "leads to", "led to",
		"due to", "results in", "therefore", "so that",
	}},
	{store.RelContradictory, []string{
		"no longer", "instead of", "actually", "not anymore",
		"used to", "changed to", "switched to", "migrated to",
	}},
	{store.RelTemporal, []string{
		"before", "after", "then we", "until", "while", "during",
		"previously", "later",
	}},
	{store.RelHierarchical, []string{
		"part of", "belongs to", "contains", "consists of",
		"under the", "component of", "subset of",
	}},
	{store.RelSupportive, []string{
		"confirms", "supports", "agrees with", "similarly",
		"consistent with", "also uses", "as well",
	}},
}

// inferKind picks the relationship kind for an auto-link from textual cues
// in either endpoint. Defaults to semantic.
func inferKind(a, b string) string {
	text := strings.ToLower(a) + " " + strings.ToLower(b)
	for _, rc := range relationCues {
		for _, cue := range rc.Cues {
			if strings.Contains(text, cue) {
				return rc.Kind
			}
		}
	}
	return store.RelSemantic
}
