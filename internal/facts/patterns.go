package facts

import "regexp"

// Fact kinds. Lowercase strings so they round-trip cleanly through the store
// and the importance base table.
const (
	KindPersonal   = "personal"
	KindTechnical  = "technical"
	KindPreference = "preference"
	KindDecision   = "decision"
	KindError      = "error"
	KindSolution   = "solution"
)

// factPattern tags a sentence with a kind and confidence when its cue matches.
type factPattern struct {
	Kind       string
	Cue        *regexp.Regexp
	Confidence float64
}

// patternTable is the fixed lexical cue table, checked in order; the first
// match wins. Kept as data so cues are testable and replaceable without
// touching the extraction pipeline.
var patternTable = []factPattern{
	{KindDecision, regexp.MustCompile(`(?i)\b(?:decided to|we decided|going with|let'?s use|chose|settled on)\b`), 0.85},
	{KindDecision, regexp.MustCompile(`(?i)\bwe (?:will|won'?t|will not|should)\b`), 0.7},
	{KindSolution, regexp.MustCompile(`(?i)\b(?:fix|fixed|solved|resolved|workaround|solution)\b[:\s]`), 0.75},
	{KindSolution, regexp.MustCompile(`(?i)\bthe fix (?:is|was)\b|\bworks now\b`), 0.7},
	{KindError, regexp.MustCompile(`(?i)\b(?:error|exception|panic|failure)\b[:\s]`), 0.75},
	{KindError, regexp.MustCompile(`(?i)\bfailed to\b|\b(?:doesn'?t|does not|didn'?t) work\b|\bis broken\b|\bbug\b`), 0.6},
	{KindPreference, regexp.MustCompile(`(?i)\bi (?:prefer|like|love|hate|always use|never use|would rather)\b`), 0.8},
	{KindPreference, regexp.MustCompile(`(?i)\bplease (?:always|never)\b|\bmy preferred\b`), 0.7},
	{KindPersonal, regexp.MustCompile(`(?i)\bmy name is\b`), 0.9},
	{KindPersonal, regexp.MustCompile(`(?i)\bi work (?:at|on|for)\b|\bi(?:'m| am) (?:a|an|the)\b`), 0.65},
	{KindTechnical, regexp.MustCompile(`(?i)\b(?:is|are) (?:built|written) (?:in|with)\b`), 0.7},
	{KindTechnical, regexp.MustCompile(`(?i)\buses? \S+ for\b|\brunning on\b|\bdepends on\b`), 0.6},
}

// matchPattern returns the first matching pattern for a sentence, or nil.
func matchPattern(sentence string) *factPattern {
	for i := range patternTable {
		if patternTable[i].Cue.MatchString(sentence) {
			return &patternTable[i]
		}
	}
	return nil
}
