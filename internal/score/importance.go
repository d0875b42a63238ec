package score

import (
	"math"
	"strings"
	"time"
)

// Sub-score weights. They sum to 1.0; the keyword bonus is added on top and
// the result clamped.
const (
	baseWeight        = 0.30
	qualityWeight     = 0.15
	recencyWeight     = 0.10
	frequencyWeight   = 0.05
	contextWeight     = 0.15
	interactionWeight = 0.10
	kindBonusWeight   = 0.15

	maxKeywordBonus = 0.2

	// recencyHalfWindowDays controls the exponential recency decay,
	// exp(-age/30): ~0.72 after 10 days, ~0.37 after a month.
	recencyHalfWindowDays = 30.0
)

// kindBaseScores maps a fact kind to its base importance.
// Decisions, solutions and errors matter more than ambient facts.
var kindBaseScores = map[string]float64{
	"decision":   1.0,
	"solution":   0.9,
	"error":      0.85,
	"technical":  0.7,
	"preference": 0.6,
	"personal":   0.5,
}

// keywordBonuses adds weight for high-signal words, capped at maxKeywordBonus.
var keywordBonuses = map[string]float64{
	"critical":  0.2,
	"decided":   0.15,
	"important": 0.15,
	"remember":  0.15,
	"security":  0.15,
	"always":    0.1,
	"never":     0.1,
	"must":      0.1,
	"bug":       0.1,
	"broken":    0.1,
}

// UsageStats carries the optional usage signals for recency/frequency scoring.
type UsageStats struct {
	CreatedAt       time.Time
	AccessCount     int
	MarkedImportant bool
}

// Importance computes a [0,1] importance value for a memory from its content,
// declared kind, context string, and optional usage stats. Missing optional
// inputs zero out their sub-scores; a zero CreatedAt substitutes the neutral
// 0.5 for recency rather than failing.
func Importance(content, kind, context string, usage *UsageStats) float64 {
	f := Extract(content)

	s := baseWeight * baseScore(kind)
	s += qualityWeight * qualityScore(content)
	s += contextWeight * contextRelevance(f, context)
	s += interactionWeight * interactionScore(content, f, usage)
	s += kindBonusWeight * kindBonus(content, kind, f)

	if usage != nil {
		s += recencyWeight * recencyScore(usage.CreatedAt)
		s += frequencyWeight * frequencyScore(usage.AccessCount)
	}

	s += keywordBonus(f)
	return clamp01(s)
}

// UpdateOnUsage applies recency decay to a previously stored score and adds a
// small frequency boost. This is how importance erodes for unused memories
// and rises for frequently retrieved ones.
func UpdateOnUsage(old float64, accessCount int, daysSinceAccess float64) float64 {
	if daysSinceAccess < 0 {
		daysSinceAccess = 0
	}
	decayed := old * math.Exp(-daysSinceAccess/recencyHalfWindowDays)
	boost := frequencyScore(accessCount) * 0.1
	return clamp01(decayed + boost)
}

func baseScore(kind string) float64 {
	if s, ok := kindBaseScores[strings.ToLower(kind)]; ok {
		return s
	}
	return 0.5
}

// qualityScore rates content by length tier, structural markers, and a
// sentence-length heuristic.
func qualityScore(content string) float64 {
	content = strings.TrimSpace(content)
	n := len(content)

	var s float64
	switch {
	case n == 0:
		return 0
	case n < 20:
		s = 0.2
	case n < 80:
		s = 0.3
	case n < 200:
		s = 0.5
	case n < 500:
		s = 0.7
	default:
		s = 0.8
	}

	if strings.Contains(content, "```") || strings.Contains(content, "\n- ") ||
		strings.HasPrefix(content, "- ") || strings.Contains(content, "\n# ") ||
		strings.HasPrefix(content, "# ") || strings.Contains(content, "http") {
		s += 0.1
	}

	if avg := averageSentenceWords(content); avg >= 5 && avg <= 30 {
		s += 0.1
	}
	return clamp01(s)
}

func averageSentenceWords(content string) float64 {
	sentences := strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
	words, count := 0, 0
	for _, s := range sentences {
		n := len(strings.Fields(s))
		if n == 0 {
			continue
		}
		words += n
		count++
	}
	if count == 0 {
		return 0
	}
	return float64(words) / float64(count)
}

func recencyScore(createdAt time.Time) float64 {
	if createdAt.IsZero() {
		return 0.5 // unparseable/missing timestamp: neutral default
	}
	ageDays := time.Since(createdAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-ageDays / recencyHalfWindowDays)
}

// frequencyScore grows logarithmically and saturates at 100 accesses.
func frequencyScore(accessCount int) float64 {
	if accessCount <= 0 {
		return 0
	}
	s := math.Log(float64(accessCount)+1) / math.Log(101)
	return clamp01(s)
}

// contextRelevance is the fraction of context tokens present in the content.
func contextRelevance(f Features, context string) float64 {
	tokens := Tokenize(context)
	if len(tokens) == 0 {
		return 0
	}
	hits := 0
	for _, t := range tokens {
		if f.Words[t] {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}

func interactionScore(content string, f Features, usage *UsageStats) float64 {
	var s float64
	if f.HasQuestion {
		s += 0.4
	}
	if f.HasCommand {
		s += 0.3
	}
	if usage != nil && usage.MarkedImportant {
		s += 0.5
	}
	return clamp01(s)
}

// kindBonus applies the kind-specific sub-score: code complexity for content
// carrying code, criticality for errors, impact for decisions.
func kindBonus(content, kind string, f Features) float64 {
	switch strings.ToLower(kind) {
	case "error":
		return criticalityScore(content)
	case "decision":
		return impactScore(content)
	default:
		if f.HasCode {
			return codeComplexityScore(content)
		}
		return 0
	}
}

var severityKeywords = []string{"fatal", "panic", "crash", "critical", "severe", "data loss", "corrupt", "security", "outage"}

// criticalityScore rates an error by severity keywords and stack-trace presence.
func criticalityScore(content string) float64 {
	lower := strings.ToLower(content)
	var s float64
	for _, kw := range severityKeywords {
		if strings.Contains(lower, kw) {
			s += 0.2
		}
	}
	if strings.Contains(content, "goroutine ") || strings.Contains(lower, "traceback") ||
		strings.Contains(lower, "stack trace") || strings.Contains(content, "\tat ") {
		s += 0.3
	}
	if s == 0 {
		s = 0.3 // any error carries some weight
	}
	return clamp01(s)
}

var (
	decisionStrengthKeywords = []string{"decided", "will", "must", "chose", "going with", "final"}
	decisionScopeKeywords    = []string{"all", "every", "project", "team", "architecture", "system"}
	decisionTimelineKeywords = []string{"now", "immediately", "today", "this week", "deadline"}
)

// impactScore rates a decision by strength, scope, and timeline cues.
func impactScore(content string) float64 {
	lower := strings.ToLower(content)
	var s float64
	for _, kw := range decisionStrengthKeywords {
		if strings.Contains(lower, kw) {
			s += 0.5
			break
		}
	}
	for _, kw := range decisionScopeKeywords {
		if strings.Contains(lower, kw) {
			s += 0.25
			break
		}
	}
	for _, kw := range decisionTimelineKeywords {
		if strings.Contains(lower, kw) {
			s += 0.25
			break
		}
	}
	return clamp01(s)
}

// codeComplexityScore rates code content by nesting depth, keyword density,
// and line count.
func codeComplexityScore(content string) float64 {
	lines := strings.Split(content, "\n")
	maxDepth, depth := 0, 0
	for _, r := range content {
		switch r {
		case '{', '(', '[':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case '}', ')', ']':
			if depth > 0 {
				depth--
			}
		}
	}

	tokens := Tokenize(content)
	keywords := 0
	for _, t := range tokens {
		if codeKeywords[t] {
			keywords++
		}
	}
	density := 0.0
	if len(tokens) > 0 {
		density = float64(keywords) / float64(len(tokens))
	}

	s := clamp01(float64(maxDepth)/8) * 0.4
	s += clamp01(density*4) * 0.3
	s += clamp01(float64(len(lines))/40) * 0.3
	return clamp01(s)
}

func keywordBonus(f Features) float64 {
	var bonus float64
	for word, b := range keywordBonuses {
		if f.Words[word] {
			bonus += b
		}
	}
	if bonus > maxKeywordBonus {
		bonus = maxKeywordBonus
	}
	return bonus
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
