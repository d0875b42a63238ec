// Package facts scans dialogue turns for candidate facts using lexical cue
// tables, scores their importance, and deduplicates. The guaranteed baseline
// is pattern-only; an NLP backend, when reachable, only enriches entity sets.
package facts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/recallhq/recall/internal/score"
)

// Source roles for extracted facts.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// minSpanChars discards candidate spans shorter than this after trimming.
const minSpanChars = 4

// ExtractedFact is a transient candidate produced from one dialogue turn.
type ExtractedFact struct {
	Content    string    `json:"content"`
	Kind       string    `json:"kind"`
	Confidence float64   `json:"confidence"`
	Importance float64   `json:"importance"`
	Entities   []string  `json:"entities,omitempty"`
	Keywords   []string  `json:"keywords,omitempty"`
	SourceRole string    `json:"source_role"`
	Timestamp  time.Time `json:"timestamp"`
}

// Extractor turns dialogue turns into scored, deduplicated fact candidates.
type Extractor struct {
	enricher Enricher
}

// NewExtractor creates a pattern-only extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// NewEnrichedExtractor creates an extractor backed by an NLP enricher.
// The enricher is advisory: failures degrade silently to pattern-only output.
func NewEnrichedExtractor(enricher Enricher) *Extractor {
	return &Extractor{enricher: enricher}
}

// Extract scans the user and assistant turns for candidate facts. It never
// fails: empty or short input yields an empty list. Results are deduplicated
// by content hash and sorted by importance descending.
func (x *Extractor) Extract(ctx context.Context, userText, assistantText, interactionContext string) []ExtractedFact {
	now := time.Now()

	var candidates []ExtractedFact
	candidates = append(candidates, x.scanTurn(ctx, userText, RoleUser, interactionContext, now)...)
	candidates = append(candidates, x.scanTurn(ctx, assistantText, RoleAssistant, interactionContext, now)...)

	// Dedup by normalized content hash; the first (user turn) occurrence wins.
	seen := make(map[string]bool, len(candidates))
	var facts []ExtractedFact
	for _, c := range candidates {
		h := ContentHash(c.Content)
		if seen[h] {
			continue
		}
		seen[h] = true
		facts = append(facts, c)
	}

	sort.SliceStable(facts, func(i, j int) bool {
		return facts[i].Importance > facts[j].Importance
	})
	return facts
}

// scanTurn applies the cue table per sentence of a single turn.
func (x *Extractor) scanTurn(ctx context.Context, text, role, interactionContext string, now time.Time) []ExtractedFact {
	var facts []ExtractedFact
	for _, sentence := range splitSentences(text) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < minSpanChars {
			continue
		}

		p := matchPattern(sentence)
		if p == nil {
			continue
		}

		sentence = truncateClean(sentence, maxFactChars)
		f := score.Extract(sentence)

		fact := ExtractedFact{
			Content:    sentence,
			Kind:       p.Kind,
			Confidence: p.Confidence,
			Importance: score.Importance(sentence, p.Kind, interactionContext, nil),
			Entities:   setToSorted(f.Entities),
			Keywords:   keywordsOf(f),
			SourceRole: role,
			Timestamp:  now,
		}

		if x.enricher != nil {
			if extra, err := x.enricher.Entities(ctx, sentence); err != nil {
				log.Printf("facts: enrichment skipped: %v", err)
			} else {
				fact.Entities = mergeSorted(fact.Entities, extra)
			}
		}

		facts = append(facts, fact)
	}
	return facts
}

// ContentHash returns the dedup hash for a fact's content: SHA-256 over the
// lowercased, whitespace-trimmed text.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(content))))
	return hex.EncodeToString(sum[:])
}

// splitSentences breaks a turn into candidate spans on sentence terminators
// and newlines. Terminators are kept out of the spans; question marks retain
// their sentence via the feature flags, not the punctuation.
func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n' || r == ';'
	})
}

// keywordsOf picks the concept hits, falling back to the word set when the
// content has no recognized concepts.
func keywordsOf(f score.Features) []string {
	if len(f.Concepts) > 0 {
		return setToSorted(f.Concepts)
	}
	return setToSorted(f.Words)
}

func setToSorted(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func mergeSorted(a, b []string) []string {
	set := make(map[string]bool, len(a)+len(b))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			set[s] = true
		}
	}
	return setToSorted(set)
}
