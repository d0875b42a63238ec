package engine

import (
	"fmt"

	"github.com/recallhq/recall/internal/facts"
	"github.com/recallhq/recall/internal/score"
	"github.com/recallhq/recall/internal/store"
)

// Evolution actions.
const (
	ActionAdd    = "ADD"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionNoop   = "NOOP"
)

// EvolutionDecision records what was done with one extracted fact.
type EvolutionDecision struct {
	Action         string              `json:"action"`
	Fact           facts.ExtractedFact `json:"fact"`
	ExistingNodeID string              `json:"existing_node_id,omitempty"`
	NewNodeID      string              `json:"new_node_id,omitempty"`
	Similarity     float64             `json:"similarity"`
	Confidence     float64             `json:"confidence"`
	Reasoning      string              `json:"reasoning"`
}

// evolveLocked decides and executes one fact's evolution against current
// state. Caller holds the write lock.
func (e *Engine) evolveLocked(fact facts.ExtractedFact, sessionRef string) (EvolutionDecision, error) {
	d := EvolutionDecision{Action: ActionNoop, Fact: fact, Confidence: fact.Confidence}

	candidates, err := e.db.Retrieve(store.RetrieveQuery{
		Text:  fact.Content,
		Limit: e.cfg.CandidateLimit,
	})
	if err != nil {
		return d, fmt.Errorf("retrieve candidates: %w", err)
	}

	factFeatures := score.Extract(fact.Content)
	var best *store.Memory
	var bestSim float64
	for i := range candidates {
		sim := score.FeatureSimilarity(factFeatures, score.Extract(candidates[i].Content))
		if best == nil || sim > bestSim {
			best = &candidates[i]
			bestSim = sim
		}
	}

	switch {
	case best == nil:
		d.Action = ActionAdd
		d.Reasoning = "no similar memory"

	case contradicts(fact.Content, best.Content) && topicSimilarity(fact.Content, best, bestSim) >= e.cfg.DeleteThreshold:
		d.Action = ActionDelete
		d.ExistingNodeID = best.ID
		d.Similarity = bestSim
		d.Reasoning = "contradicts existing memory, superseded"

	case bestSim < e.cfg.SimilarityThreshold:
		d.Action = ActionAdd
		d.Similarity = bestSim
		d.Reasoning = "below similarity threshold"

	case bestSim >= e.cfg.UpdateThreshold && e.updateTest(fact, best):
		d.Action = ActionUpdate
		d.ExistingNodeID = best.ID
		d.Similarity = bestSim
		d.Reasoning = "newer or more detailed version of existing memory"

	default:
		d.Similarity = bestSim
		d.ExistingNodeID = best.ID
		d.Reasoning = "similar memory exists"
	}

	if err := e.executeLocked(&d, sessionRef); err != nil {
		return d, err
	}
	return d, nil
}

// topicSimilarity is the similarity measure used by the delete branch:
// contradictory restatements share little phrasing, so entity overlap counts
// as evidence the two contents are about the same thing.
func topicSimilarity(factContent string, best *store.Memory, sim float64) float64 {
	if overlap := score.EntityOverlap(factContent, best.Content); overlap > sim {
		return overlap
	}
	return sim
}

// updateTest decides whether an over-threshold match justifies rewriting the
// stored memory. Identical content never does.
func (e *Engine) updateTest(fact facts.ExtractedFact, best *store.Memory) bool {
	if facts.ContentHash(fact.Content) == facts.ContentHash(best.Content) {
		return false
	}
	if fact.Importance > best.Importance {
		return true
	}
	if len(fact.Content) > len(best.Content)+materialLengthDelta {
		return true
	}
	return fact.Confidence > 0.7
}

// materialLengthDelta is how many extra characters make a fact "materially
// longer" than the memory it matched.
const materialLengthDelta = 20

func (e *Engine) executeLocked(d *EvolutionDecision, sessionRef string) error {
	switch d.Action {
	case ActionAdd:
		id, err := e.addLocked(d.Fact, sessionRef)
		if err != nil {
			return fmt.Errorf("add fact %q: %w", snippet(d.Fact.Content), err)
		}
		d.NewNodeID = id

	case ActionUpdate:
		content := d.Fact.Content
		importance := d.Fact.Importance
		reason := d.Reasoning
		ok, err := e.db.Update(d.ExistingNodeID, store.MemoryUpdate{
			Content:         &content,
			Importance:      &importance,
			EvolutionReason: &reason,
		})
		if err != nil {
			return fmt.Errorf("update %s: %w", d.ExistingNodeID, err)
		}
		if !ok {
			return fmt.Errorf("update %s: memory vanished", d.ExistingNodeID)
		}
		// Re-run auto-linking against the rewritten content.
		e.graph.RemoveNode(d.ExistingNodeID)
		e.graph.AddNode(store.Memory{
			ID:         d.ExistingNodeID,
			Content:    content,
			Kind:       store.KindAtomic,
			Importance: importance,
		})

	case ActionDelete:
		// The replacement goes in first so the tombstone can point at it.
		id, err := e.addLocked(d.Fact, sessionRef)
		if err != nil {
			return fmt.Errorf("add replacement for %s: %w", d.ExistingNodeID, err)
		}
		d.NewNodeID = id
		if _, err := e.db.SoftDelete(d.ExistingNodeID, id); err != nil {
			return fmt.Errorf("soft delete %s: %w", d.ExistingNodeID, err)
		}
		e.graph.RemoveNode(d.ExistingNodeID)

	case ActionNoop:
	}
	return nil
}

func (e *Engine) addLocked(fact facts.ExtractedFact, sessionRef string) (string, error) {
	context := map[string]string{"fact_kind": fact.Kind}
	if fact.SourceRole != "" {
		context["source_role"] = fact.SourceRole
	}
	m := &store.Memory{
		Content:    fact.Content,
		Kind:       store.KindAtomic,
		Importance: fact.Importance,
		Tags:       fact.Keywords,
		Context:    context,
		SessionRef: sessionRef,
	}
	if err := e.db.Insert(m); err != nil {
		return "", err
	}
	e.graph.AddNode(*m)
	return m.ID, nil
}

func snippet(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
