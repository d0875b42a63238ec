// Package engine ties the pieces together: fact extraction, the evolution
// state machine, graph maintenance, ranked search and background decay.
// All writes go through a single critical section per engine instance so
// concurrent near-duplicate facts cannot both decide ADD.
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"

	"github.com/recallhq/recall/internal/facts"
	"github.com/recallhq/recall/internal/graph"
	"github.com/recallhq/recall/internal/store"
)

// Config tunes the evolution thresholds and search cache.
type Config struct {
	// SimilarityThreshold is the floor below which a fact is always new.
	SimilarityThreshold float64
	// UpdateThreshold gates in-place rewrites of an existing memory.
	UpdateThreshold float64
	// DeleteThreshold gates contradiction-driven supersession.
	DeleteThreshold float64
	// CandidateLimit bounds the coarse retrieval per fact.
	CandidateLimit int

	Linking graph.Config

	// CacheTTL bounds how long search results may be served stale-free;
	// any write flushes the cache regardless.
	CacheTTL time.Duration
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.7,
		UpdateThreshold:     0.8,
		DeleteThreshold:     0.9,
		CandidateLimit:      10,
		Linking:             graph.DefaultConfig(),
		CacheTTL:            time.Minute,
	}
}

// Engine owns one memory graph and its evolution loop.
type Engine struct {
	mu  sync.Mutex
	db  *store.DB
	cfg Config

	graph     *graph.Graph
	extractor *facts.Extractor

	searchCache *gocache.Cache
	cron        *cron.Cron
}

// New builds an engine over the given store, rebuilding the in-memory graph
// from persisted state. A nil extractor gets the pattern-only default.
func New(db *store.DB, extractor *facts.Extractor, cfg Config) (*Engine, error) {
	if extractor == nil {
		extractor = facts.NewExtractor()
	}
	def := DefaultConfig()
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = def.SimilarityThreshold
	}
	if cfg.UpdateThreshold <= 0 {
		cfg.UpdateThreshold = def.UpdateThreshold
	}
	if cfg.DeleteThreshold <= 0 {
		cfg.DeleteThreshold = def.DeleteThreshold
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = def.CandidateLimit
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}

	g := graph.New(cfg.Linking, db)
	if err := g.LoadFromStore(db); err != nil {
		return nil, fmt.Errorf("rebuild graph: %w", err)
	}

	return &Engine{
		db:          db,
		cfg:         cfg,
		graph:       g,
		extractor:   extractor,
		searchCache: gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
	}, nil
}

// Close stops background jobs. The store is owned by the caller.
func (e *Engine) Close() {
	if e.cron != nil {
		e.cron.Stop()
	}
}

// ProcessResult is the structured outcome of one interaction.
type ProcessResult struct {
	FactsExtracted int                 `json:"facts_extracted"`
	Decisions      []EvolutionDecision `json:"decisions"`
	ActionsTaken   map[string]int      `json:"actions_taken"`
	ProcessingTime time.Duration       `json:"processing_time"`
}

// ProcessInteraction extracts facts from one dialogue turn and evolves the
// memory graph with each. Facts are independent units of work: a persistence
// failure aborts the loop but already-committed actions stay committed and
// are reported in the partial result.
func (e *Engine) ProcessInteraction(ctx context.Context, userText, assistantText, interactionContext, sessionRef string) (*ProcessResult, error) {
	start := time.Now()
	extracted := e.extractor.Extract(ctx, userText, assistantText, interactionContext)
	factsExtractedTotal.Add(float64(len(extracted)))

	result := &ProcessResult{
		FactsExtracted: len(extracted),
		ActionsTaken:   make(map[string]int),
	}

	e.mu.Lock()
	defer func() {
		e.mu.Unlock()
		result.ProcessingTime = time.Since(start)
		processingSeconds.Observe(result.ProcessingTime.Seconds())
	}()

	mutated := false
	for _, fact := range extracted {
		decision, err := e.evolveLocked(fact, sessionRef)
		result.Decisions = append(result.Decisions, decision)
		if err != nil {
			e.searchCache.Flush()
			return result, fmt.Errorf("evolution failed (action %s): %w", decision.Action, err)
		}

		result.ActionsTaken[decision.Action]++
		evolutionActionsTotal.WithLabelValues(decision.Action).Inc()
		if decision.Action == ActionDelete {
			// Supersession also adds the replacement.
			result.ActionsTaken[ActionAdd]++
			evolutionActionsTotal.WithLabelValues(ActionAdd).Inc()
		}
		if decision.Action != ActionNoop {
			mutated = true
		}
	}
	if mutated {
		e.searchCache.Flush()
	}
	return result, nil
}

// SearchQuery filters ranked memory search.
type SearchQuery struct {
	Text          string  `json:"text"`
	Kind          string  `json:"kind,omitempty"`
	ProjectRef    string  `json:"project_ref,omitempty"`
	MinImportance float64 `json:"min_importance,omitempty"`
	Limit         int     `json:"limit,omitempty"`
}

// SearchHit is one ranked result with its stored record and links.
type SearchHit struct {
	Memory       store.Memory `json:"memory"`
	Links        []store.Link `json:"links,omitempty"`
	Similarity   float64      `json:"similarity"`
	NetworkScore float64      `json:"network_score"`
	Score        float64      `json:"score"`
}

// Search ranks active memories against the query, blending content
// similarity with network importance. Hits are touched as a usage signal.
func (e *Engine) Search(q SearchQuery) ([]SearchHit, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	key := fmt.Sprintf("%s|%s|%s|%v|%d", q.Text, q.Kind, q.ProjectRef, q.MinImportance, q.Limit)
	if cached, ok := e.searchCache.Get(key); ok {
		return cached.([]SearchHit), nil
	}

	// Overfetch so post-filtering can still fill the limit.
	ranked := e.graph.Search(q.Text, q.Limit*3)

	hits := make([]SearchHit, 0, q.Limit)
	for _, r := range ranked {
		if len(hits) >= q.Limit {
			break
		}
		m, err := e.db.Get(r.ID)
		if err != nil {
			return nil, fmt.Errorf("load hit %s: %w", r.ID, err)
		}
		if m == nil || m.Status != store.StatusActive {
			continue
		}
		if q.Kind != "" && m.Kind != q.Kind {
			continue
		}
		if q.ProjectRef != "" && m.ProjectRef != q.ProjectRef {
			continue
		}
		if m.Importance < q.MinImportance {
			continue
		}

		if err := e.db.Touch(m.ID); err != nil {
			log.Printf("engine: touch %s: %v", m.ID, err)
		}
		links, err := e.db.GetLinks(m.ID)
		if err != nil {
			return nil, fmt.Errorf("load links for %s: %w", m.ID, err)
		}
		hits = append(hits, SearchHit{
			Memory:       *m,
			Links:        links,
			Similarity:   r.Similarity,
			NetworkScore: r.NetworkScore,
			Score:        r.Score,
		})
	}

	e.searchCache.Set(key, hits, gocache.DefaultExpiration)
	return hits, nil
}

// Suggestion is one context candidate for the current input.
type Suggestion struct {
	Content    string  `json:"content"`
	Kind       string  `json:"kind"`
	Importance float64 `json:"importance"`
	Relevance  float64 `json:"relevance"`
}

// SuggestContext returns the memories most relevant to what the user is
// currently typing. Read-only: no usage signal is recorded.
func (e *Engine) SuggestContext(currentInput, projectRef string, maxSuggestions int) ([]Suggestion, error) {
	if maxSuggestions <= 0 {
		maxSuggestions = 5
	}
	ranked := e.graph.Search(currentInput, maxSuggestions*3)

	suggestions := make([]Suggestion, 0, maxSuggestions)
	for _, r := range ranked {
		if len(suggestions) >= maxSuggestions {
			break
		}
		if projectRef != "" {
			m, err := e.db.Get(r.ID)
			if err != nil {
				return nil, fmt.Errorf("load suggestion %s: %w", r.ID, err)
			}
			if m == nil || m.ProjectRef != projectRef {
				continue
			}
		}
		suggestions = append(suggestions, Suggestion{
			Content:    r.Content,
			Kind:       r.Kind,
			Importance: r.Importance,
			Relevance:  r.Score,
		})
	}
	return suggestions, nil
}

// GetMemory returns one memory with its links, recording the access.
// Missing ids return nil, not an error.
func (e *Engine) GetMemory(id string) (*store.Memory, []store.Link, error) {
	m, err := e.db.Get(id)
	if err != nil || m == nil {
		return nil, nil, err
	}
	if err := e.db.Touch(id); err != nil {
		log.Printf("engine: touch %s: %v", id, err)
	}
	links, err := e.db.GetLinks(id)
	if err != nil {
		return nil, nil, err
	}
	return m, links, nil
}

// Neighborhood returns the graph nodes within depth hops of id, center
// first. Depth 0 is just the center; a missing id yields an empty slice.
func (e *Engine) Neighborhood(id string, depth int) []graph.Node {
	return e.graph.Neighborhood(id, depth)
}

// Stats reports store aggregates plus the live graph size.
type Stats struct {
	Store      *store.Stats `json:"store"`
	GraphNodes int          `json:"graph_nodes"`
}

// GetStats returns current engine statistics.
func (e *Engine) GetStats() (*Stats, error) {
	s, err := e.db.GetStats()
	if err != nil {
		return nil, err
	}
	return &Stats{Store: s, GraphNodes: e.graph.NodeCount()}, nil
}
