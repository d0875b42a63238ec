package graph

import (
	"sort"

	"github.com/recallhq/recall/internal/score"
)

const (
	searchSimilarityWeight = 0.7
	searchNetworkWeight    = 0.3
)

// Result is one ranked search hit.
type Result struct {
	ID           string  `json:"id"`
	Content      string  `json:"content"`
	Kind         string  `json:"kind"`
	Importance   float64 `json:"importance"`
	Similarity   float64 `json:"similarity"`
	NetworkScore float64 `json:"network_score"`
	Score        float64 `json:"score"`
}

// Search ranks nodes against the query by blended content similarity and
// network importance. Nodes with zero similarity are dropped.
func (g *Graph) Search(query string, limit int) []Result {
	if limit <= 0 {
		limit = 10
	}
	qf := score.Extract(query)

	g.mu.Lock()
	g.recomputeLocked()

	results := make([]Result, 0, len(g.nodes))
	for id, n := range g.nodes {
		sim := score.FeatureSimilarity(qf, n.features)
		if sim <= 0 {
			continue
		}
		net := g.netScores[id]
		results = append(results, Result{
			ID:           id,
			Content:      n.Content,
			Kind:         n.Kind,
			Importance:   n.Importance,
			Similarity:   sim,
			NetworkScore: net,
			Score:        searchSimilarityWeight*sim + searchNetworkWeight*net,
		})
	}
	g.mu.Unlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
