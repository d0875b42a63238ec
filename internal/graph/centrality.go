package graph

import "math"

const (
	pageRankDamping     = 0.85
	pageRankMaxIter     = 100
	pageRankConvergence = 0.0001

	// Above this node count betweenness is skipped and its weight folded
	// into degree and PageRank.
	betweennessCeiling = 1000
)

// NetworkImportance returns the structural importance of a node in [0, 1],
// blending degree centrality, PageRank and (for small graphs) betweenness.
// Scores are cached and recomputed lazily after graph mutations.
func (g *Graph) NetworkImportance(id string) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.recomputeLocked()
	return g.netScores[id]
}

// NetworkImportances returns the cached importance scores for all nodes.
func (g *Graph) NetworkImportances() map[string]float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.recomputeLocked()
	out := make(map[string]float64, len(g.netScores))
	for id, v := range g.netScores {
		out[id] = v
	}
	return out
}

func (g *Graph) recomputeLocked() {
	if !g.dirty {
		return
	}
	g.dirty = false

	n := len(g.nodes)
	g.netScores = make(map[string]float64, n)
	if n == 0 {
		return
	}
	if n == 1 {
		for id := range g.nodes {
			g.netScores[id] = 0
		}
		return
	}

	degree := g.degreeCentralityLocked()
	rank := normalize(g.pageRankLocked())

	if n >= betweennessCeiling {
		for id := range g.nodes {
			g.netScores[id] = 0.5*degree[id] + 0.5*rank[id]
		}
		return
	}

	between := normalize(g.betweennessLocked())
	for id := range g.nodes {
		g.netScores[id] = 0.4*degree[id] + 0.4*rank[id] + 0.2*between[id]
	}
}

// degreeCentralityLocked returns degree / (n-1) per node.
func (g *Graph) degreeCentralityLocked() map[string]float64 {
	n := len(g.nodes)
	out := make(map[string]float64, n)
	for id := range g.nodes {
		out[id] = float64(len(g.adj[id])) / float64(n-1)
	}
	return out
}

// pageRankLocked runs standard PageRank over the (symmetric) adjacency until
// the rank vector converges or the iteration cap is hit.
func (g *Graph) pageRankLocked() map[string]float64 {
	n := len(g.nodes)
	rank := make(map[string]float64, n)
	initial := 1.0 / float64(n)
	for id := range g.nodes {
		rank[id] = initial
	}

	base := (1.0 - pageRankDamping) / float64(n)
	for iter := 0; iter < pageRankMaxIter; iter++ {
		next := make(map[string]float64, n)

		// Dangling mass is spread evenly.
		var dangling float64
		for id := range g.nodes {
			if len(g.adj[id]) == 0 {
				dangling += rank[id]
			}
		}
		danglingShare := pageRankDamping * dangling / float64(n)

		for id := range g.nodes {
			next[id] = base + danglingShare
		}
		for id := range g.nodes {
			out := len(g.adj[id])
			if out == 0 {
				continue
			}
			share := pageRankDamping * rank[id] / float64(out)
			for neighbor := range g.adj[id] {
				next[neighbor] += share
			}
		}

		var delta float64
		for id := range g.nodes {
			delta += math.Abs(next[id] - rank[id])
		}
		rank = next
		if delta < pageRankConvergence {
			break
		}
	}
	return rank
}

// betweennessLocked computes betweenness centrality with Brandes' algorithm
// over unweighted shortest paths.
func (g *Graph) betweennessLocked() map[string]float64 {
	between := make(map[string]float64, len(g.nodes))
	for id := range g.nodes {
		between[id] = 0
	}

	for source := range g.nodes {
		stack := make([]string, 0, len(g.nodes))
		preds := make(map[string][]string, len(g.nodes))
		sigma := map[string]float64{source: 1}
		dist := map[string]int{source: 0}

		queue := []string{source}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for w := range g.adj[v] {
				if _, seen := dist[w]; !seen {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}

		delta := make(map[string]float64, len(stack))
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != source {
				between[w] += delta[w]
			}
		}
	}
	return between
}

// normalize rescales values into [0, 1] by the maximum.
func normalize(values map[string]float64) map[string]float64 {
	var max float64
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return values
	}
	out := make(map[string]float64, len(values))
	for id, v := range values {
		out[id] = v / max
	}
	return out
}
