// Package graph holds the in-memory memory graph: nodes mirroring active
// stored memories, auto-created similarity links, and centrality scores.
// The graph is a cache rebuilt from the store at startup; the store remains
// the owner of record for both nodes and links.
package graph

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/recallhq/recall/internal/score"
	"github.com/recallhq/recall/internal/store"
)

// Config tunes auto-linking behavior.
type Config struct {
	// LinkingThreshold is the minimum similarity for an automatic link.
	LinkingThreshold float64
	// MaxLinksPerMemory caps how many links a single node may carry.
	MaxLinksPerMemory int
	// LinkConfidence is recorded on every auto-created link.
	LinkConfidence float64
}

// DefaultConfig returns the standard auto-linking parameters.
func DefaultConfig() Config {
	return Config{
		LinkingThreshold:  0.6,
		MaxLinksPerMemory: 10,
		LinkConfidence:    0.8,
	}
}

// LinkSink persists auto-created links. The store's CreateLink satisfies it.
type LinkSink interface {
	CreateLink(sourceID, targetID, kind string, strength, confidence float64, auto bool) (string, error)
}

// Source supplies the records needed to rebuild the graph.
type Source interface {
	ListActive() ([]store.Memory, error)
	AllLinks() ([]store.Link, error)
}

// Node is a memory projected into the graph with its extracted features.
type Node struct {
	ID         string
	Content    string
	Kind       string
	Importance float64

	features score.Features
}

type edge struct {
	Kind     string
	Strength float64
}

// AutoLink describes one link created while adding a node.
type AutoLink struct {
	SourceID string  `json:"source_id"`
	TargetID string  `json:"target_id"`
	Kind     string  `json:"kind"`
	Strength float64 `json:"strength"`
}

// Graph is the in-memory memory graph. Safe for concurrent use.
type Graph struct {
	mu   sync.Mutex
	cfg  Config
	sink LinkSink

	nodes map[string]*Node
	adj   map[string]map[string]edge

	netScores map[string]float64
	dirty     bool
}

// New builds an empty graph. The sink may be nil, in which case auto-links
// live only in memory.
func New(cfg Config, sink LinkSink) *Graph {
	if cfg.LinkingThreshold <= 0 {
		cfg.LinkingThreshold = DefaultConfig().LinkingThreshold
	}
	if cfg.MaxLinksPerMemory <= 0 {
		cfg.MaxLinksPerMemory = DefaultConfig().MaxLinksPerMemory
	}
	if cfg.LinkConfidence <= 0 {
		cfg.LinkConfidence = DefaultConfig().LinkConfidence
	}
	return &Graph{
		cfg:   cfg,
		sink:  sink,
		nodes: make(map[string]*Node),
		adj:   make(map[string]map[string]edge),
	}
}

// LoadFromStore rebuilds the graph from persisted memories and links,
// replacing any current contents. Stored links are applied as-is, without
// re-running auto-linking.
func (g *Graph) LoadFromStore(src Source) error {
	memories, err := src.ListActive()
	if err != nil {
		return fmt.Errorf("load memories: %w", err)
	}
	links, err := src.AllLinks()
	if err != nil {
		return fmt.Errorf("load links: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = make(map[string]*Node, len(memories))
	g.adj = make(map[string]map[string]edge, len(memories))
	for _, m := range memories {
		g.nodes[m.ID] = &Node{
			ID:         m.ID,
			Content:    m.Content,
			Kind:       m.Kind,
			Importance: m.Importance,
			features:   score.Extract(m.Content),
		}
	}
	for _, l := range links {
		// Skip links whose endpoints are no longer active.
		if g.nodes[l.SourceID] == nil || g.nodes[l.TargetID] == nil {
			continue
		}
		g.setEdge(l.SourceID, l.TargetID, edge{Kind: l.Kind, Strength: l.Strength})
	}
	g.dirty = true
	return nil
}

// AddNode inserts a memory into the graph and auto-links it to every
// sufficiently similar existing node, strongest matches first, up to the
// per-node cap. Returns the links created.
func (g *Graph) AddNode(m store.Memory) []AutoLink {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[m.ID]; ok {
		return nil
	}
	n := &Node{
		ID:         m.ID,
		Content:    m.Content,
		Kind:       m.Kind,
		Importance: m.Importance,
		features:   score.Extract(m.Content),
	}
	g.nodes[m.ID] = n
	g.dirty = true

	type candidate struct {
		id  string
		sim float64
	}
	var candidates []candidate
	for id, other := range g.nodes {
		if id == m.ID {
			continue
		}
		sim := score.FeatureSimilarity(n.features, other.features)
		if sim >= g.cfg.LinkingThreshold {
			candidates = append(candidates, candidate{id, sim})
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].sim > candidates[j].sim })

	var created []AutoLink
	for _, c := range candidates {
		if len(g.adj[m.ID]) >= g.cfg.MaxLinksPerMemory {
			break
		}
		if len(g.adj[c.id]) >= g.cfg.MaxLinksPerMemory {
			continue
		}

		kind := inferKind(n.Content, g.nodes[c.id].Content)
		if g.sink != nil {
			if _, err := g.sink.CreateLink(m.ID, c.id, kind, c.sim, g.cfg.LinkConfidence, true); err != nil {
				log.Printf("graph: persist link %s->%s: %v", m.ID, c.id, err)
				continue
			}
		}
		g.setEdge(m.ID, c.id, edge{Kind: kind, Strength: c.sim})
		created = append(created, AutoLink{
			SourceID: m.ID,
			TargetID: c.id,
			Kind:     kind,
			Strength: c.sim,
		})
	}
	return created
}

// AddEdge records a link between two existing nodes without persisting it.
// Used when the caller has already written the link through the store.
func (g *Graph) AddEdge(sourceID, targetID, kind string, strength float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.nodes[sourceID] == nil || g.nodes[targetID] == nil || sourceID == targetID {
		return
	}
	g.setEdge(sourceID, targetID, edge{Kind: kind, Strength: strength})
	g.dirty = true
}

// UpdateNode refreshes a node's content and importance in place. Existing
// links are preserved.
func (g *Graph) UpdateNode(id, content string, importance float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	n.Content = content
	n.Importance = importance
	n.features = score.Extract(content)
}

// RemoveNode drops a node and all edges touching it. Persisted link rows are
// untouched; the node's tombstone keeps them out on the next rebuild.
func (g *Graph) RemoveNode(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.nodes[id]; !ok {
		return
	}
	delete(g.nodes, id)
	for neighbor := range g.adj[id] {
		delete(g.adj[neighbor], id)
		if len(g.adj[neighbor]) == 0 {
			delete(g.adj, neighbor)
		}
	}
	delete(g.adj, id)
	g.dirty = true
}

// Node returns a copy of the node, or nil if absent.
func (g *Graph) Node(id string) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	copied := *n
	return &copied
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

// Links returns the outgoing edges of a node, strongest first.
func (g *Graph) Links(id string) []AutoLink {
	g.mu.Lock()
	defer g.mu.Unlock()
	var links []AutoLink
	for target, e := range g.adj[id] {
		links = append(links, AutoLink{SourceID: id, TargetID: target, Kind: e.Kind, Strength: e.Strength})
	}
	sort.Slice(links, func(i, j int) bool { return links[i].Strength > links[j].Strength })
	return links
}

// Neighborhood returns the nodes reachable from id within the given number
// of hops, center first, then by distance. Depth 0 returns only the center.
// A missing id yields an empty result.
func (g *Graph) Neighborhood(id string, depth int) []Node {
	g.mu.Lock()
	defer g.mu.Unlock()

	center, ok := g.nodes[id]
	if !ok {
		return nil
	}

	visited := map[string]bool{id: true}
	result := []Node{*center}
	frontier := []string{id}

	for d := 0; d < depth && len(frontier) > 0; d++ {
		var next []string
		for _, cur := range frontier {
			// Deterministic traversal order within a hop.
			neighbors := make([]string, 0, len(g.adj[cur]))
			for neighbor := range g.adj[cur] {
				neighbors = append(neighbors, neighbor)
			}
			sort.Strings(neighbors)
			for _, neighbor := range neighbors {
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				if n, ok := g.nodes[neighbor]; ok {
					result = append(result, *n)
					next = append(next, neighbor)
				}
			}
		}
		frontier = next
	}
	return result
}

func (g *Graph) setEdge(source, target string, e edge) {
	if g.adj[source] == nil {
		g.adj[source] = make(map[string]edge)
	}
	if g.adj[target] == nil {
		g.adj[target] = make(map[string]edge)
	}
	g.adj[source][target] = e
	g.adj[target][source] = e
}
