package graph

import (
	"testing"

	"github.com/recallhq/recall/internal/store"
)

func mem(id, content string) store.Memory {
	return store.Memory{ID: id, Content: content, Kind: store.KindAtomic, Importance: 0.5}
}

func TestAddNodeAutoLinksSimilar(t *testing.T) {
	g := New(Config{LinkingThreshold: 0.3}, nil)

	g.AddNode(mem("a", "I use PostgreSQL for the database"))
	created := g.AddNode(mem("b", "PostgreSQL queries are slow"))

	if len(created) != 1 {
		t.Fatalf("expected 1 auto-link, got %d", len(created))
	}
	if created[0].Strength < 0.3 {
		t.Errorf("strength %v below threshold", created[0].Strength)
	}

	// Links are bidirectional in the adjacency.
	if links := g.Links("a"); len(links) != 1 || links[0].TargetID != "b" {
		t.Errorf("a links: %+v", links)
	}
	if links := g.Links("b"); len(links) != 1 || links[0].TargetID != "a" {
		t.Errorf("b links: %+v", links)
	}
}

func TestAddNodeSkipsDissimilar(t *testing.T) {
	g := New(DefaultConfig(), nil)
	g.AddNode(mem("a", "I use PostgreSQL for the database"))
	created := g.AddNode(mem("b", "my cat sleeps on the windowsill every afternoon"))
	if len(created) != 0 {
		t.Errorf("unrelated content linked: %+v", created)
	}
}

func TestAddNodeDuplicateIsNoop(t *testing.T) {
	g := New(DefaultConfig(), nil)
	g.AddNode(mem("a", "first insert"))
	if created := g.AddNode(mem("a", "first insert")); created != nil {
		t.Errorf("re-adding a node should be a no-op, got %+v", created)
	}
	if g.NodeCount() != 1 {
		t.Errorf("node count = %d", g.NodeCount())
	}
}

func TestAddNodeRespectsLinkCap(t *testing.T) {
	g := New(Config{LinkingThreshold: 0.1, MaxLinksPerMemory: 2}, nil)
	g.AddNode(mem("a", "postgres database queries and indexes"))
	g.AddNode(mem("b", "postgres database queries and tables"))
	g.AddNode(mem("c", "postgres database queries and joins"))
	g.AddNode(mem("d", "postgres database queries and views"))

	for _, id := range []string{"a", "b", "c", "d"} {
		if n := len(g.Links(id)); n > 2 {
			t.Errorf("node %s has %d links, cap is 2", id, n)
		}
	}
}

func TestAddNodePersistsThroughSink(t *testing.T) {
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	a := &store.Memory{Content: "I use PostgreSQL for the database", Importance: 0.6}
	b := &store.Memory{Content: "PostgreSQL queries are slow", Importance: 0.6}
	for _, m := range []*store.Memory{a, b} {
		if err := db.Insert(m); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	g := New(Config{LinkingThreshold: 0.3}, db)
	g.AddNode(*a)
	created := g.AddNode(*b)
	if len(created) != 1 {
		t.Fatalf("expected 1 auto-link, got %d", len(created))
	}

	rows, err := db.GetLinks(b.ID)
	if err != nil {
		t.Fatalf("get links: %v", err)
	}
	if len(rows) != 1 || rows[0].TargetID != a.ID {
		t.Fatalf("persisted link wrong: %+v", rows)
	}
	if !rows[0].Auto {
		t.Error("auto flag not set")
	}
}

func TestLoadFromStore(t *testing.T) {
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	a := &store.Memory{Content: "alpha memory about deployment", Importance: 0.5}
	b := &store.Memory{Content: "beta memory about rollback", Importance: 0.5}
	gone := &store.Memory{Content: "tombstoned memory", Importance: 0.5}
	for _, m := range []*store.Memory{a, b, gone} {
		if err := db.Insert(m); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if _, err := db.CreateLink(a.ID, b.ID, store.RelTemporal, 0.6, 0.8, true); err != nil {
		t.Fatalf("create link: %v", err)
	}
	if _, err := db.SoftDelete(gone.ID, ""); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	g := New(DefaultConfig(), db)
	if err := g.LoadFromStore(db); err != nil {
		t.Fatalf("load: %v", err)
	}

	if g.NodeCount() != 2 {
		t.Errorf("node count = %d, want 2 (tombstone excluded)", g.NodeCount())
	}
	links := g.Links(a.ID)
	if len(links) != 1 || links[0].TargetID != b.ID || links[0].Kind != store.RelTemporal {
		t.Errorf("restored links: %+v", links)
	}
}

func TestRemoveNodeDropsEdges(t *testing.T) {
	g := New(Config{LinkingThreshold: 0.3}, nil)
	g.AddNode(mem("a", "I use PostgreSQL for the database"))
	g.AddNode(mem("b", "PostgreSQL queries are slow"))

	g.RemoveNode("b")
	if g.Node("b") != nil {
		t.Error("removed node still present")
	}
	if links := g.Links("a"); len(links) != 0 {
		t.Errorf("dangling edges remain: %+v", links)
	}
}

func TestUpdateNodeKeepsEdges(t *testing.T) {
	g := New(Config{LinkingThreshold: 0.3}, nil)
	g.AddNode(mem("a", "I use PostgreSQL for the database"))
	g.AddNode(mem("b", "PostgreSQL queries are slow"))

	g.UpdateNode("b", "PostgreSQL queries are slow on large joins", 0.8)
	n := g.Node("b")
	if n == nil || n.Importance != 0.8 {
		t.Fatalf("update lost: %+v", n)
	}
	if links := g.Links("b"); len(links) != 1 {
		t.Errorf("edges lost on update: %+v", links)
	}
}

func TestNeighborhoodDepths(t *testing.T) {
	g := New(DefaultConfig(), nil)
	// Build a chain a-b-c by hand to control topology.
	g.AddNode(mem("a", "node a standalone content"))
	g.AddNode(mem("b", "entirely different subject matter here"))
	g.AddNode(mem("c", "yet another unrelated topic entirely"))
	g.AddEdge("a", "b", store.RelSemantic, 0.7)
	g.AddEdge("b", "c", store.RelSemantic, 0.7)

	// Depth 0 returns only the center.
	if got := g.Neighborhood("a", 0); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("depth 0: %+v", got)
	}
	if got := g.Neighborhood("a", 1); len(got) != 2 {
		t.Errorf("depth 1 returned %d nodes", len(got))
	}
	got := g.Neighborhood("a", 2)
	if len(got) != 3 {
		t.Fatalf("depth 2 returned %d nodes", len(got))
	}
	if got[0].ID != "a" {
		t.Errorf("center should come first, got %s", got[0].ID)
	}

	if got := g.Neighborhood("missing", 2); len(got) != 0 {
		t.Errorf("missing center should yield empty result, got %+v", got)
	}
}

func TestNetworkImportanceFavorsHub(t *testing.T) {
	g := New(DefaultConfig(), nil)
	// Star topology: hub linked to three leaves.
	g.AddNode(mem("hub", "the api gateway routes all traffic"))
	g.AddNode(mem("l1", "metrics are scraped every fifteen seconds"))
	g.AddNode(mem("l2", "deploy pipeline runs on merge"))
	g.AddNode(mem("l3", "logs ship to the aggregator"))
	g.AddEdge("hub", "l1", store.RelSemantic, 0.7)
	g.AddEdge("hub", "l2", store.RelSemantic, 0.7)
	g.AddEdge("hub", "l3", store.RelSemantic, 0.7)

	hub := g.NetworkImportance("hub")
	leaf := g.NetworkImportance("l1")
	if hub <= leaf {
		t.Errorf("hub %v should outrank leaf %v", hub, leaf)
	}
	for id, v := range g.NetworkImportances() {
		if v < 0 || v > 1 {
			t.Errorf("importance of %s out of range: %v", id, v)
		}
	}
}

func TestNetworkImportanceSingleNode(t *testing.T) {
	g := New(DefaultConfig(), nil)
	g.AddNode(mem("only", "a single lonely memory"))
	if v := g.NetworkImportance("only"); v != 0 {
		t.Errorf("single node importance = %v, want 0", v)
	}
	if v := g.NetworkImportance("missing"); v != 0 {
		t.Errorf("missing node importance = %v, want 0", v)
	}
}

func TestSearchRanksBySimilarityAndNetwork(t *testing.T) {
	g := New(Config{LinkingThreshold: 0.3}, nil)
	g.AddNode(mem("pg1", "I use PostgreSQL for the database"))
	g.AddNode(mem("pg2", "PostgreSQL queries are slow on large tables"))
	g.AddNode(mem("ui", "the frontend uses React components"))

	results := g.Search("postgresql database performance", 10)
	if len(results) == 0 {
		t.Fatal("no results")
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Error("results not sorted by score")
		}
	}
	for _, r := range results {
		if r.ID == "ui" && r.Score >= results[0].Score {
			t.Error("unrelated node ranked first")
		}
	}

	if got := g.Search("postgresql", 1); len(got) > 1 {
		t.Errorf("limit ignored: %d results", len(got))
	}
	if got := g.Search("completely absent vocabulary zzz", 10); len(got) != 0 {
		for _, r := range got {
			if r.Similarity <= 0 {
				t.Errorf("zero-similarity result returned: %+v", r)
			}
		}
	}
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{"the build failed because of a missing env var", "env vars load from .env", store.RelCausal},
		{"we switched to pnpm", "npm install was the old flow", store.RelContradictory},
		{"run migrations before deploying", "deploy happens from CI", store.RelTemporal},
		{"auth is part of the gateway service", "the gateway handles routing", store.RelHierarchical},
		{"benchmarks are consistent with the profiling data", "profiling showed GC pressure", store.RelSupportive},
		{"plain fact one", "plain fact two", store.RelSemantic},
	}
	for _, tt := range tests {
		if got := inferKind(tt.a, tt.b); got != tt.want {
			t.Errorf("inferKind(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}
