package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/recallhq/recall/internal/engine"
	"github.com/recallhq/recall/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	eng, err := engine.New(db, nil, engine.DefaultConfig())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(eng.Close)

	return New(db, eng, "test")
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, rec.Body.String())
	}
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if body["status"] != "ok" || body["db"] != true {
		t.Errorf("health body: %v", body)
	}
}

func TestProcessInteraction(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/interactions",
		`{"user_text":"I decided to use React because it's faster","session_ref":"s1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	body := decode(t, rec)
	if body["facts_extracted"].(float64) != 1 {
		t.Errorf("facts_extracted: %v", body["facts_extracted"])
	}
	actions := body["actions_taken"].(map[string]any)
	if actions["ADD"].(float64) != 1 {
		t.Errorf("actions: %v", actions)
	}
}

func TestProcessInteractionBadRequests(t *testing.T) {
	s := newTestServer(t)
	if rec := do(t, s, http.MethodPost, "/api/interactions", `{not json`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid json status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/interactions", `{"context":"only"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty turn status = %d", rec.Code)
	}
}

func TestSearch(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/api/interactions",
		`{"user_text":"I decided to use PostgreSQL because it supports JSON columns"}`)

	rec := do(t, s, http.MethodGet, "/api/search?q=postgresql+json&limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if body["count"].(float64) < 1 {
		t.Errorf("expected at least one hit: %v", body)
	}

	if rec := do(t, s, http.MethodGet, "/api/search", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing q status = %d", rec.Code)
	}
}

func TestSuggest(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/api/interactions",
		`{"user_text":"I decided to use PostgreSQL because it supports JSON columns"}`)

	rec := do(t, s, http.MethodGet, "/api/suggest?input=postgresql+json+columns&max=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if len(body["suggestions"].([]any)) == 0 {
		t.Errorf("no suggestions: %v", body)
	}

	if rec := do(t, s, http.MethodGet, "/api/suggest", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing input status = %d", rec.Code)
	}
}

func TestGetMemory(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/interactions",
		`{"user_text":"I decided to use React because it's faster"}`)
	body := decode(t, rec)
	decisions := body["decisions"].([]any)
	id := decisions[0].(map[string]any)["new_node_id"].(string)

	rec = do(t, s, http.MethodGet, "/api/memories/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode(t, rec)
	memory := got["memory"].(map[string]any)
	if memory["id"] != id {
		t.Errorf("memory body: %v", memory)
	}

	if rec := do(t, s, http.MethodGet, "/api/memories/absent", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing memory status = %d", rec.Code)
	}
}

func TestNeighborhoodDepthZero(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/interactions",
		`{"user_text":"I decided to use React because it's faster"}`)
	body := decode(t, rec)
	id := body["decisions"].([]any)[0].(map[string]any)["new_node_id"].(string)

	rec = do(t, s, http.MethodGet, "/api/memories/"+id+"/neighborhood?depth=0", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode(t, rec)
	nodes := got["nodes"].([]any)
	if len(nodes) != 1 {
		t.Errorf("depth 0 should return only the center, got %d nodes", len(nodes))
	}
}

func TestStats(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/api/interactions",
		`{"user_text":"I decided to use React because it's faster"}`)

	rec := do(t, s, http.MethodGet, "/api/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if body["graph_nodes"].(float64) != 1 {
		t.Errorf("stats body: %v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "recall_engine") {
		t.Error("engine metrics missing from exposition")
	}
}
