package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/recallhq/recall/internal/engine"
)

func (s *Server) handleProcessInteraction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserText      string `json:"user_text"`
		AssistantText string `json:"assistant_text"`
		Context       string `json:"context"`
		SessionRef    string `json:"session_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.UserText == "" && req.AssistantText == "" {
		http.Error(w, `{"error":"user_text or assistant_text required"}`, http.StatusBadRequest)
		return
	}

	result, err := s.engine.ProcessInteraction(r.Context(), req.UserText, req.AssistantText, req.Context, req.SessionRef)
	if err != nil {
		// Partial progress is still reported alongside the failure.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error":  err.Error(),
			"result": result,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := engine.SearchQuery{
		Text:       r.URL.Query().Get("q"),
		Kind:       r.URL.Query().Get("kind"),
		ProjectRef: r.URL.Query().Get("project"),
	}
	if q.Text == "" {
		http.Error(w, `{"error":"q required"}`, http.StatusBadRequest)
		return
	}
	if v := r.URL.Query().Get("min_importance"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, `{"error":"invalid min_importance"}`, http.StatusBadRequest)
			return
		}
		q.MinImportance = f
	}
	q.Limit = intParam(r, "limit", 10)

	hits, err := s.engine.Search(q)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"query":   q.Text,
		"count":   len(hits),
		"results": hits,
	})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("input")
	if input == "" {
		http.Error(w, `{"error":"input required"}`, http.StatusBadRequest)
		return
	}

	suggestions, err := s.engine.SuggestContext(input, r.URL.Query().Get("project"), intParam(r, "max", 5))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"suggestions": suggestions})
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "memoryID")

	m, links, err := s.engine.GetMemory(id)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if m == nil {
		http.Error(w, `{"error":"memory not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"memory": m,
		"links":  links,
	})
}

func (s *Server) handleNeighborhood(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "memoryID")
	depth := intParam(r, "depth", 1)

	nodes := s.engine.Neighborhood(id, depth)
	out := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, map[string]any{
			"id":         n.ID,
			"content":    n.Content,
			"kind":       n.Kind,
			"importance": n.Importance,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"center": id,
		"depth":  depth,
		"nodes":  out,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.GetStats()
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func intParam(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
