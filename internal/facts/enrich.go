package facts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Enricher augments a fact's entity set. The pattern-only pipeline is the
// guaranteed baseline; enrichment is best-effort on top of it.
type Enricher interface {
	Entities(ctx context.Context, text string) ([]string, error)
	Name() string
}

// HTTPEnricher calls an external NLP service's entity endpoint.
type HTTPEnricher struct {
	url    string
	client *http.Client
}

// NewHTTPEnricher creates an enricher against the given base URL.
func NewHTTPEnricher(url string) *HTTPEnricher {
	return &HTTPEnricher{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (e *HTTPEnricher) Name() string { return "http:" + e.url }

// Entities posts the text to the backend's /entities endpoint and returns the
// extracted entity list.
func (e *HTTPEnricher) Entities(ctx context.Context, text string) ([]string, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("marshal entities request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.url+"/entities", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create entities request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("entities api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read entities response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("entities status %d: %s", resp.StatusCode, respBody)
	}

	var result struct {
		Entities []string `json:"entities"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode entities response: %w", err)
	}
	return result.Entities, nil
}

// ProbeEnricher checks whether the NLP backend is reachable. Callers fall
// back to pattern-only extraction when it is not.
func ProbeEnricher(url string) bool {
	client := &http.Client{Timeout: 3 * time.Second}
	body, _ := json.Marshal(map[string]string{"text": "probe"})
	resp, err := client.Post(url+"/entities", "application/json", bytes.NewReader(body))
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
