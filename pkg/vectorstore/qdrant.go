package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const qdrantMaxResponseBytes = 4 << 20

// qdrantBackend speaks the Qdrant REST API directly; the payload surface we
// need (upsert, search, collection create) is small enough that an SDK would
// buy nothing.
type qdrantBackend struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newQdrantBackend(cfg Config) (*qdrantBackend, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.QdrantURL), "/")
	if baseURL == "" {
		return nil, errors.New("qdrant url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid qdrant url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &qdrantBackend{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.QdrantKey),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (q *qdrantBackend) ensure(ctx context.Context, collection string, vectorSize int) error {
	status, _, err := q.do(ctx, http.MethodGet, "/collections/"+collection, nil)
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}
	status, raw, err := q.do(ctx, http.MethodPut, "/collections/"+collection, body)
	if err != nil {
		return err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("create collection %s: status=%d body=%s", collection, status, raw)
	}
	return nil
}

func (q *qdrantBackend) upsert(ctx context.Context, collection string, id int64, vector []float32, payload map[string]any) error {
	body := map[string]any{
		"points": []map[string]any{
			{"id": id, "vector": vector, "payload": payload},
		},
	}
	status, raw, err := q.do(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true", body)
	if err != nil {
		return err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("upsert %s id=%d: status=%d body=%s", collection, id, status, raw)
	}
	return nil
}

func (q *qdrantBackend) search(ctx context.Context, collection string, vector []float32, limit int, filter map[string]string) ([]Scored, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if len(filter) > 0 {
		must := make([]map[string]any, 0, len(filter))
		for key, value := range filter {
			must = append(must, map[string]any{
				"key":   key,
				"match": map[string]any{"value": value},
			})
		}
		body["filter"] = map[string]any{"must": must}
	}

	status, raw, err := q.do(ctx, http.MethodPost, "/collections/"+collection+"/points/search", body)
	if err != nil {
		return nil, err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("search %s: status=%d body=%s", collection, status, raw)
	}

	var parsed struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]Scored, 0, len(parsed.Result))
	for _, r := range parsed.Result {
		score := r.Score
		if score < 0 {
			score = 0
		}
		hits = append(hits, Scored{Score: score, Payload: r.Payload})
	}
	return hits, nil
}

func (q *qdrantBackend) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal qdrant request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build qdrant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("execute qdrant request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, qdrantMaxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read qdrant response: %w", err)
	}
	return resp.StatusCode, raw, nil
}
