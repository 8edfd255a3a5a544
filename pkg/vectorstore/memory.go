package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

type memoryPoint struct {
	vector  []float32
	payload map[string]any
}

// memoryBackend is a process-local cosine index, good enough for dev and
// tests. Upserts replace by id.
type memoryBackend struct {
	mu          sync.RWMutex
	collections map[string]map[int64]memoryPoint
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{collections: make(map[string]map[int64]memoryPoint, 3)}
}

func (m *memoryBackend) ensure(ctx context.Context, collection string, vectorSize int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[collection]; !ok {
		m.collections[collection] = make(map[int64]memoryPoint)
	}
	return nil
}

func (m *memoryBackend) upsert(ctx context.Context, collection string, id int64, vector []float32, payload map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	points, ok := m.collections[collection]
	if !ok {
		return fmt.Errorf("unknown collection %q", collection)
	}
	points[id] = memoryPoint{vector: vector, payload: payload}
	return nil
}

func (m *memoryBackend) search(ctx context.Context, collection string, vector []float32, limit int, filter map[string]string) ([]Scored, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	points, ok := m.collections[collection]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}

	hits := make([]Scored, 0, len(points))
	for _, p := range points {
		if !matchesFilter(p.payload, filter) {
			continue
		}
		score := cosineSimilarity(vector, p.vector)
		if score < 0 {
			score = 0
		}
		hits = append(hits, Scored{Score: score, Payload: p.payload})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func matchesFilter(payload map[string]any, filter map[string]string) bool {
	for key, want := range filter {
		got, ok := payload[key]
		if !ok {
			return false
		}
		if fmt.Sprint(got) != want {
			return false
		}
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
