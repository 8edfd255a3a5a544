package vectorstore

import (
	"context"
	"strings"
	"testing"
)

// keywordEmbedder maps text onto a fixed axis per keyword, so similarity
// between texts is fully predictable in tests.
type keywordEmbedder struct {
	axes []string
}

func (e *keywordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	lower := strings.ToLower(text)
	vector := make([]float32, len(e.axes))
	for i, axis := range e.axes {
		vector[i] = float32(strings.Count(lower, axis))
	}
	return vector, nil
}

func newTestVectorStore(t *testing.T) *Store {
	t.Helper()
	embed := &keywordEmbedder{axes: []string{"stock", "shipping", "refund", "campaign"}}
	store, err := New(Config{Mode: ModeMemory}, embed)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return store
}

func TestMemorySearchOrdersByScore(t *testing.T) {
	t.Parallel()

	store := newTestVectorStore(t)
	ctx := context.Background()

	seed := []struct {
		id           int64
		incidentType string
		description  string
	}{
		{1, "stockout", "stock ran out, stock alerts ignored"},
		{2, "shipping_delay", "shipping carrier delayed packages"},
		{3, "stockout", "stock level dropped after a shipping delay"},
	}
	for _, s := range seed {
		if err := store.UpsertIncident(ctx, s.id, s.incidentType, s.description, "", "", ""); err != nil {
			t.Fatalf("UpsertIncident(%d) error = %v", s.id, err)
		}
	}

	hits, err := store.Search(ctx, CollectionIncidents, "stock stock stock", 10, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("got %d hits, want 3", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Fatalf("hits out of order: %v", hits)
		}
	}
	if hits[0].Payload["incident_id"] != int64(1) {
		t.Fatalf("top hit = %v, want incident 1", hits[0].Payload)
	}
	if hits[0].Score <= 0 || hits[0].Score > 1 {
		t.Fatalf("score out of range: %f", hits[0].Score)
	}
}

func TestMemorySearchFilter(t *testing.T) {
	t.Parallel()

	store := newTestVectorStore(t)
	ctx := context.Background()

	if err := store.UpsertIncident(ctx, 1, "stockout", "stock ran out", "", "", ""); err != nil {
		t.Fatalf("UpsertIncident() error = %v", err)
	}
	if err := store.UpsertIncident(ctx, 2, "shipping_delay", "stock arrived late via shipping", "", "", ""); err != nil {
		t.Fatalf("UpsertIncident() error = %v", err)
	}

	hits, err := store.Search(ctx, CollectionIncidents, "stock", 10, map[string]string{"incident_type": "stockout"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].Payload["incident_type"] != "stockout" {
		t.Fatalf("filter leaked: %v", hits[0].Payload)
	}

	hits, err = store.Search(ctx, CollectionIncidents, "stock", 10, map[string]string{"incident_type": "payment"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits for unmatched filter, got %v", hits)
	}
}

func TestMemoryUpsertReplacesByID(t *testing.T) {
	t.Parallel()

	store := newTestVectorStore(t)
	ctx := context.Background()

	if err := store.UpsertTicket(ctx, 7, "refund request", "customer wants refund", "billing", ""); err != nil {
		t.Fatalf("UpsertTicket() error = %v", err)
	}
	if err := store.UpsertTicket(ctx, 7, "refund request", "customer wants refund", "billing", "refund issued"); err != nil {
		t.Fatalf("UpsertTicket() error = %v", err)
	}

	hits, err := store.Search(ctx, CollectionTickets, "refund", 10, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits after re-upsert, want 1", len(hits))
	}
	if hits[0].Payload["resolution"] != "refund issued" {
		t.Fatalf("re-upsert did not replace payload: %v", hits[0].Payload)
	}
}

func TestMemorySearchLimitAndDefault(t *testing.T) {
	t.Parallel()

	store := newTestVectorStore(t)
	ctx := context.Background()

	for id := int64(1); id <= 8; id++ {
		if err := store.UpsertProduct(ctx, id, "Campaign Mug", "merch", "campaign giveaway item"); err != nil {
			t.Fatalf("UpsertProduct(%d) error = %v", id, err)
		}
	}

	hits, err := store.Search(ctx, CollectionProducts, "campaign", 3, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("got %d hits, want limit 3", len(hits))
	}

	// A non-positive limit falls back to 5.
	hits, err = store.Search(ctx, CollectionProducts, "campaign", 0, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 5 {
		t.Fatalf("got %d hits, want default limit 5", len(hits))
	}
}

func TestMemorySearchUnknownCollection(t *testing.T) {
	t.Parallel()

	store := newTestVectorStore(t)
	if _, err := store.Search(context.Background(), "nonsense", "stock", 5, nil); err == nil {
		t.Fatal("expected error for unknown collection")
	}
}

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); got != 1 {
		t.Fatalf("identical vectors score = %f, want 1", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Fatalf("orthogonal vectors score = %f, want 0", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}); got != 0 {
		t.Fatalf("length mismatch score = %f, want 0", got)
	}
	if got := cosineSimilarity([]float32{0, 0}, []float32{1, 0}); got != 0 {
		t.Fatalf("zero vector score = %f, want 0", got)
	}
}
