package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Collections are fixed; every record is keyed by the integer id of its
// relational counterpart, so upserts are idempotent by construction.
const (
	CollectionIncidents = "incidents"
	CollectionTickets   = "tickets"
	CollectionProducts  = "products"
)

const (
	ModeMemory = "memory"
	ModeQdrant = "qdrant"
)

func collections() []string {
	return []string{CollectionIncidents, CollectionTickets, CollectionProducts}
}

// Scored is one search hit: the original payload plus a similarity score in
// [0, 1], higher is closer.
type Scored struct {
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

type Config struct {
	Mode       string        `envconfig:"MODE" split_words:"true" default:"memory"`
	QdrantURL  string        `envconfig:"QDRANT_URL" split_words:"true" default:"http://localhost:6333"`
	QdrantKey  string        `envconfig:"QDRANT_KEY" split_words:"true"`
	Timeout    time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	VectorSize int           `envconfig:"VECTOR_SIZE" split_words:"true" default:"1536"`
}

type backend interface {
	ensure(ctx context.Context, collection string, vectorSize int) error
	upsert(ctx context.Context, collection string, id int64, vector []float32, payload map[string]any) error
	search(ctx context.Context, collection string, vector []float32, limit int, filter map[string]string) ([]Scored, error)
}

// Store embeds free text and answers nearest-neighbor queries over the three
// collections. Construct it once at startup and pass it by handle; there is
// deliberately no package-level instance.
type Store struct {
	backend backend
	embed   Embedder
}

func New(cfg Config, embed Embedder) (*Store, error) {
	if embed == nil {
		return nil, errors.New("embedder is required")
	}

	var b backend
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case "", ModeMemory:
		log.Info().Msg("vectorstore: in-memory mode")
		b = newMemoryBackend()
	case ModeQdrant:
		log.Info().Str("url", cfg.QdrantURL).Msg("vectorstore: qdrant mode")
		qb, err := newQdrantBackend(cfg)
		if err != nil {
			return nil, err
		}
		b = qb
	default:
		return nil, fmt.Errorf("unsupported vectorstore mode %q", cfg.Mode)
	}

	s := &Store{backend: b, embed: embed}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	for _, name := range collections() {
		if err := b.ensure(ctx, name, cfg.VectorSize); err != nil {
			return nil, fmt.Errorf("ensure collection %s: %w", name, err)
		}
	}
	return s, nil
}

// Search returns up to limit records ordered by descending score. filter is
// an optional single-field equality constraint on the payload (nil for none).
func (s *Store) Search(ctx context.Context, collection, query string, limit int, filter map[string]string) ([]Scored, error) {
	if limit <= 0 {
		limit = 5
	}
	vector, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.backend.search(ctx, collection, vector, limit, filter)
}

// UpsertIncident indexes one historical incident. Calling it again with the
// same id replaces the previous entry.
func (s *Store) UpsertIncident(ctx context.Context, id int64, incidentType, description, rootCause, actionTaken, outcome string) error {
	text := fmt.Sprintf("Type: %s. %s. Cause: %s. Action: %s. Result: %s",
		incidentType, description, rootCause, actionTaken, outcome)
	payload := map[string]any{
		"incident_id":   id,
		"incident_type": incidentType,
		"description":   description,
		"root_cause":    rootCause,
		"action_taken":  actionTaken,
		"outcome":       outcome,
	}
	return s.upsert(ctx, CollectionIncidents, id, text, payload)
}

func (s *Store) UpsertTicket(ctx context.Context, id int64, subject, description, category, resolution string) error {
	text := fmt.Sprintf("%s. %s. Resolution: %s", subject, description, resolution)
	payload := map[string]any{
		"ticket_id":   id,
		"subject":     subject,
		"description": description,
		"category":    category,
		"resolution":  resolution,
	}
	return s.upsert(ctx, CollectionTickets, id, text, payload)
}

func (s *Store) UpsertProduct(ctx context.Context, id int64, name, category, description string) error {
	text := fmt.Sprintf("%s. Category: %s. %s", name, category, description)
	payload := map[string]any{
		"product_id":  id,
		"name":        name,
		"category":    category,
		"description": description,
	}
	return s.upsert(ctx, CollectionProducts, id, text, payload)
}

func (s *Store) upsert(ctx context.Context, collection string, id int64, text string, payload map[string]any) error {
	vector, err := s.embed.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed %s id=%d: %w", collection, id, err)
	}
	return s.backend.upsert(ctx, collection, id, vector, payload)
}
