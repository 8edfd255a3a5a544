package state

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// MemoryStore keeps checkpoints in-process. Meant for dev and tests; it
// satisfies the same Store contract as the Redis-backed store, including
// returning deep copies so callers cannot mutate a stored checkpoint.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string][]byte)}
}

func (m *MemoryStore) Load(ctx context.Context, threadID string) (*WorkflowState, error) {
	if strings.TrimSpace(threadID) == "" {
		return nil, ErrInvalidThread
	}

	m.mu.RLock()
	raw, ok := m.states[threadID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrStateNotFound
	}

	var st WorkflowState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("unmarshal workflow state: %w", err)
	}
	st.EnsureOutputsMap()
	return &st, nil
}

func (m *MemoryStore) Save(ctx context.Context, st *WorkflowState) error {
	if st == nil {
		return ErrNilWorkflowState
	}
	if strings.TrimSpace(st.ThreadID) == "" {
		return ErrInvalidThread
	}

	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal workflow state: %w", err)
	}

	m.mu.Lock()
	m.states[st.ThreadID] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, threadID string) error {
	if strings.TrimSpace(threadID) == "" {
		return ErrInvalidThread
	}
	m.mu.Lock()
	delete(m.states, threadID)
	m.mu.Unlock()
	return nil
}
