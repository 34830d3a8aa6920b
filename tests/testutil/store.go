package testutil

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/dimitrije/standup-api/internal/store"
)

// MemStore is an in-memory document store for service tests. It counts
// writes so tests can assert on idempotency (no extra Puts on a second
// call).
type MemStore struct {
	mu      sync.Mutex
	docs    map[string]json.RawMessage
	Puts    int
	Deletes int
}

func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string]json.RawMessage)}
}

func (m *MemStore) Get(_ context.Context, key string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := make(json.RawMessage, len(doc))
	copy(out, doc)
	return out, nil
}

func (m *MemStore) Put(_ context.Context, key string, doc json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := make(json.RawMessage, len(doc))
	copy(saved, doc)
	m.docs[key] = saved
	m.Puts++
	return nil
}

func (m *MemStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, key)
	m.Deletes++
	return nil
}

func (m *MemStore) ListKeys(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for key := range m.docs {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Has reports whether a document exists at the key.
func (m *MemStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[key]
	return ok
}
