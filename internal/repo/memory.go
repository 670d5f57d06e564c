package repo

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkordes/shiftbook/internal/domain"
)

// memoryStore is a process-local DocumentStore. Every read returns deep copies
// so callers can never mutate stored state.
type memoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]domain.Document
	changes     *notifier
}

// NewMemoryStore constructs an empty in-memory DocumentStore.
// Used by tests and by the "memory" store driver.
func NewMemoryStore() DocumentStore {
	return &memoryStore{
		collections: map[string]map[string]domain.Document{},
		changes:     newNotifier(),
	}
}

func (s *memoryStore) Get(ctx context.Context, collection, id string) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("repo.MemoryStore.Get: %w", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("repo.MemoryStore.Get: %w", domain.ErrNotFound)
	}
	return cloneDocument(doc), nil
}

func (s *memoryStore) Upsert(ctx context.Context, collection, id string, op UpsertOp) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("repo.MemoryStore.Upsert: %w", err)
	}
	s.mu.Lock()
	if s.collections[collection] == nil {
		s.collections[collection] = map[string]domain.Document{}
	}
	merged := applyUpsert(s.collections[collection][id], op)
	s.collections[collection][id] = merged
	out := cloneDocument(merged)
	s.mu.Unlock()

	s.changes.publish(collection)
	return out, nil
}

func (s *memoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("repo.MemoryStore.Delete: %w", err)
	}
	s.mu.Lock()
	_, existed := s.collections[collection][id]
	delete(s.collections[collection], id)
	s.mu.Unlock()

	if existed {
		s.changes.publish(collection)
	}
	return nil
}

func (s *memoryStore) List(ctx context.Context, collection string) (map[string]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("repo.MemoryStore.List: %w", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.Document, len(s.collections[collection]))
	for id, doc := range s.collections[collection] {
		out[id] = cloneDocument(doc)
	}
	return out, nil
}

func (s *memoryStore) Watch(ctx context.Context, collection string, notify func()) error {
	return s.changes.watch(ctx, collection, notify)
}
