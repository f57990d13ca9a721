package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/hamed0406/storeprobe/internal/domain"
)

// Store keeps collections in process. Querying a collection that was
// never created fails the way a missing table does.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]domain.Record
}

func New() *Store {
	return &Store{collections: make(map[string][]domain.Record)}
}

// Create makes collection exist, empty, if it does not already.
func (m *Store) Create(collection string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[collection]; !ok {
		m.collections[collection] = []domain.Record{}
	}
}

// Insert appends records, creating collection on first use.
func (m *Store) Insert(collection string, recs ...domain.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = append(m.collections[collection], recs...)
}

func (m *Store) Query(ctx context.Context, collection string, limit int) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs, ok := m.collections[collection]
	if !ok {
		return nil, fmt.Errorf("relation %q does not exist", collection)
	}
	if limit >= 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	out := make([]domain.Record, len(recs))
	copy(out, recs)
	return out, nil
}
