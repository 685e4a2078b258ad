package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/uiengineer/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Tree
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Tree),
	}
}

// Save persists a deep copy of the tree, so later edits by the caller do not
// leak into the store.
func (s *Store) Save(ctx context.Context, appID string, tree domain.Tree) error {
	copied := domain.Clone(tree)
	if copied == nil {
		copied = domain.Tree{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[appID] = copied
	return nil
}

// Load retrieves a copy of the tree from memory.
func (s *Store) Load(ctx context.Context, appID string) (domain.Tree, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tree, ok := s.data[appID]
	if !ok {
		return nil, domain.ErrAppNotFound
	}
	return domain.Clone(tree), nil
}

// Delete removes the tree.
func (s *Store) Delete(ctx context.Context, appID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, appID)
	return nil
}

// List returns stored applications in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := make([]string, 0, len(s.data))
	for id := range s.data {
		apps = append(apps, id)
	}
	sort.Strings(apps)
	return apps, nil
}
