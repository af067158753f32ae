package store

import (
	"context"
	"sync"
	"time"

	"github.com/synapserag/synapse/internal/config"
	"github.com/synapserag/synapse/internal/domain/commonModels"
)

// InMemoryCatalogStore is the fallback when redis is unreachable. Same TTL
// semantics, process-local only.
type InMemoryCatalogStore struct {
	mu      sync.RWMutex
	docs    []commonModels.DocumentInfo
	valid   bool
	expires time.Time
}

func InitInMemoryCatalogStore() *InMemoryCatalogStore {
	return &InMemoryCatalogStore{}
}

func (s *InMemoryCatalogStore) Get(ctx context.Context) ([]commonModels.DocumentInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.valid || time.Now().After(s.expires) {
		return nil, false
	}
	out := make([]commonModels.DocumentInfo, len(s.docs))
	copy(out, s.docs)
	return out, true
}

func (s *InMemoryCatalogStore) Save(ctx context.Context, docs []commonModels.DocumentInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make([]commonModels.DocumentInfo, len(docs))
	copy(s.docs, docs)
	s.valid = true
	s.expires = time.Now().Add(config.RedisCatalogCacheTTL)
}

func (s *InMemoryCatalogStore) Invalidate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.valid = false
	s.docs = nil
}
