package store

import (
	"context"
	"encoding/json"

	"github.com/synapserag/synapse/internal/config"
	"github.com/synapserag/synapse/internal/data/redisStore"
	"github.com/synapserag/synapse/internal/domain/commonModels"
	"github.com/synapserag/synapse/pkg/logger_i"
)

// CatalogStore caches the reconstructed document catalog so GET /documents
// does not scroll the whole index on every call. The cache is best-effort:
// misses and store failures just fall through to the index.
type CatalogStore interface {
	Get(ctx context.Context) ([]commonModels.DocumentInfo, bool)
	Save(ctx context.Context, docs []commonModels.DocumentInfo)
	Invalidate(ctx context.Context)
}

type RedisCatalogStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

// GetRedisCatalogStore returns nil when redis is offline; the caller falls
// back to the in-memory store.
func GetRedisCatalogStore(ctx context.Context) *RedisCatalogStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisCatalogStore)
	if inner == nil {
		return nil
	}
	return &RedisCatalogStore{
		store:  inner,
		logger: logger_i.NewLogger("CatalogStore"),
	}
}

func (s *RedisCatalogStore) Get(ctx context.Context) ([]commonModels.DocumentInfo, bool) {
	raw, err := s.store.Get(ctx, config.CatalogCacheKey)
	if err != nil {
		if !s.store.IsNil(err) {
			s.logger.Error("Catalog cache read failed", "error", err)
		}
		return nil, false
	}

	var docs []commonModels.DocumentInfo
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		s.logger.Error("Catalog cache entry corrupt, dropping", "error", err)
		s.Invalidate(ctx)
		return nil, false
	}
	return docs, true
}

func (s *RedisCatalogStore) Save(ctx context.Context, docs []commonModels.DocumentInfo) {
	raw, err := json.Marshal(docs)
	if err != nil {
		s.logger.Error("Catalog cache marshal failed", "error", err)
		return
	}
	if err := s.store.Set(ctx, config.CatalogCacheKey, raw, config.RedisCatalogCacheTTL); err != nil {
		s.logger.Error("Catalog cache write failed", "error", err)
	}
}

func (s *RedisCatalogStore) Invalidate(ctx context.Context) {
	if err := s.store.Del(ctx, config.CatalogCacheKey); err != nil {
		s.logger.Error("Catalog cache invalidation failed", "error", err)
	}
}

// TestCatalogStore wires a caller-provided inner store, for miniredis tests.
func TestCatalogStore(inner *redisStore.Store) *RedisCatalogStore {
	return &RedisCatalogStore{
		store:  inner,
		logger: logger_i.NewLogger("CatalogStore"),
	}
}
