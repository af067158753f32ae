package rag

import (
	"context"
	"time"

	"github.com/synapserag/synapse/internal/domain/commonModels"
	"github.com/synapserag/synapse/internal/metrics"
	"github.com/synapserag/synapse/internal/rag/embedding"
	"github.com/synapserag/synapse/internal/rag/llm"
)

func (s *service) executeEmbeddingStep(ctx context.Context, query string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	embedder, err := s.providers.Embedder(ctx)
	if err != nil {
		return nil, err
	}
	return embedder.Embed(ctx, query, embedding.RoleQuery)
}

func (s *service) executeSearchStep(ctx context.Context, queryVector []float32, topK int) ([]commonModels.SearchResult, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	index, err := s.providers.Index(ctx)
	if err != nil {
		return nil, err
	}
	return index.Search(ctx, queryVector, topK)
}

func (s *service) executeLLMStep(ctx context.Context, provider llm.Provider, system string, user string, temperature float32) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return provider.Generate(ctx, system, user, temperature)
}
