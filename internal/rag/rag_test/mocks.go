package rag_test

import (
	"context"

	"github.com/synapserag/synapse/internal/domain/commonModels"
	"github.com/synapserag/synapse/internal/rag"
	"github.com/synapserag/synapse/internal/rag/embedding"
	"github.com/synapserag/synapse/internal/rag/llm"
	"github.com/synapserag/synapse/internal/rag/vectorDB"
)

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnEmbed func(ctx context.Context, text string, role embedding.Role) ([]float32, error)
	OnPing  func(ctx context.Context) error
	Calls   int
}

func (m *MockEmbedder) Embed(ctx context.Context, text string, role embedding.Role) ([]float32, error) {
	m.Calls++
	if m.OnEmbed != nil {
		return m.OnEmbed(ctx, text, role)
	}
	return []float32{0.6, 0.8}, nil
}

func (m *MockEmbedder) Ping(ctx context.Context) error {
	if m.OnPing != nil {
		return m.OnPing(ctx)
	}
	return nil
}

// MockIndex implements vectorDB.Index
type MockIndex struct {
	OnUpsertBatch   func(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error
	OnSearch        func(ctx context.Context, queryVector []float32, topK int) ([]commonModels.SearchResult, error)
	OnDeleteByDocId func(ctx context.Context, docId string) (uint64, error)
	OnListAll       func(ctx context.Context) ([]commonModels.ChunkPayload, error)
	OnPing          func(ctx context.Context) error
}

func (m *MockIndex) UpsertBatch(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, chunks, vectors)
	}
	return nil
}

func (m *MockIndex) Search(ctx context.Context, queryVector []float32, topK int) ([]commonModels.SearchResult, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, queryVector, topK)
	}
	return []commonModels.SearchResult{}, nil
}

func (m *MockIndex) DeleteByDocId(ctx context.Context, docId string) (uint64, error) {
	if m.OnDeleteByDocId != nil {
		return m.OnDeleteByDocId(ctx, docId)
	}
	return 0, nil
}

func (m *MockIndex) ListAll(ctx context.Context) ([]commonModels.ChunkPayload, error) {
	if m.OnListAll != nil {
		return m.OnListAll(ctx)
	}
	return nil, nil
}

func (m *MockIndex) Ping(ctx context.Context) error {
	if m.OnPing != nil {
		return m.OnPing(ctx)
	}
	return nil
}

// MockLLM implements llm.Provider and records what it was asked to generate
type MockLLM struct {
	OnGenerate      func(ctx context.Context, systemPrompt string, userPrompt string, temperature float32) (string, error)
	OnPing          func(ctx context.Context) error
	LastSystem      string
	LastUser        string
	LastTemperature float32
	Calls           int
}

func (m *MockLLM) Generate(ctx context.Context, systemPrompt string, userPrompt string, temperature float32) (string, error) {
	m.Calls++
	m.LastSystem = systemPrompt
	m.LastUser = userPrompt
	m.LastTemperature = temperature
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, systemPrompt, userPrompt, temperature)
	}
	return "mocked llm response", nil
}

func (m *MockLLM) Ping(ctx context.Context) error {
	if m.OnPing != nil {
		return m.OnPing(ctx)
	}
	return nil
}

// MockCatalog implements store.CatalogStore without a backing redis
type MockCatalog struct {
	Docs        []commonModels.DocumentInfo
	Valid       bool
	Saves       int
	Invalidates int
}

func (m *MockCatalog) Get(ctx context.Context) ([]commonModels.DocumentInfo, bool) {
	return m.Docs, m.Valid
}

func (m *MockCatalog) Save(ctx context.Context, docs []commonModels.DocumentInfo) {
	m.Docs = docs
	m.Valid = true
	m.Saves++
}

func (m *MockCatalog) Invalidate(ctx context.Context) {
	m.Valid = false
	m.Invalidates++
}

func newTestProviders(e *MockEmbedder, l *MockLLM, v *MockIndex) rag.Providers {
	return rag.Providers{
		Embedder: func(ctx context.Context) (embedding.Embedder, error) { return e, nil },
		LLM:      func(ctx context.Context) (llm.Provider, error) { return l, nil },
		Index:    func(ctx context.Context) (vectorDB.Index, error) { return v, nil },
	}
}
