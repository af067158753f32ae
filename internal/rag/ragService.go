package rag

import (
	"context"
	"sort"
	"time"

	"github.com/synapserag/synapse/internal/config"
	"github.com/synapserag/synapse/internal/data/store"
	"github.com/synapserag/synapse/internal/domain/commonModels"
	"github.com/synapserag/synapse/internal/metrics"
	"github.com/synapserag/synapse/internal/rag/embedding"
	"github.com/synapserag/synapse/internal/rag/ingest"
	"github.com/synapserag/synapse/internal/rag/llm"
	"github.com/synapserag/synapse/internal/rag/vectorDB"
	"github.com/synapserag/synapse/pkg/logger_i"
)

// Source is one citation attached to a grounded answer. ChunkId is the
// per-document chunk index, which is what the citation format references.
type Source struct {
	FileName string
	Page     int
	ChunkId  int
	Score    float32
	Text     string
}

type ChatResult struct {
	Answer  string
	Sources []Source
}

type HealthStatus struct {
	Status string
	Error  string
}

type HealthReport struct {
	Status   string
	Services map[string]HealthStatus
}

// Providers hands the service its external collaborators as lazy getters.
// Each getter is a process-wide memoized initializer that caches success or
// failure, so a dead dependency costs one attempt and then surfaces on every
// request as a service-unavailable error instead of blocking startup.
type Providers struct {
	Embedder func(ctx context.Context) (embedding.Embedder, error)
	LLM      func(ctx context.Context) (llm.Provider, error)
	Index    func(ctx context.Context) (vectorDB.Index, error)
}

// Service is the public contract; handlers don't need to know the llm or the
// vector index behind it.
type Service interface {
	Chat(ctx context.Context, query string, topK int) (ChatResult, error)
	IngestDocument(ctx context.Context, path string, fileName string) (ingest.Result, error)
	ListDocuments(ctx context.Context) ([]commonModels.DocumentInfo, error)
	DeleteDocument(ctx context.Context, docId string) (uint64, error)
	Health(ctx context.Context) HealthReport
}

type service struct {
	providers Providers
	catalog   store.CatalogStore
	logger    *logger_i.Logger
}

// NewService constructor. catalog may not be nil; pass the in-memory store
// when redis is offline.
func NewService(p Providers, catalog store.CatalogStore) Service {
	return &service{
		providers: p,
		catalog:   catalog,
		logger:    logger_i.NewLogger("RAG Service"),
	}
}

// Chat runs the retrieval and response pipeline. The terminal state is
// always an answer; which prompt produced it depends on the classified mode.
func (s *service) Chat(ctx context.Context, query string, topK int) (ChatResult, error) {
	if topK <= 0 {
		topK = config.DefaultTopK
	}
	if topK > config.MaxTopK {
		topK = config.MaxTopK
	}

	llmClient, err := s.providers.LLM(ctx)
	if err != nil {
		return ChatResult{}, err
	}

	// greetings skip retrieval entirely - no embedding call, no search
	if classify(query, nil) == ModeGreeting {
		metrics.CountResponseMode(ModeGreeting.String())
		system, user, temp := buildPrompt(ModeGreeting, query, nil)
		answer, err := s.executeLLMStep(ctx, llmClient, system, user, temp)
		if err != nil {
			return ChatResult{}, err
		}
		return ChatResult{Answer: answer, Sources: []Source{}}, nil
	}

	queryVector, err := s.executeEmbeddingStep(ctx, query)
	if err != nil {
		return ChatResult{}, err
	}

	results, err := s.executeSearchStep(ctx, queryVector, topK)
	if err != nil {
		return ChatResult{}, err
	}

	mode := classify(query, results)
	metrics.CountResponseMode(mode.String())
	s.logger.Debug("Chat classified", "mode", mode.String(), "matches", len(results))

	system, user, temp := buildPrompt(mode, query, results)
	answer, err := s.executeLLMStep(ctx, llmClient, system, user, temp)
	if err != nil {
		return ChatResult{}, err
	}

	sources := []Source{}
	if mode == ModeGrounded {
		sources = buildSources(results)
	}
	return ChatResult{Answer: answer, Sources: sources}, nil
}

func (s *service) IngestDocument(ctx context.Context, path string, fileName string) (ingest.Result, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	embedder, err := s.providers.Embedder(ctx)
	if err != nil {
		return ingest.Result{}, err
	}
	index, err := s.providers.Index(ctx)
	if err != nil {
		return ingest.Result{}, err
	}

	result, err := ingest.ProcessDocument(ctx, path, fileName, embedder, index)
	if err != nil {
		return ingest.Result{}, err
	}

	s.catalog.Invalidate(ctx)
	metrics.CountIngestedDocument(result.ChunksCreated)
	return result, nil
}

func (s *service) ListDocuments(ctx context.Context) ([]commonModels.DocumentInfo, error) {
	if docs, hit := s.catalog.Get(ctx); hit {
		return docs, nil
	}

	index, err := s.providers.Index(ctx)
	if err != nil {
		return nil, err
	}
	payloads, err := index.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	docs := buildCatalog(payloads)
	s.catalog.Save(ctx, docs)
	return docs, nil
}

// DeleteDocument reports how many chunks were removed. Zero means the doc id
// was never indexed; the boundary translates that to not-found.
func (s *service) DeleteDocument(ctx context.Context, docId string) (uint64, error) {
	index, err := s.providers.Index(ctx)
	if err != nil {
		return 0, err
	}
	count, err := index.DeleteByDocId(ctx, docId)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.catalog.Invalidate(ctx)
	}
	return count, nil
}

func (s *service) Health(ctx context.Context) HealthReport {
	services := map[string]HealthStatus{
		"embedding": probe(func() error {
			e, err := s.providers.Embedder(ctx)
			if err != nil {
				return err
			}
			return e.Ping(ctx)
		}),
		"llm": probe(func() error {
			l, err := s.providers.LLM(ctx)
			if err != nil {
				return err
			}
			return l.Ping(ctx)
		}),
		"vector_index": probe(func() error {
			idx, err := s.providers.Index(ctx)
			if err != nil {
				return err
			}
			return idx.Ping(ctx)
		}),
	}

	overall := "ok"
	for _, st := range services {
		if st.Status != "ok" {
			overall = "degraded"
			break
		}
	}
	return HealthReport{Status: overall, Services: services}
}

func probe(check func() error) HealthStatus {
	if err := check(); err != nil {
		return HealthStatus{Status: "error", Error: err.Error()}
	}
	return HealthStatus{Status: "ok"}
}

// buildCatalog groups chunk payloads by doc id, counts chunks, and keeps the
// earliest upload timestamp per group. ISO-8601 strings compare
// chronologically, so a plain string compare suffices.
func buildCatalog(payloads []commonModels.ChunkPayload) []commonModels.DocumentInfo {
	grouped := make(map[string]*commonModels.DocumentInfo)
	for _, p := range payloads {
		if p.DocId == "" {
			continue
		}
		info, ok := grouped[p.DocId]
		if !ok {
			info = &commonModels.DocumentInfo{
				DocId:           p.DocId,
				FileName:        p.FileName,
				UploadTimestamp: p.UploadTimestamp,
			}
			grouped[p.DocId] = info
		}
		info.ChunksCount++
		if p.UploadTimestamp != "" && (info.UploadTimestamp == "" || p.UploadTimestamp < info.UploadTimestamp) {
			info.UploadTimestamp = p.UploadTimestamp
		}
	}

	docs := make([]commonModels.DocumentInfo, 0, len(grouped))
	for _, info := range grouped {
		docs = append(docs, *info)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].FileName < docs[j].FileName
	})
	return docs
}
