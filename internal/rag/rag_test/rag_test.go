package rag_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/synapserag/synapse/internal/config"
	"github.com/synapserag/synapse/internal/domain/commonModels"
	"github.com/synapserag/synapse/internal/rag"
	"github.com/synapserag/synapse/internal/rag/embedding"
	"github.com/synapserag/synapse/internal/rag/llm"
)

func result(score float32, fileName string, page int, chunkIndex int, text string) commonModels.SearchResult {
	return commonModels.SearchResult{
		Id:    fmt.Sprintf("%s-%d", fileName, chunkIndex),
		Score: score,
		Payload: commonModels.ChunkPayload{
			DocId:      "doc-" + fileName,
			FileName:   fileName,
			Page:       page,
			ChunkIndex: chunkIndex,
			Text:       text,
		},
	}
}

func TestChat_Scenarios(t *testing.T) {
	tests := []struct {
		name            string
		query           string
		searchResults   []commonModels.SearchResult
		wantEmbedCalls  int
		wantSources     int
		wantTemperature float32
		wantContext     bool //grounded context block in the user prompt
	}{
		{
			name:            "Greeting_Skips_Retrieval",
			query:           "hi",
			wantEmbedCalls:  0,
			wantSources:     0,
			wantTemperature: config.ConversationalTemperature,
		},
		{
			name:            "Greeting_Case_Insensitive",
			query:           "  Hello  ",
			wantEmbedCalls:  0,
			wantSources:     0,
			wantTemperature: config.ConversationalTemperature,
		},
		{
			name:            "Greeting_Phrase",
			query:           "how are you",
			wantEmbedCalls:  0,
			wantSources:     0,
			wantTemperature: config.ConversationalTemperature,
		},
		{
			name:            "Greeting_Prefix",
			query:           "good morning, can you help me today",
			wantEmbedCalls:  0,
			wantSources:     0,
			wantTemperature: config.ConversationalTemperature,
		},
		{
			name:            "Two_Word_Query_Is_Conversational",
			query:           "machine learning",
			wantEmbedCalls:  0,
			wantSources:     0,
			wantTemperature: config.ConversationalTemperature,
		},
		{
			name:            "Empty_Index_Is_Conversational",
			query:           "what does my contract say about termination",
			searchResults:   []commonModels.SearchResult{},
			wantEmbedCalls:  1,
			wantSources:     0,
			wantTemperature: config.ConversationalTemperature,
		},
		{
			name:  "Low_Relevance_Withholds_Sources",
			query: "what is the meaning of life exactly",
			searchResults: []commonModels.SearchResult{
				result(0.1, "contract.pdf", 1, 0, "termination clause"),
				result(0.05, "contract.pdf", 2, 1, "payment terms"),
			},
			wantEmbedCalls:  1,
			wantSources:     0,
			wantTemperature: config.ConversationalTemperature,
		},
		{
			name:  "Grounded_Attaches_All_Sources",
			query: "what does the contract say about termination",
			searchResults: []commonModels.SearchResult{
				result(0.9, "contract.pdf", 3, 7, "either party may terminate"),
				result(0.4, "contract.pdf", 1, 0, "this agreement commences"),
			},
			wantEmbedCalls:  1,
			wantSources:     2,
			wantTemperature: config.GroundedTemperature,
			wantContext:     true,
		},
		{
			name:  "Threshold_Score_Is_Grounded",
			query: "what does the contract say about termination",
			searchResults: []commonModels.SearchResult{
				result(config.RelevanceThreshold, "contract.pdf", 1, 0, "borderline match"),
			},
			wantEmbedCalls:  1,
			wantSources:     1,
			wantTemperature: config.GroundedTemperature,
			wantContext:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mLLM := &MockLLM{}
			mIndex := &MockIndex{
				OnSearch: func(ctx context.Context, v []float32, topK int) ([]commonModels.SearchResult, error) {
					return tt.searchResults, nil
				},
			}

			s := rag.NewService(newTestProviders(mEmbed, mLLM, mIndex), &MockCatalog{})

			res, err := s.Chat(context.Background(), tt.query, 0)
			if err != nil {
				t.Fatalf("Chat failed: %v", err)
			}

			if mEmbed.Calls != tt.wantEmbedCalls {
				t.Errorf("embedder called %d times, want %d", mEmbed.Calls, tt.wantEmbedCalls)
			}
			if len(res.Sources) != tt.wantSources {
				t.Errorf("got %d sources, want %d", len(res.Sources), tt.wantSources)
			}
			if res.Sources == nil {
				t.Error("sources must never be nil, empty means an empty list")
			}
			if mLLM.LastTemperature != tt.wantTemperature {
				t.Errorf("temperature %v, want %v", mLLM.LastTemperature, tt.wantTemperature)
			}
			if got := strings.Contains(mLLM.LastUser, "[Source 1]"); got != tt.wantContext {
				t.Errorf("context block present = %v, want %v", got, tt.wantContext)
			}
			if res.Answer != "mocked llm response" {
				t.Errorf("unexpected answer %q", res.Answer)
			}
		})
	}
}

func TestChat_SourcesMirrorResults(t *testing.T) {
	results := []commonModels.SearchResult{
		result(0.92, "specs.pdf", 4, 11, "maximum load is 40 tons"),
		result(0.55, "manual.txt", 1, 2, "check pressure monthly"),
	}
	mIndex := &MockIndex{
		OnSearch: func(ctx context.Context, v []float32, topK int) ([]commonModels.SearchResult, error) {
			return results, nil
		},
	}
	mLLM := &MockLLM{}

	s := rag.NewService(newTestProviders(&MockEmbedder{}, mLLM, mIndex), &MockCatalog{})
	res, err := s.Chat(context.Background(), "what is the maximum load of the crane", 5)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if len(res.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(res.Sources))
	}
	for i, src := range res.Sources {
		want := results[i]
		if src.Score != want.Score {
			t.Errorf("source %d score %v, want the raw search score %v", i, src.Score, want.Score)
		}
		if src.FileName != want.Payload.FileName || src.Page != want.Payload.Page || src.ChunkId != want.Payload.ChunkIndex {
			t.Errorf("source %d = %+v does not mirror result payload %+v", i, src, want.Payload)
		}
	}

	// the context block carries the same chunks in the same order
	if !strings.Contains(mLLM.LastUser, "[Source 1] (File: specs.pdf, Page: 4, Chunk: 11)") {
		t.Errorf("context is missing the first source header:\n%s", mLLM.LastUser)
	}
	if !strings.Contains(mLLM.LastUser, "[Source 2] (File: manual.txt, Page: 1, Chunk: 2)") {
		t.Errorf("context is missing the second source header:\n%s", mLLM.LastUser)
	}
}

func TestChat_TopKClamping(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		wantTopK  int
	}{
		{"Zero_Defaults", 0, config.DefaultTopK},
		{"Negative_Defaults", -3, config.DefaultTopK},
		{"Within_Range", 7, 7},
		{"Above_Cap", 100, config.MaxTopK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotTopK int
			mIndex := &MockIndex{
				OnSearch: func(ctx context.Context, v []float32, topK int) ([]commonModels.SearchResult, error) {
					gotTopK = topK
					return nil, nil
				},
			}

			s := rag.NewService(newTestProviders(&MockEmbedder{}, &MockLLM{}, mIndex), &MockCatalog{})
			if _, err := s.Chat(context.Background(), "tell me about the indexed documents", tt.requested); err != nil {
				t.Fatalf("Chat failed: %v", err)
			}
			if gotTopK != tt.wantTopK {
				t.Errorf("search received topK %d, want %d", gotTopK, tt.wantTopK)
			}
		})
	}
}

func TestChat_Failures(t *testing.T) {
	searchHits := []commonModels.SearchResult{result(0.9, "a.pdf", 1, 0, "text")}

	t.Run("LLM_Client_Unavailable", func(t *testing.T) {
		mEmbed := &MockEmbedder{}
		providers := newTestProviders(mEmbed, &MockLLM{}, &MockIndex{})
		providers.LLM = func(ctx context.Context) (llm.Provider, error) {
			return nil, fmt.Errorf("%w: DEEPSEEK_API_KEY not found in environment", commonModels.ErrLLMUnavailable)
		}

		s := rag.NewService(providers, &MockCatalog{})
		_, err := s.Chat(context.Background(), "what does the report conclude about revenue", 5)
		if !errors.Is(err, commonModels.ErrLLMUnavailable) {
			t.Fatalf("expected ErrLLMUnavailable, got %v", err)
		}
		if mEmbed.Calls != 0 {
			t.Errorf("no embedding should be spent when the llm client is dead")
		}
	})

	t.Run("Embedding_Client_Unavailable", func(t *testing.T) {
		providers := newTestProviders(&MockEmbedder{}, &MockLLM{}, &MockIndex{})
		providers.Embedder = func(ctx context.Context) (embedding.Embedder, error) {
			return nil, fmt.Errorf("%w: GEMINI_API_KEY not found in environment", commonModels.ErrEmbeddingUnavailable)
		}

		s := rag.NewService(providers, &MockCatalog{})
		_, err := s.Chat(context.Background(), "what does the report conclude about revenue", 5)
		if !errors.Is(err, commonModels.ErrEmbeddingUnavailable) {
			t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
		}
	})

	t.Run("Search_Failure", func(t *testing.T) {
		mIndex := &MockIndex{
			OnSearch: func(ctx context.Context, v []float32, topK int) ([]commonModels.SearchResult, error) {
				return nil, errors.New("connection refused")
			},
		}
		s := rag.NewService(newTestProviders(&MockEmbedder{}, &MockLLM{}, mIndex), &MockCatalog{})
		if _, err := s.Chat(context.Background(), "what does the report conclude about revenue", 5); err == nil {
			t.Fatal("expected search failure to propagate")
		}
	})

	t.Run("Generation_Failure", func(t *testing.T) {
		mIndex := &MockIndex{
			OnSearch: func(ctx context.Context, v []float32, topK int) ([]commonModels.SearchResult, error) {
				return searchHits, nil
			},
		}
		mLLM := &MockLLM{
			OnGenerate: func(ctx context.Context, sys, user string, temp float32) (string, error) {
				return "", fmt.Errorf("%w: provider down", commonModels.ErrLLMUnavailable)
			},
		}
		s := rag.NewService(newTestProviders(&MockEmbedder{}, mLLM, mIndex), &MockCatalog{})
		_, err := s.Chat(context.Background(), "what does the report conclude about revenue", 5)
		if !errors.Is(err, commonModels.ErrLLMUnavailable) {
			t.Fatalf("expected ErrLLMUnavailable, got %v", err)
		}
	})
}

func TestChat_QueryRole(t *testing.T) {
	mEmbed := &MockEmbedder{
		OnEmbed: func(ctx context.Context, text string, role embedding.Role) ([]float32, error) {
			if role != embedding.RoleQuery {
				t.Errorf("chat must embed with the query role, got %q", role)
			}
			return []float32{1, 0}, nil
		},
	}
	s := rag.NewService(newTestProviders(mEmbed, &MockLLM{}, &MockIndex{}), &MockCatalog{})
	if _, err := s.Chat(context.Background(), "what does the report conclude about revenue", 5); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if mEmbed.Calls != 1 {
		t.Fatalf("embedder called %d times, want 1", mEmbed.Calls)
	}
}

func TestListDocuments_BuildsCatalogFromIndex(t *testing.T) {
	payloads := []commonModels.ChunkPayload{
		{DocId: "doc-b", FileName: "zebra.pdf", ChunkIndex: 0, UploadTimestamp: "2026-02-01T10:00:00Z"},
		{DocId: "doc-b", FileName: "zebra.pdf", ChunkIndex: 1, UploadTimestamp: "2026-02-01T10:00:00Z"},
		{DocId: "doc-b", FileName: "zebra.pdf", ChunkIndex: 2, UploadTimestamp: "2026-01-15T08:00:00Z"},
		{DocId: "doc-a", FileName: "alpha.txt", ChunkIndex: 0, UploadTimestamp: "2026-03-01T12:00:00Z"},
	}
	listCalls := 0
	mIndex := &MockIndex{
		OnListAll: func(ctx context.Context) ([]commonModels.ChunkPayload, error) {
			listCalls++
			return payloads, nil
		},
	}
	catalog := &MockCatalog{}

	s := rag.NewService(newTestProviders(&MockEmbedder{}, &MockLLM{}, mIndex), catalog)

	docs, err := s.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if docs[0].FileName != "alpha.txt" || docs[1].FileName != "zebra.pdf" {
		t.Errorf("catalog must be sorted by file name, got %q then %q", docs[0].FileName, docs[1].FileName)
	}
	if docs[1].ChunksCount != 3 {
		t.Errorf("zebra.pdf should count 3 chunks, got %d", docs[1].ChunksCount)
	}
	if docs[1].UploadTimestamp != "2026-01-15T08:00:00Z" {
		t.Errorf("catalog must keep the earliest timestamp, got %s", docs[1].UploadTimestamp)
	}
	if catalog.Saves != 1 {
		t.Errorf("catalog should be cached once, saved %d times", catalog.Saves)
	}

	// second call hits the cache, not the index
	if _, err := s.ListDocuments(context.Background()); err != nil {
		t.Fatalf("cached ListDocuments failed: %v", err)
	}
	if listCalls != 1 {
		t.Errorf("index enumerated %d times, cache should have served the second call", listCalls)
	}
}

func TestDeleteDocument(t *testing.T) {
	t.Run("Deletes_And_Invalidates", func(t *testing.T) {
		mIndex := &MockIndex{
			OnDeleteByDocId: func(ctx context.Context, docId string) (uint64, error) {
				if docId != "doc-1" {
					t.Errorf("unexpected doc id %q", docId)
				}
				return 4, nil
			},
		}
		catalog := &MockCatalog{Valid: true}
		s := rag.NewService(newTestProviders(&MockEmbedder{}, &MockLLM{}, mIndex), catalog)

		count, err := s.DeleteDocument(context.Background(), "doc-1")
		if err != nil {
			t.Fatalf("DeleteDocument failed: %v", err)
		}
		if count != 4 {
			t.Errorf("got count %d, want 4", count)
		}
		if catalog.Invalidates != 1 {
			t.Errorf("catalog should be invalidated after a deletion")
		}
	})

	t.Run("Unknown_Id_Keeps_Cache", func(t *testing.T) {
		catalog := &MockCatalog{Valid: true}
		s := rag.NewService(newTestProviders(&MockEmbedder{}, &MockLLM{}, &MockIndex{}), catalog)

		count, err := s.DeleteDocument(context.Background(), "ghost")
		if err != nil {
			t.Fatalf("DeleteDocument failed: %v", err)
		}
		if count != 0 {
			t.Errorf("got count %d, want 0", count)
		}
		if catalog.Invalidates != 0 {
			t.Errorf("deleting nothing must not invalidate the catalog")
		}
	})
}

func TestIngestDocument_InvalidatesCatalog(t *testing.T) {
	dummyFile := t.TempDir() + "/ingest.txt"
	if err := os.WriteFile(dummyFile, []byte("test content for ingestion"), 0644); err != nil {
		t.Fatal(err)
	}

	catalog := &MockCatalog{Valid: true}
	s := rag.NewService(newTestProviders(&MockEmbedder{}, &MockLLM{}, &MockIndex{}), catalog)

	result, err := s.IngestDocument(context.Background(), dummyFile, "ingest.txt")
	if err != nil {
		t.Fatalf("IngestDocument failed: %v", err)
	}
	if result.ChunksCreated == 0 {
		t.Error("expected at least one chunk")
	}
	if catalog.Invalidates != 1 {
		t.Errorf("catalog should be invalidated after an ingest, got %d", catalog.Invalidates)
	}
}

func TestHealth(t *testing.T) {
	t.Run("All_Ok", func(t *testing.T) {
		s := rag.NewService(newTestProviders(&MockEmbedder{}, &MockLLM{}, &MockIndex{}), &MockCatalog{})
		report := s.Health(context.Background())

		if report.Status != "ok" {
			t.Errorf("overall status %q, want ok", report.Status)
		}
		for _, name := range []string{"embedding", "llm", "vector_index"} {
			if report.Services[name].Status != "ok" {
				t.Errorf("service %s is %q, want ok", name, report.Services[name].Status)
			}
		}
	})

	t.Run("One_Dead_Dependency_Degrades", func(t *testing.T) {
		mIndex := &MockIndex{
			OnPing: func(ctx context.Context) error { return errors.New("qdrant unreachable") },
		}
		s := rag.NewService(newTestProviders(&MockEmbedder{}, &MockLLM{}, mIndex), &MockCatalog{})
		report := s.Health(context.Background())

		if report.Status != "degraded" {
			t.Errorf("overall status %q, want degraded", report.Status)
		}
		if report.Services["vector_index"].Error == "" {
			t.Error("failing probe should carry its error text")
		}
		if report.Services["llm"].Status != "ok" {
			t.Error("healthy services must stay ok in a degraded report")
		}
	})

	t.Run("Unavailable_Provider_Degrades", func(t *testing.T) {
		providers := newTestProviders(&MockEmbedder{}, &MockLLM{}, &MockIndex{})
		providers.Embedder = func(ctx context.Context) (embedding.Embedder, error) {
			return nil, fmt.Errorf("%w: no api key", commonModels.ErrEmbeddingUnavailable)
		}
		s := rag.NewService(providers, &MockCatalog{})
		report := s.Health(context.Background())

		if report.Status != "degraded" {
			t.Errorf("overall status %q, want degraded", report.Status)
		}
		if report.Services["embedding"].Status != "error" {
			t.Errorf("embedding status %q, want error", report.Services["embedding"].Status)
		}
	})
}
