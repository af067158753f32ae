package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/synapserag/synapse/internal/config"
	"github.com/synapserag/synapse/internal/domain/commonModels"
	"github.com/synapserag/synapse/internal/rag/embedding"
)

// --- Mocks for ProcessDocument ---

type mockEmbedder struct {
	embedFunc func(ctx context.Context, text string, role embedding.Role) ([]float32, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string, role embedding.Role) ([]float32, error) {
	if m.embedFunc != nil {
		return m.embedFunc(ctx, text, role)
	}
	return []float32{0.1, 0.2}, nil
}
func (m *mockEmbedder) Ping(ctx context.Context) error { return nil }

type mockIndex struct {
	upsertFunc func(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error
}

func (m *mockIndex) UpsertBatch(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, chunks, vectors)
	}
	return nil
}
func (m *mockIndex) Search(ctx context.Context, v []float32, topK int) ([]commonModels.SearchResult, error) {
	return nil, nil
}
func (m *mockIndex) DeleteByDocId(ctx context.Context, docId string) (uint64, error) { return 0, nil }
func (m *mockIndex) ListAll(ctx context.Context) ([]commonModels.ChunkPayload, error) {
	return nil, nil
}
func (m *mockIndex) Ping(ctx context.Context) error { return nil }

func TestGetDocType(t *testing.T) {
	tests := []struct {
		fileName string
		want     commonModels.DocType
		wantErr  bool
	}{
		{"report.pdf", commonModels.PDF, false},
		{"REPORT.PDF", commonModels.PDF, false},
		{"notes.docx", commonModels.DOCX, false},
		{"legacy.doc", commonModels.DOCX, false},
		{"readme.txt", commonModels.TXT, false},
		{"malware.exe", commonModels.ERR, true},
		{"noextension", commonModels.ERR, true},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			got, err := getDocType(tt.fileName)
			if (err != nil) != tt.wantErr {
				t.Fatalf("getDocType(%q) error = %v, wantErr %v", tt.fileName, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("getDocType(%q) = %v, want %v", tt.fileName, got, tt.want)
			}
			if tt.wantErr && !errors.Is(err, commonModels.ErrUnsupportedFormat) {
				t.Errorf("error %v should wrap ErrUnsupportedFormat", err)
			}
		})
	}
}

func TestSplitTextIntoChunks_ShortText(t *testing.T) {
	text := "a short paragraph"
	chunks := splitTextIntoChunks(text, config.ChunkSizeLimit, config.ChunkOverlap)
	if len(chunks) != 1 || chunks[0] != text {
		t.Fatalf("short text should be a single untouched chunk, got %d chunks", len(chunks))
	}
}

func TestSplitTextIntoChunks_Limit(t *testing.T) {
	text := strings.Repeat("some words in a sentence. ", 400)
	chunks := splitTextIntoChunks(text, config.ChunkSizeLimit, config.ChunkOverlap)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > config.ChunkSizeLimit {
			t.Errorf("chunk %d has %d chars, limit is %d", i, len(c), config.ChunkSizeLimit)
		}
	}
}

func TestSplitTextIntoChunks_Overlap(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet. ", 200)
	chunks := splitTextIntoChunks(text, config.ChunkSizeLimit, config.ChunkOverlap)

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-config.ChunkOverlap:]
		if !strings.HasPrefix(chunks[i], tail) {
			t.Fatalf("chunk %d does not start with the last %d chars of chunk %d", i, config.ChunkOverlap, i-1)
		}
	}
}

func TestSplitTextIntoChunks_Deterministic(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta.\n\nnext paragraph here. ", 100)
	first := splitTextIntoChunks(text, config.ChunkSizeLimit, config.ChunkOverlap)
	second := splitTextIntoChunks(text, config.ChunkSizeLimit, config.ChunkOverlap)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitTextIntoChunks_HardCut(t *testing.T) {
	// no separator anywhere in the window forces a hard cut at the limit
	text := strings.Repeat("x", 2500)
	chunks := splitTextIntoChunks(text, config.ChunkSizeLimit, config.ChunkOverlap)

	for i, c := range chunks {
		if len(c) > config.ChunkSizeLimit {
			t.Errorf("chunk %d has %d chars, limit is %d", i, len(c), config.ChunkSizeLimit)
		}
	}
	joined := 0
	for _, c := range chunks {
		joined += len(c)
	}
	if joined < len(text) {
		t.Errorf("chunks cover %d chars, original has %d", joined, len(text))
	}
}

func TestPrepareChunks(t *testing.T) {
	doc := commonModels.Document{Id: "doc-1", Name: "multi.pdf", ContentType: commonModels.PDF}
	pages := []rawPage{
		{Number: 1, Content: strings.Repeat("page one content. ", 120)},
		{Number: 3, Content: "page three is short"},
	}

	chunks := PrepareChunks(pages, doc)

	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}
	seen := make(map[string]bool)
	for i, c := range chunks {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d has index %d, indices must be strictly increasing from zero", i, c.ChunkIndex)
		}
		if c.Doc.Id != "doc-1" {
			t.Errorf("chunk %d lost its document reference", i)
		}
		if seen[c.ChunkId] {
			t.Errorf("duplicate chunk id %s", c.ChunkId)
		}
		seen[c.ChunkId] = true
	}
	last := chunks[len(chunks)-1]
	if last.PageNum != 3 {
		t.Errorf("last chunk should come from page 3, got page %d", last.PageNum)
	}
}

func TestProcessDocument_TxtRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.txt")
	if err := os.WriteFile(path, []byte("plain text content for indexing"), 0644); err != nil {
		t.Fatal(err)
	}

	var upserted []commonModels.DocChunk
	index := &mockIndex{
		upsertFunc: func(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
			if len(chunks) != len(vectors) {
				t.Fatalf("got %d chunks but %d vectors", len(chunks), len(vectors))
			}
			upserted = chunks
			return nil
		},
	}

	result, err := ProcessDocument(context.Background(), path, "sample.txt", &mockEmbedder{}, index)
	if err != nil {
		t.Fatalf("ProcessDocument failed: %v", err)
	}
	if result.ChunksCreated != 1 || len(upserted) != 1 {
		t.Errorf("expected one stored chunk, got %d created / %d upserted", result.ChunksCreated, len(upserted))
	}
	if result.DocId == "" || result.UploadTimestamp == "" {
		t.Errorf("result is missing identity fields: %+v", result)
	}
	if upserted[0].PageNum != 1 {
		t.Errorf("txt content should land on page 1, got %d", upserted[0].PageNum)
	}
}

func TestProcessDocument_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("   \n\t  "), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ProcessDocument(context.Background(), path, "empty.txt", &mockEmbedder{}, &mockIndex{})
	if !errors.Is(err, commonModels.ErrNoExtractableText) {
		t.Fatalf("whitespace-only file should fail with ErrNoExtractableText, got %v", err)
	}
}

func TestProcessDocument_UnsupportedFormat(t *testing.T) {
	_, err := ProcessDocument(context.Background(), "whatever", "binary.exe", &mockEmbedder{}, &mockIndex{})
	if !errors.Is(err, commonModels.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestProcessDocument_EmbedFailureSkipsUpsert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}

	embedErr := errors.New("quota exceeded")
	e := &mockEmbedder{
		embedFunc: func(ctx context.Context, text string, role embedding.Role) ([]float32, error) {
			return nil, embedErr
		},
	}
	index := &mockIndex{
		upsertFunc: func(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
			t.Fatal("UpsertBatch must not be called when embedding fails")
			return nil
		},
	}

	_, err := ProcessDocument(context.Background(), path, "doc.txt", e, index)
	if !errors.Is(err, embedErr) {
		t.Fatalf("expected the embedding error, got %v", err)
	}
}

func TestProcessDocument_UpsertFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}

	index := &mockIndex{
		upsertFunc: func(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
			return errors.New("disk full")
		},
	}

	_, err := ProcessDocument(context.Background(), path, "doc.txt", &mockEmbedder{}, index)
	if err == nil {
		t.Fatal("expected upsert failure to propagate")
	}
}

func TestEmbedChunks_DocumentRole(t *testing.T) {
	doc := commonModels.Document{Id: "doc-r"}
	chunks := PrepareChunks([]rawPage{{Number: 1, Content: "first"}, {Number: 2, Content: "second"}}, doc)

	e := &mockEmbedder{
		embedFunc: func(ctx context.Context, text string, role embedding.Role) ([]float32, error) {
			if role != embedding.RoleDocument {
				t.Errorf("ingestion must embed with the document role, got %q", role)
			}
			return []float32{float32(len(text))}, nil
		},
	}

	vectors, err := embedChunks(context.Background(), chunks, e)
	if err != nil {
		t.Fatalf("embedChunks failed: %v", err)
	}
	if len(vectors) != len(chunks) {
		t.Fatalf("got %d vectors for %d chunks", len(vectors), len(chunks))
	}
	for i, v := range vectors {
		if len(v) == 0 {
			t.Errorf("vector %d was never filled", i)
		}
	}
}
