package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/synapserag/synapse/internal/adapter/utils"
	"github.com/synapserag/synapse/internal/config"
	"github.com/synapserag/synapse/internal/domain/commonModels"
	"github.com/synapserag/synapse/internal/rag/embedding"
	"github.com/synapserag/synapse/internal/rag/vectorDB"
	"github.com/synapserag/synapse/pkg/logger_i"
)

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

type Result struct {
	DocId           string
	ChunksCreated   int
	UploadTimestamp string
}

var logger = logger_i.NewLogger("Document Ingestion")

// ProcessDocument runs extract -> chunk -> embed -> store for one uploaded
// file. Any stage failure aborts the whole document before the index write;
// either every chunk lands in a single batch or none do.
func ProcessDocument(ctx context.Context, path string, fileName string, e embedding.Embedder, index vectorDB.Index) (Result, error) {
	docType, err := getDocType(fileName)
	if err != nil {
		return Result{}, err
	}

	pages, err := extractText(path, docType)
	if err != nil {
		return Result{}, err
	}
	if len(pages) == 0 {
		// e.g. a scanned pdf with no OCR layer - nothing to index is fatal
		return Result{}, commonModels.ErrNoExtractableText
	}
	logger.Debug("Processing document", "filename", fileName, "pages", len(pages))

	doc := commonModels.Document{
		Id:              utils.GetNewUUID(),
		Name:            fileName,
		UploadTimestamp: time.Now().Format(time.RFC3339),
		ContentType:     docType,
	}

	chunks := PrepareChunks(pages, doc)
	logger.Debug("Processing document", "chunks", len(chunks))

	vectors, err := embedChunks(ctx, chunks, e)
	if err != nil {
		// vectors embedded so far are discarded, never stored standalone
		return Result{}, err
	}

	if err := index.UpsertBatch(ctx, chunks, vectors); err != nil {
		return Result{}, err
	}

	return Result{
		DocId:           doc.Id,
		ChunksCreated:   len(chunks),
		UploadTimestamp: doc.UploadTimestamp,
	}, nil
}

// embedChunks embeds every chunk with the document role on a small worker
// pool. Chunk indices were assigned in PrepareChunks, so concurrent
// completion order cannot reshuffle them; the first failure cancels the rest.
func embedChunks(ctx context.Context, chunks []commonModels.DocChunk, e embedding.Embedder) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := config.EmbeddingWorkerCount
	if workers > len(chunks) {
		workers = len(chunks)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				vec, err := e.Embed(workCtx, chunks[i].Chunk, embedding.RoleDocument)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					cancel()
					return
				}
				vectors[i] = vec
			}
		}()
	}

feed:
	for i := range chunks {
		select {
		case jobs <- i:
		case <-workCtx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return vectors, nil
}
