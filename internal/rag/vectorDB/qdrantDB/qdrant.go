package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/qdrant/go-client/qdrant"
	"github.com/synapserag/synapse/internal/config"
	"github.com/synapserag/synapse/internal/domain/commonModels"
	"github.com/synapserag/synapse/internal/rag/vectorDB"
	"github.com/synapserag/synapse/pkg/logger_i"
)

var logger *logger_i.Logger
var once sync.Once
var qdrantInstance *qdrant.Client
var initErr error
var dimension = uint64(config.EmbeddingDimension)
var collectionName = config.CollectionName

type ClientHolder struct {
	QObj *qdrant.Client
}

// GetQdrantClient dials Qdrant and ensures the documents collection exists,
// once per process. The init outcome - the client or the error - is cached.
func GetQdrantClient(ctx context.Context) (vectorDB.Index, error) {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res, err := newClient(ctx)
		if err != nil {
			initErr = fmt.Errorf("%w: %v", commonModels.ErrIndexUnavailable, err)
			return
		}
		qdrantInstance = res
		go closeQdrant(ctx, qdrantInstance)
	})

	if initErr != nil {
		return nil, initErr
	}
	return &ClientHolder{QObj: qdrantInstance}, nil
}

func newClient(ctx context.Context) (*qdrant.Client, error) {
	host, port := config.GetQdrantAddr()

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate Qdrant client", "error", err)
		return nil, err
	}

	if err := createCollection(ctx, client, collectionName); err != nil {
		logger.Error("could not create collection", "collectionName", collectionName, "error", err)
		return nil, err
	}

	logger.Info("Qdrant client created", "host", host, "collection", collectionName)
	return client, nil
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"doc_id":           chunk.Doc.Id,
				"file_name":        chunk.Doc.Name,
				"page":             chunk.PageNum,
				"chunk_id":         chunk.ChunkIndex,
				"text":             chunk.Chunk,
				"upload_timestamp": chunk.Doc.UploadTimestamp,
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("%w: upsert failed: %v", commonModels.ErrIndexUnavailable, err)
	}
	return nil
}

func (db *ClientHolder) Search(ctx context.Context, queryVector []float32, topK int) ([]commonModels.SearchResult, error) {
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.Error("Error querying Qdrant", "error", err)
		return nil, fmt.Errorf("%w: query failed: %v", commonModels.ErrIndexUnavailable, err)
	}

	matches := make([]commonModels.SearchResult, 0, len(result))
	for _, hit := range result {
		matches = append(matches, commonModels.SearchResult{
			Id:      hit.GetId().GetUuid(),
			Score:   hit.GetScore(),
			Payload: payloadFromMap(hit.GetPayload()),
		})
	}
	return matches, nil
}

func (db *ClientHolder) DeleteByDocId(ctx context.Context, docId string) (uint64, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch("doc_id", docId)},
	}

	count, err := db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: collectionName,
		Filter:         filter,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count failed: %v", commonModels.ErrIndexUnavailable, err)
	}
	if count == 0 {
		return 0, nil
	}

	_, err = db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName,
		Points:         qdrant.NewPointsSelectorFilter(filter),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: delete failed: %v", commonModels.ErrIndexUnavailable, err)
	}
	return count, nil
}

func (db *ClientHolder) ListAll(ctx context.Context) ([]commonModels.ChunkPayload, error) {
	points := db.QObj.GetPointsClient()

	var payloads []commonModels.ChunkPayload
	var offset *qdrant.PointId
	for {
		resp, err := points.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: collectionName,
			Limit:          qdrant.PtrOf(uint32(config.QdrantScrollPageSize)),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: scroll failed: %v", commonModels.ErrIndexUnavailable, err)
		}
		for _, p := range resp.GetResult() {
			payloads = append(payloads, payloadFromMap(p.GetPayload()))
		}
		offset = resp.GetNextPageOffset()
		if offset == nil {
			break
		}
	}
	return payloads, nil
}

func (db *ClientHolder) Ping(ctx context.Context) error {
	if _, err := db.QObj.HealthCheck(ctx); err != nil {
		return fmt.Errorf("%w: %v", commonModels.ErrIndexUnavailable, err)
	}
	return nil
}

func payloadFromMap(p map[string]*qdrant.Value) commonModels.ChunkPayload {
	return commonModels.ChunkPayload{
		DocId:           p["doc_id"].GetStringValue(),
		FileName:        p["file_name"].GetStringValue(),
		Page:            int(p["page"].GetIntegerValue()),
		ChunkIndex:      int(p["chunk_id"].GetIntegerValue()),
		Text:            p["text"].GetStringValue(),
		UploadTimestamp: p["upload_timestamp"].GetStringValue(),
	}
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}
