package googleEmbedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/synapserag/synapse/internal/config"
	"github.com/synapserag/synapse/internal/domain/commonModels"
	"github.com/synapserag/synapse/internal/rag/embedding"
	"github.com/synapserag/synapse/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var initErr error
var dimension int32 = config.EmbeddingDimension

type client struct {
	genAi *genai.Client
	model string
}

// GetGoogleEmbeddingClient memoizes the first initialization attempt. Success
// and failure are both cached for the life of the process; a bad credential
// is reported on every call without re-dialing.
func GetGoogleEmbeddingClient(ctx context.Context) (embedding.Embedder, error) {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, config.GoogleEmbeddingModel, config.GetGeminiAPIKey())
	})
	if initErr != nil {
		return nil, initErr
	}
	return embeddingClient, nil
}

// InitState reports credential presence and the cached init error, for the
// status endpoint. Never exposes key material.
func InitState() (apiKeyPresent bool, initialized bool, errText string) {
	if initErr != nil {
		errText = initErr.Error()
	}
	return config.GetGeminiAPIKey() != "", embeddingClient != nil, errText
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	if apikey == "" {
		initErr = fmt.Errorf("%w: GEMINI_API_KEY not found in environment", commonModels.ErrEmbeddingUnavailable)
		logger.Error("Google Embedding client not created", "error", initErr)
		return
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		initErr = fmt.Errorf("%w: %v", commonModels.ErrEmbeddingUnavailable, err)
		logger.Error("Error creating Google Embedding client", "error", err)
		return
	}
	embeddingClient = &client{genAi: c, model: modelName}
	logger.Info("Google Embedding client created", "model", modelName)
}

// Embed calls the Gemini embedding model and L2-normalizes the result. The
// raw provider output carries no normalization guarantee.
func (c *client) Embed(ctx context.Context, text string, role embedding.Role) ([]float32, error) {
	formatted := text
	taskType := "RETRIEVAL_DOCUMENT"
	if role == embedding.RoleQuery {
		formatted = config.QueryInstructionPrefix + text
		taskType = "RETRIEVAL_QUERY"
	}

	result, err := c.doCall(ctx, formatted, taskType)
	if err != nil && isRateLimited(err) {
		logger.Warn("Rate limit hit, retrying in 5 seconds", "error", err)
		time.Sleep(5 * time.Second)
		result, err = c.doCall(ctx, formatted, taskType)
	}
	if err != nil {
		logger.Error("Error getting embedding from Google", "error", err)
		return nil, fmt.Errorf("%w: %v", commonModels.ErrEmbeddingUnavailable, err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: provider returned no vector", commonModels.ErrEmbeddingUnavailable)
	}
	return embedding.Normalize(result.Embeddings[0].Values), nil
}

func (c *client) Ping(ctx context.Context) error {
	_, err := c.doCall(ctx, "test", "RETRIEVAL_DOCUMENT")
	if err != nil {
		return fmt.Errorf("%w: %v", commonModels.ErrEmbeddingUnavailable, err)
	}
	return nil
}

func (c *client) doCall(ctx context.Context, text string, taskType string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             taskType,
	})
}

func isRateLimited(err error) bool {
	if s, ok := status.FromError(err); ok {
		return s.Code() == codes.ResourceExhausted
	}
	return false
}
