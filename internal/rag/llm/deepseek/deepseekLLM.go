package deepseek

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/synapserag/synapse/internal/config"
	"github.com/synapserag/synapse/internal/domain/commonModels"
	"github.com/synapserag/synapse/internal/rag/llm"
	"github.com/synapserag/synapse/pkg/logger_i"
)

type llmClient struct {
	client    openai.Client
	modelName string
}

var logger *logger_i.Logger
var once sync.Once
var deepseekClient *llmClient
var initErr error

// GetDeepSeekClient builds the chat client exactly once. DeepSeek speaks the
// OpenAI wire protocol, so this is the OpenAI SDK pointed at their endpoint.
// A missing credential is cached as the init error and re-raised on every
// later call without re-attempting.
func GetDeepSeekClient(ctx context.Context) (llm.Provider, error) {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_deepseek")
		newDeepSeekClient(config.GetDeepSeekAPIKey())
	})
	if initErr != nil {
		return nil, initErr
	}
	return deepseekClient, nil
}

// InitState reports credential presence and the cached init error, for the
// status endpoint.
func InitState() (apiKeyPresent bool, initialized bool, errText string) {
	if initErr != nil {
		errText = initErr.Error()
	}
	return config.GetDeepSeekAPIKey() != "", deepseekClient != nil, errText
}

func newDeepSeekClient(apikey string) {
	if apikey == "" {
		initErr = fmt.Errorf("%w: DEEPSEEK_API_KEY not found in environment", commonModels.ErrLLMUnavailable)
		logger.Error("DeepSeek client not created", "error", initErr)
		return
	}
	c := openai.NewClient(
		option.WithAPIKey(apikey),
		option.WithBaseURL(config.DeepSeekBaseURL),
	)
	deepseekClient = &llmClient{client: c, modelName: config.DeepSeekModel}
	logger.Info("DeepSeek client created", "model", config.DeepSeekModel)
}

func (c *llmClient) Generate(ctx context.Context, systemPrompt string, userPrompt string, temperature float32) (string, error) {
	result, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(float64(temperature)),
	})
	if err != nil {
		logger.Error("Error generating completion", "error", err)
		return "", fmt.Errorf("%w: %v", commonModels.ErrLLMUnavailable, err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: provider returned no choices", commonModels.ErrLLMUnavailable)
	}
	return result.Choices[0].Message.Content, nil
}

func (c *llmClient) Ping(ctx context.Context) error {
	_, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("test"),
		},
		MaxTokens: openai.Int(5),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", commonModels.ErrLLMUnavailable, err)
	}
	return nil
}
