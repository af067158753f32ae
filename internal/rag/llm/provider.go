package llm

import "context"

type Provider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string, temperature float32) (string, error)
	Ping(ctx context.Context) error
}
