package rag

import (
	"fmt"
	"strings"

	"github.com/synapserag/synapse/internal/config"
	"github.com/synapserag/synapse/internal/domain/commonModels"
)

const greetingSystemPrompt = "You are a friendly and helpful AI assistant. Respond naturally to greetings and casual conversation. Be warm, conversational, and helpful. Keep responses brief and friendly."

const noDocumentsSystemPrompt = "You are a friendly and helpful AI assistant. You can have normal conversations with users. If they ask about documents, politely let them know they need to upload documents first. Otherwise, be conversational and helpful."

const lowRelevanceSystemPrompt = "You are a friendly AI assistant. You have access to uploaded documents, but the current question doesn't seem directly related to them. Answer naturally and helpfully. If appropriate, you can mention that you have documents available if they want to ask about them."

const groundedSystemPrompt = "You are a helpful assistant that answers questions using information from uploaded documents. Include citations for facts, but be natural and conversational."

const groundedPromptTemplate = `You are a helpful assistant that answers questions based on the provided context from uploaded documents.

When answering:
1. Use information from the context below to answer the question naturally
2. Include inline citations for specific facts or information using the format [source:filename | page X | chunk Y]
3. Be conversational and helpful - don't force citations for every sentence
4. If the answer is not fully in the context, say what you can from the context
5. Only cite actual facts, not general conversation

Context from documents:
%s

User Question: %s

Answer naturally with citations for facts:`

// buildPrompt maps a response mode to the system/user prompt pair and the
// sampling temperature. Grounded answers run cold; conversation runs warmer.
func buildPrompt(mode ResponseMode, query string, results []commonModels.SearchResult) (system string, user string, temperature float32) {
	switch mode {
	case ModeGreeting:
		return greetingSystemPrompt, query, config.ConversationalTemperature
	case ModeNoDocuments:
		return noDocumentsSystemPrompt, query, config.ConversationalTemperature
	case ModeLowRelevance:
		return lowRelevanceSystemPrompt, query, config.ConversationalTemperature
	default:
		prompt := fmt.Sprintf(groundedPromptTemplate, buildContext(results), query)
		return groundedSystemPrompt, prompt, config.GroundedTemperature
	}
}

// buildContext renders the retrieved chunks, best match first, in the layout
// the grounded prompt expects.
func buildContext(results []commonModels.SearchResult) string {
	contextParts := make([]string, 0, len(results))
	for idx, result := range results {
		p := result.Payload
		contextParts = append(contextParts, fmt.Sprintf(
			"[Source %d] (File: %s, Page: %d, Chunk: %d)\n%s",
			idx+1, p.FileName, p.Page, p.ChunkIndex, p.Text,
		))
	}
	return strings.Join(contextParts, "\n\n")
}

// buildSources mirrors buildContext ordering, carrying the raw search score.
func buildSources(results []commonModels.SearchResult) []Source {
	sources := make([]Source, 0, len(results))
	for _, result := range results {
		p := result.Payload
		sources = append(sources, Source{
			FileName: p.FileName,
			Page:     p.Page,
			ChunkId:  p.ChunkIndex,
			Score:    result.Score,
			Text:     p.Text,
		})
	}
	return sources
}
