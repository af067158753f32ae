package rag

import (
	"strings"

	"github.com/synapserag/synapse/internal/config"
	"github.com/synapserag/synapse/internal/domain/commonModels"
)

// ResponseMode is the tagged outcome of the per-query decision. Every chat
// request resolves to exactly one mode, and each mode maps to one prompt.
type ResponseMode int

const (
	ModeGreeting ResponseMode = iota
	ModeNoDocuments
	ModeLowRelevance
	ModeGrounded
)

func (m ResponseMode) String() string {
	switch m {
	case ModeGreeting:
		return "greeting"
	case ModeNoDocuments:
		return "no_documents"
	case ModeLowRelevance:
		return "low_relevance"
	default:
		return "grounded"
	}
}

var greetings = []string{
	"hello", "hi", "hey", "how are you", "how are u", "how're you", "how're u",
	"what's up", "whats up", "greetings", "good morning", "good afternoon",
	"good evening", "good night", "sup", "yo", "hows it going", "how's it going",
}

// isSimpleGreeting treats a query as casual conversation when it equals a
// known greeting, is at most two words, or opens with a greeting. Evaluated
// before any embedding or search cost is spent.
func isSimpleGreeting(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))

	for _, g := range greetings {
		if q == g {
			return true
		}
	}
	if len(strings.Fields(q)) <= 2 {
		return true
	}
	for _, g := range greetings {
		if strings.HasPrefix(q, g) {
			return true
		}
	}
	return false
}

// classify picks the response mode for a query and its search results. The
// relevance gate reads the same score the caller later receives; there is no
// separate conversion path.
func classify(query string, results []commonModels.SearchResult) ResponseMode {
	if isSimpleGreeting(query) {
		return ModeGreeting
	}
	if len(results) == 0 {
		return ModeNoDocuments
	}

	var maxScore float32
	for _, r := range results {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}
	if maxScore < config.RelevanceThreshold {
		return ModeLowRelevance
	}
	return ModeGrounded
}
