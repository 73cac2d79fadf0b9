// Package agents holds the stateless wrappers around external AI
// capabilities. Each agent formats one request, makes one call, and maps the
// outcome into a typed result. Failures are recorded in the result's
// Success/Error fields rather than returned as Go errors, so the orchestrator
// can aggregate partial outcomes without error propagation across tasks.
package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/interfaces"
	"github.com/spectrumbridge/bridge/internal/models"
)

// defaultTopK is the passage count used when the caller does not specify one.
const defaultTopK = 5

// RetrievalAgent wraps the knowledge service's similarity search.
type RetrievalAgent struct {
	knowledge interfaces.KnowledgeService
	logger    arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.Retriever = (*RetrievalAgent)(nil)

// NewRetrievalAgent creates a retrieval agent over the knowledge service.
func NewRetrievalAgent(knowledge interfaces.KnowledgeService, logger arbor.ILogger) *RetrievalAgent {
	return &RetrievalAgent{
		knowledge: knowledge,
		logger:    logger,
	}
}

// Retrieve runs a similarity search and returns ranked passages. An empty
// query fails without touching the store.
func (a *RetrievalAgent) Retrieve(ctx context.Context, query string, topK int) *models.RetrievalResult {
	result := &models.RetrievalResult{Query: query}

	if strings.TrimSpace(query) == "" {
		result.Error = "query cannot be empty"
		return result
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	passages, err := a.knowledge.Search(ctx, query, topK)
	if err != nil {
		a.logger.Warn().Err(err).Str("query", query).Msg("Retrieval failed")
		result.Error = fmt.Sprintf("retrieval failed: %v", err)
		return result
	}

	result.Success = true
	result.Passages = passages
	result.Count = len(passages)
	return result
}
