package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/interfaces"
	"github.com/spectrumbridge/bridge/internal/models"
)

// noContextAnswer is returned when retrieval finds nothing relevant. The LLM
// is never called in that case, so the service cannot invent an answer.
const noContextAnswer = "I couldn't find relevant information in the knowledge base."

const answerPrompt = `You are an expert assistant on autism spectrum disorder (ASD).
Answer the following question based ONLY on the provided context from research documents.
If the context doesn't contain enough information to answer the question, say so.

Context from research documents:
%s

Question: %s

Provide a clear, accurate, and helpful answer based on the context above.`

// Service answers questions grounded in retrieved knowledge passages.
type Service struct {
	knowledge interfaces.KnowledgeService
	llm       interfaces.LLMService
	logger    arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.AnswerService = (*Service)(nil)

// NewService creates an answer service over the knowledge store and LLM
// provider.
func NewService(knowledge interfaces.KnowledgeService, llm interfaces.LLMService, logger arbor.ILogger) *Service {
	return &Service{
		knowledge: knowledge,
		llm:       llm,
		logger:    logger,
	}
}

// Answer retrieves the topK most relevant passages and generates an answer
// grounded in them. Failures are reported inside the result so callers can
// surface them alongside partial data.
func (s *Service) Answer(ctx context.Context, question string, topK int) (*models.AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}

	result := &models.AnswerResult{Question: question}

	passages, err := s.knowledge.Search(ctx, question, topK)
	if err != nil {
		result.Error = fmt.Sprintf("retrieval failed: %v", err)
		return result, nil
	}

	if len(passages) == 0 {
		s.logger.Debug().Str("question", question).Msg("No passages found for question")
		result.Success = true
		result.Answer = noContextAnswer
		return result, nil
	}

	contextParts := make([]string, 0, len(passages))
	for _, p := range passages {
		contextParts = append(contextParts, p.Text)
	}
	prompt := fmt.Sprintf(answerPrompt, strings.Join(contextParts, "\n\n"), question)

	answer, err := s.llm.Chat(ctx, []interfaces.Message{{Role: "user", Content: prompt}})
	if err != nil {
		result.Error = fmt.Sprintf("answer generation failed: %v", err)
		return result, nil
	}

	s.logger.Debug().
		Str("question", question).
		Int("sources", len(passages)).
		Str("provider", s.llm.Name()).
		Msg("Generated grounded answer")

	result.Success = true
	result.Answer = strings.TrimSpace(answer)
	result.Sources = passages
	return result, nil
}
