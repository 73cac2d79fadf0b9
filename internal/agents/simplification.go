package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/interfaces"
	"github.com/spectrumbridge/bridge/internal/models"
	"github.com/spectrumbridge/bridge/internal/readability"
)

const simplifySystemPrompt = "You simplify text to a grade 2 reading level. Use tiny words. Make tiny sentences. Sound like you are talking to a young child."

const simplifyPromptTemplate = `Rewrite this text for a 7-year-old child.

RULES (MUST FOLLOW):
1. Use short, common words
2. MAXIMUM 8 words per sentence
3. Start a new sentence for each idea
4. Use simple grammar: subject + verb + object
5. No commas, just periods
6. No idioms or figures of speech

TEXT TO SIMPLIFY:
%s

EXAMPLES OF GOOD OUTPUT:
"Some kids are different."
"They talk their own way."
"This is called autism."
"They are good kids."

Respond with ONLY the simple text.`

const explainPromptTemplate = `Explain "%s" to a child.

RULES:
- %s
- Be positive and simple
- Use concrete examples
- No idioms or figures of speech

Write the explanation (short and simple):`

// ageBandPhrasing maps an age band to the sentence budget woven into the
// explanation prompt. Unknown bands use the youngest phrasing.
var ageBandPhrasing = map[string]string{
	"5_year_old":  "Use only short words. Maximum 6 words per sentence. Sound like you are talking to a 5-year-old.",
	"10_year_old": "Use simple, clear words. Maximum 10 words per sentence. Sound like you are talking to a 10-year-old.",
	"teenager":    "Use plain, direct language. Keep sentences under 15 words. Sound like you are talking to a teenager.",
}

// SimplificationAgent rewrites text at an early-grade reading level and
// scores the output with fixed readability arithmetic.
type SimplificationAgent struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.Simplifier = (*SimplificationAgent)(nil)

// NewSimplificationAgent creates a simplification agent over the LLM provider.
func NewSimplificationAgent(llm interfaces.LLMService, logger arbor.ILogger) *SimplificationAgent {
	return &SimplificationAgent{
		llm:    llm,
		logger: logger,
	}
}

// Simplify rewrites text to a grade-2 reading level. Empty or blank input
// fails without an LLM call.
func (a *SimplificationAgent) Simplify(ctx context.Context, text string) *models.SimplificationResult {
	result := &models.SimplificationResult{OriginalText: text}

	if strings.TrimSpace(text) == "" {
		result.Error = "text cannot be empty"
		return result
	}

	messages := []interfaces.Message{
		{Role: "system", Content: simplifySystemPrompt},
		{Role: "user", Content: fmt.Sprintf(simplifyPromptTemplate, text)},
	}

	response, err := a.llm.Chat(ctx, messages)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Simplification failed")
		result.Error = fmt.Sprintf("simplification failed: %v", err)
		return result
	}

	simplified := strings.TrimSpace(response)
	if simplified == "" {
		result.Error = "model returned empty text"
		return result
	}

	result.Success = true
	result.SimplifiedText = simplified
	result.Metrics = readability.Analyze(simplified)

	a.logger.Debug().
		Int("original_length", len(text)).
		Int("simplified_length", len(simplified)).
		Str("grade_level", result.Metrics.EstimatedGradeLevel).
		Msg("Text simplified")

	return result
}

// SimplifyBatch simplifies each text independently; one failure does not
// abort the remaining items.
func (a *SimplificationAgent) SimplifyBatch(ctx context.Context, texts []string) []*models.SimplificationResult {
	results := make([]*models.SimplificationResult, 0, len(texts))
	for _, text := range texts {
		results = append(results, a.Simplify(ctx, text))
	}
	return results
}

// ExplainForAge writes an age-appropriate explanation of a topic.
func (a *SimplificationAgent) ExplainForAge(ctx context.Context, topic, ageBand string) *models.SimplificationResult {
	result := &models.SimplificationResult{OriginalText: topic}

	if strings.TrimSpace(topic) == "" {
		result.Error = "topic cannot be empty"
		return result
	}

	phrasing, ok := ageBandPhrasing[ageBand]
	if !ok {
		phrasing = ageBandPhrasing["5_year_old"]
	}

	messages := []interfaces.Message{
		{Role: "system", Content: "You explain things simply to children. Use plain words. Use short sentences."},
		{Role: "user", Content: fmt.Sprintf(explainPromptTemplate, topic, phrasing)},
	}

	response, err := a.llm.Chat(ctx, messages)
	if err != nil {
		a.logger.Warn().Err(err).Str("topic", topic).Msg("Explanation failed")
		result.Error = fmt.Sprintf("explanation failed: %v", err)
		return result
	}

	explanation := strings.TrimSpace(response)
	if explanation == "" {
		result.Error = "model returned empty text"
		return result
	}

	result.Success = true
	result.SimplifiedText = explanation
	result.Metrics = readability.Analyze(explanation)
	return result
}
