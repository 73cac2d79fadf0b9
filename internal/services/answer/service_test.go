package answer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/interfaces"
	"github.com/spectrumbridge/bridge/internal/models"
)

type stubKnowledge struct {
	passages []models.Passage
	err      error
}

func (k *stubKnowledge) Search(ctx context.Context, query string, topK int) ([]models.Passage, error) {
	return k.passages, k.err
}

func (k *stubKnowledge) SearchByTopic(ctx context.Context, query, topic string, topK int) ([]models.Passage, error) {
	return nil, fmt.Errorf("not implemented")
}

func (k *stubKnowledge) SearchBySource(ctx context.Context, source string, limit int) ([]models.Passage, error) {
	return nil, fmt.Errorf("not implemented")
}

func (k *stubKnowledge) AddDocument(ctx context.Context, source, topic, text string) (*interfaces.IngestResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (k *stubKnowledge) IngestFile(ctx context.Context, path string) (*interfaces.IngestResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (k *stubKnowledge) IngestDir(ctx context.Context, dir string) (*interfaces.IngestResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (k *stubKnowledge) Stats(ctx context.Context) (*models.KnowledgeStats, error) {
	return nil, fmt.Errorf("not implemented")
}

func (k *stubKnowledge) Count(ctx context.Context) (int, error) { return len(k.passages), nil }

type stubLLM struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (l *stubLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	l.calls++
	for _, m := range messages {
		l.prompts = append(l.prompts, m.Content)
	}
	if l.err != nil {
		return "", l.err
	}
	return l.response, nil
}

func (l *stubLLM) Name() string                         { return "stub" }
func (l *stubLLM) HealthCheck(ctx context.Context) error { return nil }
func (l *stubLLM) Close() error                          { return nil }

func TestAnswerGrounded(t *testing.T) {
	knowledge := &stubKnowledge{
		passages: []models.Passage{
			{Text: "Early intervention improves outcomes.", Source: "guide.pdf", Score: 0.91},
			{Text: "Speech therapy supports communication.", Source: "therapy.pdf", Score: 0.85},
		},
	}
	llm := &stubLLM{response: "  Early support like speech therapy helps.  "}
	svc := NewService(knowledge, llm, arbor.NewLogger())

	result, err := svc.Answer(context.Background(), "How does early intervention help?", 5)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Early support like speech therapy helps.", result.Answer)
	assert.Len(t, result.Sources, 2)
	assert.Equal(t, 1, llm.calls)

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "based ONLY on the provided context")
	assert.Contains(t, prompt, "Early intervention improves outcomes.")
	assert.Contains(t, prompt, "Speech therapy supports communication.")
	assert.Contains(t, prompt, "How does early intervention help?")
}

func TestAnswerNoPassagesSkipsLLM(t *testing.T) {
	knowledge := &stubKnowledge{}
	llm := &stubLLM{response: "should never be used"}
	svc := NewService(knowledge, llm, arbor.NewLogger())

	result, err := svc.Answer(context.Background(), "What is a sensory diet?", 5)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, noContextAnswer, result.Answer)
	assert.Empty(t, result.Sources)
	assert.Equal(t, 0, llm.calls)
}

func TestAnswerFailuresReportedInResult(t *testing.T) {
	t.Run("retrieval failure", func(t *testing.T) {
		knowledge := &stubKnowledge{err: fmt.Errorf("store offline")}
		llm := &stubLLM{}
		svc := NewService(knowledge, llm, arbor.NewLogger())

		result, err := svc.Answer(context.Background(), "question", 5)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "retrieval failed")
		assert.Equal(t, 0, llm.calls)
	})

	t.Run("generation failure", func(t *testing.T) {
		knowledge := &stubKnowledge{passages: []models.Passage{{Text: "context", Source: "a.pdf"}}}
		llm := &stubLLM{err: fmt.Errorf("rate limited")}
		svc := NewService(knowledge, llm, arbor.NewLogger())

		result, err := svc.Answer(context.Background(), "question", 5)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "answer generation failed")
	})
}

func TestAnswerRequiresQuestion(t *testing.T) {
	svc := NewService(&stubKnowledge{}, &stubLLM{}, arbor.NewLogger())

	_, err := svc.Answer(context.Background(), "   ", 5)
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "question"))
}
