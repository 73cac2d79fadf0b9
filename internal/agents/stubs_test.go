package agents

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spectrumbridge/bridge/internal/interfaces"
	"github.com/spectrumbridge/bridge/internal/models"
)

type stubLLM struct {
	response string
	err      error
	calls    int
	messages [][]interfaces.Message
}

func (l *stubLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	l.calls++
	l.messages = append(l.messages, messages)
	if l.err != nil {
		return "", l.err
	}
	return l.response, nil
}

func (l *stubLLM) Name() string                          { return "stub" }
func (l *stubLLM) HealthCheck(ctx context.Context) error { return nil }
func (l *stubLLM) Close() error                          { return nil }

// lastUserPrompt returns the user message content of the stub's last call.
func lastUserPrompt(t *testing.T, llm *stubLLM) string {
	t.Helper()
	require.NotEmpty(t, llm.messages)
	last := llm.messages[len(llm.messages)-1]
	for _, m := range last {
		if m.Role == "user" {
			return m.Content
		}
	}
	t.Fatal("no user message in last call")
	return ""
}

type stubKnowledge struct {
	passages []models.Passage
	err      error
	query    string
	topK     int
}

func (k *stubKnowledge) Search(ctx context.Context, query string, topK int) ([]models.Passage, error) {
	k.query = query
	k.topK = topK
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

type stubImageClient struct {
	data  []byte
	err   error
	calls int
	req   interfaces.ImageRequest
}

func (c *stubImageClient) Generate(ctx context.Context, req interfaces.ImageRequest) ([]byte, error) {
	c.calls++
	c.req = req
	if c.err != nil {
		return nil, c.err
	}
	return c.data, nil
}

func (c *stubImageClient) HealthCheck(ctx context.Context) error { return c.err }
