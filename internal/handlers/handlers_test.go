package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/interfaces"
	"github.com/spectrumbridge/bridge/internal/models"
)

// mockOrchestrator implements interfaces.Orchestrator for testing
type mockOrchestrator struct {
	orchestrateFunc func(ctx context.Context, req interfaces.OrchestrationRequest) *models.OrchestrationResult
}

func (m *mockOrchestrator) Orchestrate(ctx context.Context, req interfaces.OrchestrationRequest) *models.OrchestrationResult {
	if m.orchestrateFunc != nil {
		return m.orchestrateFunc(ctx, req)
	}
	return &models.OrchestrationResult{Question: req.Question, Success: true}
}

// mockKnowledgeService implements interfaces.KnowledgeService for testing
type mockKnowledgeService struct {
	searchFunc  func(ctx context.Context, query string, topK int) ([]models.Passage, error)
	byTopicFunc func(ctx context.Context, query, topic string, topK int) ([]models.Passage, error)
	statsFunc   func(ctx context.Context) (*models.KnowledgeStats, error)
	addFunc     func(ctx context.Context, source, topic, text string) (*interfaces.IngestResult, error)
}

func (m *mockKnowledgeService) Search(ctx context.Context, query string, topK int) ([]models.Passage, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query, topK)
	}
	return nil, nil
}

func (m *mockKnowledgeService) SearchByTopic(ctx context.Context, query, topic string, topK int) ([]models.Passage, error) {
	if m.byTopicFunc != nil {
		return m.byTopicFunc(ctx, query, topic, topK)
	}
	return nil, nil
}

func (m *mockKnowledgeService) SearchBySource(ctx context.Context, source string, limit int) ([]models.Passage, error) {
	return nil, nil
}

func (m *mockKnowledgeService) AddDocument(ctx context.Context, source, topic, text string) (*interfaces.IngestResult, error) {
	if m.addFunc != nil {
		return m.addFunc(ctx, source, topic, text)
	}
	return &interfaces.IngestResult{Documents: 1, ChunksCreated: 1}, nil
}

func (m *mockKnowledgeService) IngestFile(ctx context.Context, path string) (*interfaces.IngestResult, error) {
	return &interfaces.IngestResult{Files: 1}, nil
}

func (m *mockKnowledgeService) IngestDir(ctx context.Context, dir string) (*interfaces.IngestResult, error) {
	return &interfaces.IngestResult{}, nil
}

func (m *mockKnowledgeService) Stats(ctx context.Context) (*models.KnowledgeStats, error) {
	if m.statsFunc != nil {
		return m.statsFunc(ctx)
	}
	return &models.KnowledgeStats{}, nil
}

func (m *mockKnowledgeService) Count(ctx context.Context) (int, error) {
	return 0, nil
}

// mockAnswerService implements interfaces.AnswerService for testing
type mockAnswerService struct {
	answerFunc func(ctx context.Context, question string, topK int) (*models.AnswerResult, error)
}

func (m *mockAnswerService) Answer(ctx context.Context, question string, topK int) (*models.AnswerResult, error) {
	if m.answerFunc != nil {
		return m.answerFunc(ctx, question, topK)
	}
	return &models.AnswerResult{Success: true, Question: question, Answer: "ok"}, nil
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestOrchestrateHandler_Success(t *testing.T) {
	orch := &mockOrchestrator{
		orchestrateFunc: func(ctx context.Context, req interfaces.OrchestrationRequest) *models.OrchestrationResult {
			assert.Equal(t, "what is stimming", req.Question)
			assert.True(t, req.IncludeStory)
			return &models.OrchestrationResult{Question: req.Question, Success: true}
		},
	}
	handler := NewOrchestrationHandler(orch, nil, arbor.NewLogger())

	rec := postJSON(t, handler.OrchestrateHandler, "/api/orchestrate", map[string]interface{}{
		"question":      "what is stimming",
		"include_story": true,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	result := body["result"].(map[string]interface{})
	assert.Equal(t, true, result["success"])
	assert.NotContains(t, body, "report")
}

func TestOrchestrateHandler_MissingQuestion(t *testing.T) {
	handler := NewOrchestrationHandler(&mockOrchestrator{}, nil, arbor.NewLogger())

	rec := postJSON(t, handler.OrchestrateHandler, "/api/orchestrate", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrchestrateHandler_MethodNotAllowed(t *testing.T) {
	handler := NewOrchestrationHandler(&mockOrchestrator{}, nil, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/api/orchestrate", nil)
	rec := httptest.NewRecorder()
	handler.OrchestrateHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSearchHandler_Success(t *testing.T) {
	knowledge := &mockKnowledgeService{
		searchFunc: func(ctx context.Context, query string, topK int) ([]models.Passage, error) {
			assert.Equal(t, 3, topK)
			return []models.Passage{
				{Text: "Stimming is self-stimulatory behavior.", Source: "guide.md", Score: 0.91},
			}, nil
		},
	}
	handler := NewKnowledgeHandler(knowledge, arbor.NewLogger())

	rec := postJSON(t, handler.SearchHandler, "/api/search", map[string]interface{}{
		"query": "stimming",
		"top_k": 3,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["count"])
}

func TestSearchHandler_TopicFilter(t *testing.T) {
	called := false
	knowledge := &mockKnowledgeService{
		byTopicFunc: func(ctx context.Context, query, topic string, topK int) ([]models.Passage, error) {
			called = true
			assert.Equal(t, "sensory", topic)
			return nil, nil
		},
	}
	handler := NewKnowledgeHandler(knowledge, arbor.NewLogger())

	rec := postJSON(t, handler.SearchHandler, "/api/search", map[string]interface{}{
		"query": "loud noises",
		"topic": "sensory",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestIngestHandler_RawTextRequiresSource(t *testing.T) {
	handler := NewKnowledgeHandler(&mockKnowledgeService{}, arbor.NewLogger())

	rec := postJSON(t, handler.IngestHandler, "/api/ingest", map[string]interface{}{
		"text": "some document text",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestHandler_RawText(t *testing.T) {
	handler := NewKnowledgeHandler(&mockKnowledgeService{}, arbor.NewLogger())

	rec := postJSON(t, handler.IngestHandler, "/api/ingest", map[string]interface{}{
		"text":   "some document text",
		"source": "manual.md",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["documents"])
}

func TestIngestHandler_NoInput(t *testing.T) {
	handler := NewKnowledgeHandler(&mockKnowledgeService{}, arbor.NewLogger())

	rec := postJSON(t, handler.IngestHandler, "/api/ingest", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnswerHandler_Success(t *testing.T) {
	answerService := &mockAnswerService{
		answerFunc: func(ctx context.Context, question string, topK int) (*models.AnswerResult, error) {
			return &models.AnswerResult{Success: true, Question: question, Answer: "An answer."}, nil
		},
	}
	handler := NewAgentHandler(nil, nil, nil, answerService, arbor.NewLogger())

	rec := postJSON(t, handler.AnswerHandler, "/api/answer", map[string]interface{}{
		"question": "what helps with transitions?",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "An answer.", body["answer"])
}

func TestAnswerHandler_TopKOutOfRange(t *testing.T) {
	handler := NewAgentHandler(nil, nil, nil, &mockAnswerService{}, arbor.NewLogger())

	rec := postJSON(t, handler.AnswerHandler, "/api/answer", map[string]interface{}{
		"question": "q",
		"top_k":    500,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebSocketHandler_RecentLogsBuffer(t *testing.T) {
	handler := NewWebSocketHandler(nil, arbor.NewLogger())

	for i := 0; i < recentLogCapacity+10; i++ {
		handler.BroadcastLog(LogEntry{Level: "INF", Message: "line"})
	}

	req := httptest.NewRequest("GET", "/api/logs/recent", nil)
	rec := httptest.NewRecorder()
	handler.GetRecentLogsHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(recentLogCapacity), body["count"])

	logs := body["logs"].([]interface{})
	first := logs[0].(map[string]interface{})
	// Oldest retained entry is index 10 after the buffer wrapped
	assert.Equal(t, float64(10), first["index"])
}
