package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/common"
	"github.com/spectrumbridge/bridge/internal/interfaces"
	"github.com/spectrumbridge/bridge/internal/models"
)

type stubRetriever struct {
	result *models.RetrievalResult
	calls  int32
	topK   int
}

func (r *stubRetriever) Retrieve(ctx context.Context, query string, topK int) *models.RetrievalResult {
	atomic.AddInt32(&r.calls, 1)
	r.topK = topK
	if r.result != nil {
		return r.result
	}
	return &models.RetrievalResult{Success: true, Query: query}
}

type stubSimplifier struct {
	result  *models.SimplificationResult
	calls   int32
	gotText string
}

func (s *stubSimplifier) Simplify(ctx context.Context, text string) *models.SimplificationResult {
	atomic.AddInt32(&s.calls, 1)
	s.gotText = text
	if s.result != nil {
		return s.result
	}
	return &models.SimplificationResult{Success: true, OriginalText: text, SimplifiedText: "Simple words."}
}

func (s *stubSimplifier) SimplifyBatch(ctx context.Context, texts []string) []*models.SimplificationResult {
	return nil
}

func (s *stubSimplifier) ExplainForAge(ctx context.Context, topic, ageBand string) *models.SimplificationResult {
	return nil
}

type stubStoryGen struct {
	result       *models.StoryResult
	calls        int32
	gotSituation string
	gotChildName string
	delay        time.Duration
}

func (g *stubStoryGen) GenerateStory(ctx context.Context, situation, childName, readingLevel string) *models.StoryResult {
	atomic.AddInt32(&g.calls, 1)
	g.gotSituation = situation
	g.gotChildName = childName
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	if g.result != nil {
		return g.result
	}
	return &models.StoryResult{Success: true, Title: "A Story", Story: "I can do it.", Situation: situation}
}

func (g *stubStoryGen) CustomizeStory(ctx context.Context, baseStory, childName, details string) *models.StoryResult {
	return nil
}

func (g *stubStoryGen) CommonSituations() []models.SocialSituation { return nil }

type stubImageGen struct {
	result    *models.ImageResult
	calls     int32
	gotPrompt string
	delay     time.Duration
}

func (g *stubImageGen) GenerateImage(ctx context.Context, prompt string) *models.ImageResult {
	atomic.AddInt32(&g.calls, 1)
	g.gotPrompt = prompt
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	if g.result != nil {
		return g.result
	}
	return &models.ImageResult{Success: true, Prompt: prompt, ImagePath: "/tmp/img.png"}
}

func (g *stubImageGen) GenerateBatch(ctx context.Context, prompts []string) []*models.ImageResult {
	return nil
}

type recordingEvents struct {
	mu    sync.Mutex
	types []interfaces.EventType
}

func (e *recordingEvents) Subscribe(t interfaces.EventType, h interfaces.EventHandler) error {
	return nil
}

func (e *recordingEvents) Unsubscribe(t interfaces.EventType, h interfaces.EventHandler) error {
	return nil
}

func (e *recordingEvents) Publish(ctx context.Context, event interfaces.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.types = append(e.types, event.Type)
	return nil
}

func (e *recordingEvents) PublishSync(ctx context.Context, event interfaces.Event) error {
	return e.Publish(ctx, event)
}

func (e *recordingEvents) Close() error { return nil }

func (e *recordingEvents) count(t interfaces.EventType) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, recorded := range e.types {
		if recorded == t {
			n++
		}
	}
	return n
}

func testConfig() *common.OrchestratorConfig {
	return &common.OrchestratorConfig{Workers: 3, ContextLimit: 1000}
}

func newTestService(r *stubRetriever, s *stubSimplifier, st *stubStoryGen, im *stubImageGen, ev interfaces.EventService, cfg *common.OrchestratorConfig) *Service {
	return NewService(r, s, st, im, ev, cfg, arbor.NewLogger())
}

func TestOrchestrateMandatoryOnly(t *testing.T) {
	retriever := &stubRetriever{result: &models.RetrievalResult{
		Success: true,
		Passages: []models.Passage{
			{Text: "Autism is a developmental condition.", Source: "intro.pdf"},
			{Text: "Everyone experiences it differently.", Source: "intro.pdf"},
		},
		Count: 2,
	}}
	simplifier := &stubSimplifier{}
	story := &stubStoryGen{}
	image := &stubImageGen{}
	events := &recordingEvents{}

	svc := newTestService(retriever, simplifier, story, image, events, testConfig())
	result := svc.Orchestrate(context.Background(), interfaces.OrchestrationRequest{Question: "What is autism?"})

	assert.True(t, result.Success)
	assert.Equal(t, []string{"retrieval", "simplification"}, result.TasksCompleted)
	assert.Equal(t, "Autism is a developmental condition.\n\nEveryone experiences it differently.", simplifier.gotText)
	assert.Zero(t, atomic.LoadInt32(&story.calls))
	assert.Zero(t, atomic.LoadInt32(&image.calls))

	require.NotNil(t, result.Task(models.TaskRetrieval))
	require.NotNil(t, result.Task(models.TaskSimplification))
	assert.Nil(t, result.Task(models.TaskStory))
	assert.Nil(t, result.Task(models.TaskImage))

	assert.Equal(t, 1, events.count(interfaces.EventOrchestrationStarted))
	assert.Equal(t, 1, events.count(interfaces.EventOrchestrationCompleted))
	assert.Equal(t, 2, events.count(interfaces.EventTaskStarted))
	assert.Equal(t, 2, events.count(interfaces.EventTaskCompleted))
}

func TestOrchestrateAllTasks(t *testing.T) {
	retriever := &stubRetriever{result: &models.RetrievalResult{
		Success:  true,
		Passages: []models.Passage{{Text: "Classrooms can be loud.", Source: "school.pdf"}},
		Count:    1,
	}}
	simplifier := &stubSimplifier{}
	story := &stubStoryGen{delay: 10 * time.Millisecond}
	image := &stubImageGen{delay: 10 * time.Millisecond}
	events := &recordingEvents{}

	svc := newTestService(retriever, simplifier, story, image, events, testConfig())
	result := svc.Orchestrate(context.Background(), interfaces.OrchestrationRequest{
		Question:     "How can I help my child at school?",
		IncludeStory: true,
		IncludeImage: true,
		ChildName:    "Mia",
	})

	assert.True(t, result.Success)
	assert.Equal(t, []string{"retrieval", "simplification", "story", "image"}, result.TasksCompleted)

	assert.Equal(t, "going to school", story.gotSituation)
	assert.Equal(t, "Mia", story.gotChildName)
	assert.Equal(t, "child in inclusive classroom, learning environment", image.gotPrompt)

	assert.Equal(t, 4, events.count(interfaces.EventTaskStarted))
	assert.Equal(t, 4, events.count(interfaces.EventTaskCompleted))
}

func TestOrchestrateRetrievalFailureSkipsSimplification(t *testing.T) {
	retriever := &stubRetriever{result: &models.RetrievalResult{Success: false, Error: "retrieval failed: store offline"}}
	simplifier := &stubSimplifier{}
	story := &stubStoryGen{}
	image := &stubImageGen{}

	svc := newTestService(retriever, simplifier, story, image, nil, testConfig())
	result := svc.Orchestrate(context.Background(), interfaces.OrchestrationRequest{
		Question:     "What is a meltdown?",
		IncludeStory: true,
	})

	assert.False(t, result.Success)
	assert.Zero(t, atomic.LoadInt32(&simplifier.calls))
	assert.Nil(t, result.Task(models.TaskSimplification))

	retrievalTask := result.Task(models.TaskRetrieval)
	require.NotNil(t, retrievalTask)
	assert.False(t, retrievalTask.Success)
	assert.Contains(t, retrievalTask.Error, "store offline")

	// The optional story is independent and still completes.
	assert.Equal(t, []string{"story"}, result.TasksCompleted)
}

func TestOrchestrateZeroPassagesSimplifiesBareQuestion(t *testing.T) {
	retriever := &stubRetriever{result: &models.RetrievalResult{Success: true}}
	simplifier := &stubSimplifier{}

	svc := newTestService(retriever, simplifier, &stubStoryGen{}, &stubImageGen{}, nil, testConfig())
	result := svc.Orchestrate(context.Background(), interfaces.OrchestrationRequest{Question: "What is stimming?"})

	assert.True(t, result.Success)
	assert.Equal(t, "What is stimming?", simplifier.gotText)
}

func TestOrchestrateContextTruncation(t *testing.T) {
	long := make([]rune, 0, 1500)
	for i := 0; i < 1500; i++ {
		long = append(long, 'a')
	}
	retriever := &stubRetriever{result: &models.RetrievalResult{
		Success:  true,
		Passages: []models.Passage{{Text: string(long), Source: "big.pdf"}},
		Count:    1,
	}}
	simplifier := &stubSimplifier{}

	cfg := &common.OrchestratorConfig{Workers: 3, ContextLimit: 1000}
	svc := newTestService(retriever, simplifier, &stubStoryGen{}, &stubImageGen{}, nil, cfg)
	svc.Orchestrate(context.Background(), interfaces.OrchestrationRequest{Question: "question"})

	assert.Len(t, []rune(simplifier.gotText), 1000)
}

func TestOrchestrateOptionalFailureDoesNotAbort(t *testing.T) {
	retriever := &stubRetriever{result: &models.RetrievalResult{
		Success:  true,
		Passages: []models.Passage{{Text: "passage", Source: "a.pdf"}},
		Count:    1,
	}}
	simplifier := &stubSimplifier{}
	image := &stubImageGen{result: &models.ImageResult{Success: false, Error: "failed to save image: disk full"}}

	svc := newTestService(retriever, simplifier, &stubStoryGen{}, image, nil, testConfig())
	result := svc.Orchestrate(context.Background(), interfaces.OrchestrationRequest{
		Question:     "What helps with sensory overload?",
		IncludeImage: true,
	})

	assert.True(t, result.Success)
	assert.Equal(t, []string{"retrieval", "simplification"}, result.TasksCompleted)

	imageTask := result.Task(models.TaskImage)
	require.NotNil(t, imageTask)
	assert.False(t, imageTask.Success)
	assert.Contains(t, imageTask.Error, "disk full")

	assert.Equal(t, "child with autism using sensory toys, educational setting", image.gotPrompt)
}

func TestOrchestrateStorySituationOverride(t *testing.T) {
	retriever := &stubRetriever{result: &models.RetrievalResult{Success: true}}
	story := &stubStoryGen{}

	svc := newTestService(retriever, &stubSimplifier{}, story, &stubImageGen{}, nil, testConfig())
	svc.Orchestrate(context.Background(), interfaces.OrchestrationRequest{
		Question:       "How do I prepare my child for a haircut?",
		IncludeStory:   true,
		StorySituation: "getting a haircut",
	})

	assert.Equal(t, "getting a haircut", story.gotSituation)
}

func TestOrchestrateEmptyQuestion(t *testing.T) {
	retriever := &stubRetriever{}
	simplifier := &stubSimplifier{}
	story := &stubStoryGen{}
	image := &stubImageGen{}

	svc := newTestService(retriever, simplifier, story, image, nil, testConfig())
	result := svc.Orchestrate(context.Background(), interfaces.OrchestrationRequest{
		Question:     "   ",
		IncludeStory: true,
		IncludeImage: true,
	})

	assert.False(t, result.Success)
	assert.Empty(t, result.TasksCompleted)

	retrievalTask := result.Task(models.TaskRetrieval)
	require.NotNil(t, retrievalTask)
	assert.Equal(t, "question cannot be empty", retrievalTask.Error)

	assert.Zero(t, atomic.LoadInt32(&retriever.calls))
	assert.Zero(t, atomic.LoadInt32(&simplifier.calls))
	assert.Zero(t, atomic.LoadInt32(&story.calls))
	assert.Zero(t, atomic.LoadInt32(&image.calls))
}

func TestOrchestrateTopKForwarded(t *testing.T) {
	retriever := &stubRetriever{result: &models.RetrievalResult{Success: true}}

	svc := newTestService(retriever, &stubSimplifier{}, &stubStoryGen{}, &stubImageGen{}, nil, testConfig())
	svc.Orchestrate(context.Background(), interfaces.OrchestrationRequest{Question: "question", TopK: 7})

	assert.Equal(t, 7, retriever.topK)
}

func TestDeriveSituation(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"How do I prepare for the doctor?", "going to the doctor"},
		{"Why is school overwhelming?", "going to school"},
		{"Meeting new people is hard for my child", "meeting new people"},
		{"Loud noises cause meltdowns", "dealing with loud noises"},
		{"My child hates noise", "dealing with loud noises"},
		{"What is autism?", "learning new things"},
	}

	for _, tt := range tests {
		if got := deriveSituation(tt.question); got != tt.want {
			t.Errorf("deriveSituation(%q) = %q, want %q", tt.question, got, tt.want)
		}
	}
}

func TestDeriveImagePrompt(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"What are sensory issues?", "child with autism using sensory toys, educational setting"},
		{"How do nonverbal children talk?", "child using communication cards, friendly setting"},
		{"How does a diagnosis work?", "doctor meeting with child and parent, medical office"},
		{"What happens in the classroom?", "child in inclusive classroom, learning environment"},
		{"What is autism?", "diverse children with autism in educational setting"},
	}

	for _, tt := range tests {
		if got := deriveImagePrompt(tt.question); got != tt.want {
			t.Errorf("deriveImagePrompt(%q) = %q, want %q", tt.question, got, tt.want)
		}
	}
}
