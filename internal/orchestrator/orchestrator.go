// Package orchestrator fans one user question out across the agents. The
// mandatory retrieval -> simplification sequence runs on the caller's
// goroutine; optional story and image tasks are dispatched first onto a
// bounded worker pool so they overlap it. Per-task failures land in the
// aggregated result and never abort sibling tasks.
package orchestrator

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/common"
	"github.com/spectrumbridge/bridge/internal/interfaces"
	"github.com/spectrumbridge/bridge/internal/models"
)

const (
	defaultWorkers      = 3
	defaultContextLimit = 1000
)

// Service implements the Orchestrator interface over the four agents.
type Service struct {
	retriever  interfaces.Retriever
	simplifier interfaces.Simplifier
	story      interfaces.StoryGenerator
	image      interfaces.ImageGenerator
	events     interfaces.EventService
	config     *common.OrchestratorConfig
	logger     arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.Orchestrator = (*Service)(nil)

// NewService creates an orchestrator over the given agents. The event service
// may be nil, in which case no progress events are published.
func NewService(
	retriever interfaces.Retriever,
	simplifier interfaces.Simplifier,
	story interfaces.StoryGenerator,
	image interfaces.ImageGenerator,
	events interfaces.EventService,
	config *common.OrchestratorConfig,
	logger arbor.ILogger,
) *Service {
	return &Service{
		retriever:  retriever,
		simplifier: simplifier,
		story:      story,
		image:      image,
		events:     events,
		config:     config,
		logger:     logger,
	}
}

// Orchestrate runs every requested task for one question and merges the
// outcomes. It always returns a result; task failures are recorded inside it.
func (s *Service) Orchestrate(ctx context.Context, req interfaces.OrchestrationRequest) *models.OrchestrationResult {
	start := time.Now()
	question := strings.TrimSpace(req.Question)

	result := &models.OrchestrationResult{
		Question:       question,
		ChildName:      strings.TrimSpace(req.ChildName),
		Timestamp:      start,
		Tasks:          make(map[string]*models.TaskResult),
		TasksCompleted: []string{},
	}

	if question == "" {
		result.Tasks[models.TaskRetrieval] = &models.TaskResult{
			Name:  models.TaskRetrieval,
			Error: "question cannot be empty",
		}
		result.TotalSeconds = roundSeconds(time.Since(start))
		return result
	}

	s.publish(ctx, interfaces.EventOrchestrationStarted, map[string]interface{}{
		"question": question,
	})
	s.logger.Info().
		Str("question", question).
		Bool("include_story", req.IncludeStory).
		Bool("include_image", req.IncludeImage).
		Msg("Orchestration started")

	workers := s.config.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, workers)
	)

	record := func(task *models.TaskResult) {
		mu.Lock()
		result.Tasks[task.Name] = task
		mu.Unlock()
	}

	dispatch := func(name string, run func() *models.TaskResult) {
		wg.Add(1)
		common.SafeGo(s.logger, "task:"+name, func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			s.publish(ctx, interfaces.EventTaskStarted, map[string]interface{}{
				"task":     name,
				"question": question,
			})
			task := run()
			record(task)
			s.publish(ctx, interfaces.EventTaskCompleted, map[string]interface{}{
				"task":   name,
				"status": statusOf(task.Success),
			})
		})
	}

	// Optional tasks first, so they overlap the mandatory path.
	if req.IncludeStory {
		situation := strings.TrimSpace(req.StorySituation)
		if situation == "" {
			situation = deriveSituation(question)
		}
		childName := req.ChildName
		dispatch(models.TaskStory, func() *models.TaskResult {
			story := s.story.GenerateStory(ctx, situation, childName, "")
			return &models.TaskResult{Name: models.TaskStory, Success: story.Success, Error: story.Error, Story: story}
		})
	}
	if req.IncludeImage {
		prompt := deriveImagePrompt(question)
		dispatch(models.TaskImage, func() *models.TaskResult {
			img := s.image.GenerateImage(ctx, prompt)
			return &models.TaskResult{Name: models.TaskImage, Success: img.Success, Error: img.Error, Image: img}
		})
	}

	s.publish(ctx, interfaces.EventTaskStarted, map[string]interface{}{
		"task":     models.TaskRetrieval,
		"question": question,
	})
	retrieval := s.retriever.Retrieve(ctx, question, req.TopK)
	record(&models.TaskResult{Name: models.TaskRetrieval, Success: retrieval.Success, Error: retrieval.Error, Retrieval: retrieval})
	s.publish(ctx, interfaces.EventTaskCompleted, map[string]interface{}{
		"task":   models.TaskRetrieval,
		"status": statusOf(retrieval.Success),
	})

	if retrieval.Success {
		s.publish(ctx, interfaces.EventTaskStarted, map[string]interface{}{
			"task":     models.TaskSimplification,
			"question": question,
		})
		simplification := s.simplifier.Simplify(ctx, s.buildContext(question, retrieval.Passages))
		record(&models.TaskResult{Name: models.TaskSimplification, Success: simplification.Success, Error: simplification.Error, Simplification: simplification})
		s.publish(ctx, interfaces.EventTaskCompleted, map[string]interface{}{
			"task":   models.TaskSimplification,
			"status": statusOf(simplification.Success),
		})
	} else {
		s.logger.Warn().
			Str("question", question).
			Msg("Retrieval failed, skipping simplification")
	}

	wg.Wait()

	for _, name := range []string{models.TaskRetrieval, models.TaskSimplification, models.TaskStory, models.TaskImage} {
		if task, ok := result.Tasks[name]; ok && task.Success {
			result.TasksCompleted = append(result.TasksCompleted, name)
		}
	}
	result.Success = result.Completed(models.TaskRetrieval) && result.Completed(models.TaskSimplification)
	result.TotalSeconds = roundSeconds(time.Since(start))

	s.publish(ctx, interfaces.EventOrchestrationCompleted, map[string]interface{}{
		"question": question,
		"status":   statusOf(result.Success),
	})
	s.logger.Info().
		Str("question", question).
		Bool("success", result.Success).
		Float64("seconds", result.TotalSeconds).
		Int("tasks_completed", len(result.TasksCompleted)).
		Msg("Orchestration completed")

	return result
}

// buildContext joins retrieved passages for the simplification prompt,
// truncated to the configured limit. With no passages the bare question is
// simplified instead.
func (s *Service) buildContext(question string, passages []models.Passage) string {
	if len(passages) == 0 {
		return question
	}

	texts := make([]string, 0, len(passages))
	for _, p := range passages {
		texts = append(texts, p.Text)
	}
	joined := strings.Join(texts, "\n\n")

	limit := s.config.ContextLimit
	if limit <= 0 {
		limit = defaultContextLimit
	}
	if runes := []rune(joined); len(runes) > limit {
		joined = string(runes[:limit])
	}
	return joined
}

func (s *Service) publish(ctx context.Context, eventType interfaces.EventType, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, interfaces.Event{Type: eventType, Payload: payload}); err != nil {
		s.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("Event publish failed")
	}
}

func statusOf(success bool) string {
	if success {
		return "completed"
	}
	return "failed"
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
