package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/agents"
	"github.com/spectrumbridge/bridge/internal/common"
	"github.com/spectrumbridge/bridge/internal/handlers"
	"github.com/spectrumbridge/bridge/internal/interfaces"
	"github.com/spectrumbridge/bridge/internal/orchestrator"
	"github.com/spectrumbridge/bridge/internal/services/answer"
	"github.com/spectrumbridge/bridge/internal/services/embeddings"
	"github.com/spectrumbridge/bridge/internal/services/events"
	"github.com/spectrumbridge/bridge/internal/services/image"
	"github.com/spectrumbridge/bridge/internal/services/knowledge"
	"github.com/spectrumbridge/bridge/internal/services/llm"
	"github.com/spectrumbridge/bridge/internal/services/report"
	"github.com/spectrumbridge/bridge/internal/services/scheduler"
	"github.com/spectrumbridge/bridge/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Core services
	EventService     interfaces.EventService
	LLMService       interfaces.LLMService
	EmbeddingService interfaces.EmbeddingService
	KnowledgeService interfaces.KnowledgeService
	AnswerService    interfaces.AnswerService
	ReportService    interfaces.ReportService
	SchedulerService interfaces.SchedulerService

	// Agents
	Retriever      interfaces.Retriever
	Simplifier     interfaces.Simplifier
	StoryGenerator interfaces.StoryGenerator
	ImageGenerator interfaces.ImageGenerator
	Orchestrator   interfaces.Orchestrator

	// HTTP handlers
	APIHandler           *handlers.APIHandler
	OrchestrationHandler *handlers.OrchestrationHandler
	KnowledgeHandler     *handlers.KnowledgeHandler
	AgentHandler         *handlers.AgentHandler
	ReportHandler        *handlers.ReportHandler
	WSHandler            *handlers.WebSocketHandler

	logStreamer *handlers.LogStreamer
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Event bus and WebSocket handler come up first so every later service
	// can publish progress from the moment it starts.
	app.EventService = events.NewService(app.Logger)
	if err := events.SubscribeLoggerToAllEvents(app.EventService, app.Logger); err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to subscribe logger to events")
	}
	app.WSHandler = handlers.NewWebSocketHandler(app.EventService, app.Logger)

	// Stream logs to WebSocket clients via arbor's context channel
	app.logStreamer = handlers.NewLogStreamer(app.WSHandler, &cfg.WebSocket, app.Logger)
	app.logStreamer.Start()
	app.Logger.SetChannel("context", app.logStreamer.GetChannel())

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initScheduler(); err != nil {
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("llm_provider", string(cfg.LLM.DefaultProvider)).
		Bool("ingest_enabled", cfg.Ingest.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage initializes the storage layer (Badger)
func (a *App) initStorage() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	for _, dir := range []string{a.Config.Storage.Filesystem.Images, a.Config.Storage.Filesystem.Reports} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	return nil
}

// initServices initializes all business services in dependency order:
// LLM and embeddings first, then the knowledge store built on them, then
// the agents, and finally the orchestrator that coordinates the agents.
func (a *App) initServices() error {
	kvStorage := a.StorageManager.KeyValueStorage()

	llmService, err := llm.NewLLMService(a.Config, kvStorage, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create LLM service: %w", err)
	}
	a.LLMService = llmService

	embedder, err := embeddings.NewService(&a.Config.Embeddings, &a.Config.Gemini, kvStorage, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create embedding service: %w", err)
	}
	a.EmbeddingService = embedder

	a.KnowledgeService = knowledge.NewService(
		a.StorageManager.ChunkStorage(),
		a.EmbeddingService,
		&a.Config.Knowledge,
		a.Logger,
	)

	a.AnswerService = answer.NewService(a.KnowledgeService, a.LLMService, a.Logger)

	imageClient := image.NewClient(
		image.WithBaseURL(a.Config.Image.BaseURL),
		image.WithTimeout(parseDurationOr(a.Config.Image.Timeout, 2*time.Minute)),
		image.WithRateLimit(parseDurationOr(a.Config.Image.RateLimit, time.Second)),
		image.WithLogger(a.Logger),
	)

	a.Retriever = agents.NewRetrievalAgent(a.KnowledgeService, a.Logger)
	a.Simplifier = agents.NewSimplificationAgent(a.LLMService, a.Logger)
	a.StoryGenerator = agents.NewStoryAgent(a.LLMService, a.Logger)
	a.ImageGenerator = agents.NewImageAgent(imageClient, &a.Config.Image, a.Config.Storage.Filesystem.Images, a.Logger)

	a.Orchestrator = orchestrator.NewService(
		a.Retriever,
		a.Simplifier,
		a.StoryGenerator,
		a.ImageGenerator,
		a.EventService,
		&a.Config.Orchestrator,
		a.Logger,
	)

	a.ReportService = report.NewService(
		a.StorageManager.ReportStorage(),
		a.EventService,
		a.Config.Storage.Filesystem.Reports,
		a.Logger,
	)

	return nil
}

// initScheduler registers background maintenance jobs and starts the cron
// scheduler. Jobs: periodic ingest-directory rescans (when enabled) and
// Badger value-log garbage collection.
func (a *App) initScheduler() error {
	sched := scheduler.NewService(a.Logger)

	if a.Config.Ingest.Enabled {
		schedule := a.Config.Ingest.Schedule
		if err := common.ValidateSchedule(schedule); err != nil {
			return fmt.Errorf("invalid ingest schedule %q: %w", schedule, err)
		}

		ingestDir := a.Config.Ingest.Dir
		knowledgeService := a.KnowledgeService
		eventService := a.EventService
		logger := a.Logger
		err := sched.RegisterJob("ingest_rescan", schedule, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			result, err := knowledgeService.IngestDir(ctx, ingestDir)
			if err != nil {
				return err
			}
			logger.Info().
				Int("files", result.Files).
				Int("chunks", result.ChunksCreated).
				Msg("Scheduled ingest rescan complete")
			return eventService.Publish(ctx, interfaces.Event{
				Type:    interfaces.EventIngestCompleted,
				Payload: result,
			})
		})
		if err != nil {
			return fmt.Errorf("failed to register ingest job: %w", err)
		}
	}

	storageManager := a.StorageManager
	if err := sched.RegisterJob("badger_gc", "*/30 * * * *", storageManager.RunGC); err != nil {
		return fmt.Errorf("failed to register GC job: %w", err)
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	a.SchedulerService = sched
	return nil
}

// initHandlers initializes HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler()
	a.OrchestrationHandler = handlers.NewOrchestrationHandler(a.Orchestrator, a.ReportService, a.Logger)
	a.KnowledgeHandler = handlers.NewKnowledgeHandler(a.KnowledgeService, a.Logger)
	a.AgentHandler = handlers.NewAgentHandler(a.Simplifier, a.StoryGenerator, a.ImageGenerator, a.AnswerService, a.Logger)
	a.ReportHandler = handlers.NewReportHandler(a.ReportService, a.Logger)
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// Close gracefully shuts down all application components in reverse
// initialization order.
func (a *App) Close() error {
	a.Logger.Info().Msg("Shutting down application...")

	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler")
		}
	}

	if a.logStreamer != nil {
		a.logStreamer.Stop()
	}

	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage manager")
			return err
		}
	}

	a.Logger.Info().Msg("Application shutdown complete")
	return nil
}
