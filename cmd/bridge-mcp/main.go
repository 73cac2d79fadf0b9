package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbormodels "github.com/ternarybob/arbor/models"

	"github.com/spectrumbridge/bridge/internal/agents"
	"github.com/spectrumbridge/bridge/internal/common"
	"github.com/spectrumbridge/bridge/internal/orchestrator"
	"github.com/spectrumbridge/bridge/internal/services/answer"
	"github.com/spectrumbridge/bridge/internal/services/embeddings"
	"github.com/spectrumbridge/bridge/internal/services/image"
	"github.com/spectrumbridge/bridge/internal/services/knowledge"
	"github.com/spectrumbridge/bridge/internal/services/llm"
	"github.com/spectrumbridge/bridge/internal/services/report"
	"github.com/spectrumbridge/bridge/internal/storage"
)

func main() {
	configPath := os.Getenv("BRIDGE_CONFIG")
	if configPath == "" {
		configPath = "bridge.toml"
	}

	var configFiles []string
	if _, err := os.Stat(configPath); err == nil {
		configFiles = append(configFiles, configPath)
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logger for MCP server (console only, warn level) to avoid
	// cluttering stdio with log output.
	logger := arbor.NewLogger().WithConsoleWriter(arbormodels.WriterConfiguration{
		Type:             arbormodels.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer storageManager.Close()

	for _, dir := range []string{config.Storage.Filesystem.Images, config.Storage.Filesystem.Reports} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal().Err(err).Str("dir", dir).Msg("Failed to create output directory")
		}
	}

	kvStorage := storageManager.KeyValueStorage()

	llmService, err := llm.NewLLMService(config, kvStorage, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize LLM service")
	}

	embedder, err := embeddings.NewService(&config.Embeddings, &config.Gemini, kvStorage, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize embedding service")
	}

	knowledgeService := knowledge.NewService(storageManager.ChunkStorage(), embedder, &config.Knowledge, logger)
	answerService := answer.NewService(knowledgeService, llmService, logger)

	imageClient := image.NewClient(
		image.WithBaseURL(config.Image.BaseURL),
		image.WithTimeout(parseDurationOr(config.Image.Timeout, 2*time.Minute)),
		image.WithRateLimit(parseDurationOr(config.Image.RateLimit, time.Second)),
		image.WithLogger(logger),
	)

	retriever := agents.NewRetrievalAgent(knowledgeService, logger)
	simplifier := agents.NewSimplificationAgent(llmService, logger)
	storyAgent := agents.NewStoryAgent(llmService, logger)
	imageAgent := agents.NewImageAgent(imageClient, &config.Image, config.Storage.Filesystem.Images, logger)

	// No event bus on the stdio path; progress events have no consumer here.
	orchestratorService := orchestrator.NewService(
		retriever, simplifier, storyAgent, imageAgent,
		nil, &config.Orchestrator, logger,
	)

	reportService := report.NewService(storageManager.ReportStorage(), nil, config.Storage.Filesystem.Reports, logger)

	mcpServer := server.NewMCPServer(
		"spectrum-bridge",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createSearchKnowledgeTool(), handleSearchKnowledge(knowledgeService, logger))
	mcpServer.AddTool(createSimplifyContentTool(), handleSimplifyContent(simplifier, logger))
	mcpServer.AddTool(createGenerateStoryTool(), handleGenerateStory(storyAgent, logger))
	mcpServer.AddTool(createGenerateImageTool(), handleGenerateImage(imageAgent, logger))
	mcpServer.AddTool(createAnswerQuestionTool(), handleAnswerQuestion(answerService, logger))
	mcpServer.AddTool(createFullReportTool(), handleFullReport(orchestratorService, reportService, logger))

	// Blocks on stdio until the client disconnects
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
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
