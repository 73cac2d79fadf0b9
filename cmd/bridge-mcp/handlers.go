package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/interfaces"
)

// toolError wraps a failure as JSON text content. Tool-level failures are
// reported in-band, not as protocol errors.
func toolError(message string) *mcp.CallToolResult {
	payload, _ := json.Marshal(map[string]interface{}{
		"success": false,
		"error":   message,
	})
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(string(payload)),
		},
	}
}

// toolResult marshals a result value as JSON text content.
func toolResult(value interface{}) *mcp.CallToolResult {
	payload, err := json.Marshal(value)
	if err != nil {
		return toolError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(string(payload)),
		},
	}
}

// handleSearchKnowledge implements the search_autism_knowledge tool
func handleSearchKnowledge(knowledgeService interfaces.KnowledgeService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return toolError("query parameter is required"), nil
		}

		topK := request.GetInt("top_k", 5)
		if topK > 50 {
			topK = 50
		}

		passages, err := knowledgeService.Search(ctx, query, topK)
		if err != nil {
			logger.Error().Err(err).Str("query", query).Msg("Search failed")
			return toolError(fmt.Sprintf("search failed: %v", err)), nil
		}

		return toolResult(map[string]interface{}{
			"success":  true,
			"query":    query,
			"passages": passages,
			"count":    len(passages),
		}), nil
	}
}

// handleSimplifyContent implements the simplify_content tool
func handleSimplifyContent(simplifier interfaces.Simplifier, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := request.RequireString("text")
		if err != nil || text == "" {
			return toolError("text parameter is required"), nil
		}

		result := simplifier.Simplify(ctx, text)
		if !result.Success {
			return toolError(result.Error), nil
		}
		return toolResult(result), nil
	}
}

// handleGenerateStory implements the generate_social_story tool
func handleGenerateStory(storyAgent interfaces.StoryGenerator, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		situation, err := request.RequireString("situation")
		if err != nil || situation == "" {
			return toolError("situation parameter is required"), nil
		}

		childName := request.GetString("child_name", "")
		readingLevel := request.GetString("reading_level", "")

		result := storyAgent.GenerateStory(ctx, situation, childName, readingLevel)
		if !result.Success {
			return toolError(result.Error), nil
		}
		return toolResult(result), nil
	}
}

// handleGenerateImage implements the generate_educational_image tool
func handleGenerateImage(imageAgent interfaces.ImageGenerator, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		prompt, err := request.RequireString("prompt")
		if err != nil || prompt == "" {
			return toolError("prompt parameter is required"), nil
		}

		result := imageAgent.GenerateImage(ctx, prompt)
		if !result.Success {
			return toolError(result.Error), nil
		}
		return toolResult(result), nil
	}
}

// handleAnswerQuestion implements the answer_question tool
func handleAnswerQuestion(answerService interfaces.AnswerService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil || question == "" {
			return toolError("question parameter is required"), nil
		}

		topK := request.GetInt("top_k", 5)

		result, err := answerService.Answer(ctx, question, topK)
		if err != nil {
			logger.Error().Err(err).Str("question", question).Msg("Answer failed")
			return toolError(fmt.Sprintf("answer failed: %v", err)), nil
		}
		return toolResult(result), nil
	}
}

// handleFullReport implements the create_full_report tool
func handleFullReport(orchestratorService interfaces.Orchestrator, reportService interfaces.ReportService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil || question == "" {
			return toolError("question parameter is required"), nil
		}

		result := orchestratorService.Orchestrate(ctx, interfaces.OrchestrationRequest{
			Question:     question,
			ChildName:    request.GetString("child_name", ""),
			IncludeStory: request.GetBool("include_story", true),
			IncludeImage: request.GetBool("include_image", true),
		})

		record, err := reportService.GenerateReport(ctx, result)
		if err != nil {
			logger.Error().Err(err).Msg("Report generation failed")
			return toolResult(map[string]interface{}{
				"success":      result.Success,
				"result":       result,
				"report_error": err.Error(),
			}), nil
		}

		return toolResult(map[string]interface{}{
			"success": result.Success,
			"result":  result,
			"report":  record,
		}), nil
	}
}
