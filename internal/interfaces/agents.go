package interfaces

import (
	"context"

	"github.com/spectrumbridge/bridge/internal/models"
)

// Agent contracts. Agents are stateless-per-call wrappers around one external
// AI capability. They never return Go errors: every failure from the wrapped
// call is caught and recorded in the result's Success/Error fields so the
// orchestrator can aggregate partial outcomes without exception propagation.

// Retriever searches the knowledge store for passages relevant to a query.
type Retriever interface {
	// Retrieve runs a similarity search. topK <= 0 selects the default (5).
	// An empty query fails without touching the store.
	Retrieve(ctx context.Context, query string, topK int) *models.RetrievalResult
}

// Simplifier rewrites text at an early-grade reading level and scores the
// output with fixed readability arithmetic.
type Simplifier interface {
	// Simplify rewrites text to a grade-2 reading level. Empty or blank input
	// fails without an LLM call.
	Simplify(ctx context.Context, text string) *models.SimplificationResult

	// SimplifyBatch simplifies each text independently; one failure does not
	// abort the remaining items.
	SimplifyBatch(ctx context.Context, texts []string) []*models.SimplificationResult

	// ExplainForAge explains a topic for an age band: "5_year_old",
	// "10_year_old", or "teenager". An unknown band falls back to the
	// youngest phrasing.
	ExplainForAge(ctx context.Context, topic, ageBand string) *models.SimplificationResult
}

// StoryGenerator produces social stories with a fixed narrative structure.
type StoryGenerator interface {
	// GenerateStory writes a social story about a situation. childName
	// defaults to "friend" and readingLevel to "grade_2" when empty.
	GenerateStory(ctx context.Context, situation, childName, readingLevel string) *models.StoryResult

	// CustomizeStory rewrites an existing story with a child's name and
	// situation-specific details woven in.
	CustomizeStory(ctx context.Context, baseStory, childName, details string) *models.StoryResult

	// CommonSituations lists the built-in situation catalog.
	CommonSituations() []models.SocialSituation
}

// ImageGenerator produces educational illustrations via a local image model.
// Calls are synchronous and long-running (tens of seconds).
type ImageGenerator interface {
	// GenerateImage renders one image for the prompt and saves it as a PNG.
	// When the model backend is unreachable a labeled placeholder image is
	// written instead and the result is still marked successful with
	// Placeholder set.
	GenerateImage(ctx context.Context, prompt string) *models.ImageResult

	// GenerateBatch renders images sequentially, one result per prompt.
	GenerateBatch(ctx context.Context, prompts []string) []*models.ImageResult
}
