package interfaces

import (
	"context"

	"github.com/spectrumbridge/bridge/internal/models"
)

// OrchestrationRequest carries one user question plus the optional-task flags.
type OrchestrationRequest struct {
	Question       string `json:"question"`
	IncludeStory   bool   `json:"include_story"`
	IncludeImage   bool   `json:"include_image"`
	ChildName      string `json:"child_name,omitempty"`
	TopK           int    `json:"top_k,omitempty"`
	StorySituation string `json:"story_situation,omitempty"`
}

// Orchestrator coordinates one request across the agents: the mandatory
// retrieval -> simplification sequence plus optional story and image tasks
// run concurrently on a bounded pool. It always returns a result; per-task
// failures are recorded inside it, never raised.
type Orchestrator interface {
	Orchestrate(ctx context.Context, req OrchestrationRequest) *models.OrchestrationResult
}
