package interfaces

import (
	"context"

	"github.com/spectrumbridge/bridge/internal/models"
)

// AnswerService answers questions grounded in retrieved knowledge. The answer
// is generated ONLY from stored passages; when nothing relevant is found it
// returns a fixed "not enough information" response without calling the LLM.
type AnswerService interface {
	Answer(ctx context.Context, question string, topK int) (*models.AnswerResult, error)
}
