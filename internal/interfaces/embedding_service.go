package interfaces

import (
	"context"
)

// EmbeddingService generates fixed-dimension vector embeddings. Every
// returned vector is validated against Dimension(); the knowledge store
// rejects vectors of any other size.
type EmbeddingService interface {
	// Embed generates an embedding vector for raw text
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the configured embedding vector size
	Dimension() int

	// HealthCheck verifies the embedding provider is reachable
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the service
	Close() error
}
