package interfaces

import (
	"context"

	"github.com/spectrumbridge/bridge/internal/models"
)

// IngestResult summarizes one ingestion run.
type IngestResult struct {
	Files         int `json:"files"`
	Documents     int `json:"documents"`
	ChunksCreated int `json:"chunks_created"`
	ChunksSkipped int `json:"chunks_skipped"`
}

// KnowledgeService defines the retrieval-side contract over the embedded
// knowledge store: similarity search over chunk embeddings plus the ingestion
// pipeline that populates them.
//
// Search ranking is deterministic for an unchanged store: the same query
// yields the same relative passage order across calls (scores may differ only
// if the embedding provider returns a different query vector).
type KnowledgeService interface {
	// Search embeds the query and returns the topK most similar chunks as
	// ranked passages with relevance scores in [0,1], highest first.
	Search(ctx context.Context, query string, topK int) ([]models.Passage, error)

	// SearchByTopic restricts Search to chunks tagged with the given topic.
	SearchByTopic(ctx context.Context, query, topic string, topK int) ([]models.Passage, error)

	// SearchBySource returns stored chunks for a source identifier, in chunk
	// order. No embedding call is made.
	SearchBySource(ctx context.Context, source string, limit int) ([]models.Passage, error)

	// AddDocument chunks, embeds, and stores one document's text.
	AddDocument(ctx context.Context, source, topic, text string) (*IngestResult, error)

	// IngestFile loads one file (.txt, .md, .pdf, .html) into the store.
	IngestFile(ctx context.Context, path string) (*IngestResult, error)

	// IngestDir ingests every supported file under a directory.
	IngestDir(ctx context.Context, dir string) (*IngestResult, error)

	// Stats reports chunk counts, sources, and topics.
	Stats(ctx context.Context) (*models.KnowledgeStats, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)
}
