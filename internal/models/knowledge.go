package models

import "time"

// KnowledgeChunk is one embedded text chunk persisted in the knowledge store.
// Chunks carry their own embedding so similarity search can run without a
// round trip to the embedding provider for stored content.
type KnowledgeChunk struct {
	ID         string    `json:"id" badgerhold:"key"`
	DocumentID string    `json:"document_id" badgerhold:"index"`
	Source     string    `json:"source" badgerhold:"index"`
	Topic      string    `json:"topic" badgerhold:"index"`
	Text       string    `json:"text"`
	ChunkIndex int       `json:"chunk_index"`
	Embedding  []float32 `json:"embedding"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// KnowledgeStats summarizes the state of the knowledge store.
type KnowledgeStats struct {
	TotalChunks        int            `json:"total_chunks"`
	TotalDocuments     int            `json:"total_documents"`
	Sources            []string       `json:"sources"`
	Topics             []string       `json:"topics"`
	ChunksByTopic      map[string]int `json:"chunks_by_topic"`
	EmbeddingDimension int            `json:"embedding_dimension"`
	LastUpdated        time.Time      `json:"last_updated"`
}

// ReportRecord tracks a generated PDF report on disk.
type ReportRecord struct {
	ID          string    `json:"id" badgerhold:"key"`
	Question    string    `json:"question"`
	Path        string    `json:"path"`
	SizeBytes   int64     `json:"size_bytes"`
	GeneratedAt time.Time `json:"generated_at"`
}
