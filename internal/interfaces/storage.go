package interfaces

import (
	"context"

	"github.com/spectrumbridge/bridge/internal/models"
)

// ChunkStorage - interface for knowledge chunk persistence
type ChunkStorage interface {
	// CRUD operations
	SaveChunk(ctx context.Context, chunk *models.KnowledgeChunk) error
	SaveChunks(ctx context.Context, chunks []*models.KnowledgeChunk) error
	GetChunk(ctx context.Context, id string) (*models.KnowledgeChunk, error)
	DeleteChunk(ctx context.Context, id string) error
	DeleteByDocument(ctx context.Context, documentID string) error

	// List operations
	ListChunks(ctx context.Context) ([]*models.KnowledgeChunk, error)
	GetChunksByTopic(ctx context.Context, topic string) ([]*models.KnowledgeChunk, error)
	GetChunksBySource(ctx context.Context, source string) ([]*models.KnowledgeChunk, error)

	// Stats operations
	CountChunks(ctx context.Context) (int, error)
	GetStats(ctx context.Context) (*models.KnowledgeStats, error)

	// Bulk operations
	ClearAll(ctx context.Context) error
}

// ReportStorage - interface for generated report records
type ReportStorage interface {
	SaveReport(ctx context.Context, report *models.ReportRecord) error
	GetReport(ctx context.Context, id string) (*models.ReportRecord, error)
	ListReports(ctx context.Context) ([]*models.ReportRecord, error)
	DeleteReport(ctx context.Context, id string) error
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	ChunkStorage() ChunkStorage
	ReportStorage() ReportStorage
	KeyValueStorage() KeyValueStorage
	DB() interface{}
	// RunGC triggers a maintenance garbage collection cycle on the
	// underlying store. Safe to call periodically; a no-op result is not
	// an error.
	RunGC() error
	Close() error
}
