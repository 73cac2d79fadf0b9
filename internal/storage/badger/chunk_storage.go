package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/spectrumbridge/bridge/internal/interfaces"
	"github.com/spectrumbridge/bridge/internal/models"
)

// ChunkStorage implements the ChunkStorage interface for Badger
type ChunkStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewChunkStorage creates a new ChunkStorage instance
func NewChunkStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ChunkStorage {
	return &ChunkStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ChunkStorage) SaveChunk(ctx context.Context, chunk *models.KnowledgeChunk) error {
	if chunk.ID == "" {
		return fmt.Errorf("chunk ID is required")
	}

	now := time.Now()
	if chunk.CreatedAt.IsZero() {
		chunk.CreatedAt = now
	}
	chunk.UpdatedAt = now

	if err := s.db.Store().Upsert(chunk.ID, chunk); err != nil {
		return fmt.Errorf("failed to save chunk: %w", err)
	}
	return nil
}

func (s *ChunkStorage) SaveChunks(ctx context.Context, chunks []*models.KnowledgeChunk) error {
	for _, chunk := range chunks {
		if err := s.SaveChunk(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (s *ChunkStorage) GetChunk(ctx context.Context, id string) (*models.KnowledgeChunk, error) {
	var chunk models.KnowledgeChunk
	if err := s.db.Store().Get(id, &chunk); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("chunk not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get chunk: %w", err)
	}
	return &chunk, nil
}

func (s *ChunkStorage) DeleteChunk(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.KnowledgeChunk{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete chunk: %w", err)
	}
	return nil
}

func (s *ChunkStorage) DeleteByDocument(ctx context.Context, documentID string) error {
	err := s.db.Store().DeleteMatching(&models.KnowledgeChunk{}, badgerhold.Where("DocumentID").Eq(documentID))
	if err != nil {
		return fmt.Errorf("failed to delete chunks for document %s: %w", documentID, err)
	}
	return nil
}

func (s *ChunkStorage) ListChunks(ctx context.Context) ([]*models.KnowledgeChunk, error) {
	var chunks []models.KnowledgeChunk
	if err := s.db.Store().Find(&chunks, nil); err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}

	result := make([]*models.KnowledgeChunk, len(chunks))
	for i := range chunks {
		result[i] = &chunks[i]
	}
	return result, nil
}

func (s *ChunkStorage) GetChunksByTopic(ctx context.Context, topic string) ([]*models.KnowledgeChunk, error) {
	var chunks []models.KnowledgeChunk
	err := s.db.Store().Find(&chunks, badgerhold.Where("Topic").Eq(topic))
	if err != nil {
		return nil, fmt.Errorf("failed to find chunks by topic: %w", err)
	}

	result := make([]*models.KnowledgeChunk, len(chunks))
	for i := range chunks {
		result[i] = &chunks[i]
	}
	return result, nil
}

func (s *ChunkStorage) GetChunksBySource(ctx context.Context, source string) ([]*models.KnowledgeChunk, error) {
	var chunks []models.KnowledgeChunk
	err := s.db.Store().Find(&chunks, badgerhold.Where("Source").Eq(source))
	if err != nil {
		return nil, fmt.Errorf("failed to find chunks by source: %w", err)
	}

	result := make([]*models.KnowledgeChunk, len(chunks))
	for i := range chunks {
		result[i] = &chunks[i]
	}
	return result, nil
}

func (s *ChunkStorage) CountChunks(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.KnowledgeChunk{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return int(count), nil
}

// GetStats aggregates store-wide counters in a single scan. Sources and
// topics come back sorted so repeated calls are comparable.
func (s *ChunkStorage) GetStats(ctx context.Context) (*models.KnowledgeStats, error) {
	chunks, err := s.ListChunks(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.KnowledgeStats{
		TotalChunks:   len(chunks),
		ChunksByTopic: make(map[string]int),
	}

	documents := make(map[string]struct{})
	sources := make(map[string]struct{})
	topics := make(map[string]struct{})

	for _, chunk := range chunks {
		if chunk.DocumentID != "" {
			documents[chunk.DocumentID] = struct{}{}
		}
		if chunk.Source != "" {
			sources[chunk.Source] = struct{}{}
		}
		if chunk.Topic != "" {
			topics[chunk.Topic] = struct{}{}
			stats.ChunksByTopic[chunk.Topic]++
		}
		if stats.EmbeddingDimension == 0 && len(chunk.Embedding) > 0 {
			stats.EmbeddingDimension = len(chunk.Embedding)
		}
		if chunk.UpdatedAt.After(stats.LastUpdated) {
			stats.LastUpdated = chunk.UpdatedAt
		}
	}

	stats.TotalDocuments = len(documents)
	for source := range sources {
		stats.Sources = append(stats.Sources, source)
	}
	for topic := range topics {
		stats.Topics = append(stats.Topics, topic)
	}
	sort.Strings(stats.Sources)
	sort.Strings(stats.Topics)

	return stats, nil
}

func (s *ChunkStorage) ClearAll(ctx context.Context) error {
	if err := s.db.Store().DeleteMatching(&models.KnowledgeChunk{}, nil); err != nil {
		return fmt.Errorf("failed to clear chunks: %w", err)
	}
	s.logger.Info().Msg("Cleared all knowledge chunks")
	return nil
}
