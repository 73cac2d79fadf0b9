package knowledge

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/common"
	"github.com/spectrumbridge/bridge/internal/interfaces"
	"github.com/spectrumbridge/bridge/internal/models"
)

// Service runs similarity search and ingestion over the embedded chunk store.
// Ranking embeds the query, scores every stored chunk by cosine similarity in
// memory, and returns the top K. The store is small enough (thousands of
// chunks) that a full scan beats maintaining an index.
type Service struct {
	chunks   interfaces.ChunkStorage
	embedder interfaces.EmbeddingService
	config   *common.KnowledgeConfig
	logger   arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.KnowledgeService = (*Service)(nil)

// NewService creates a knowledge service over the given chunk storage and
// embedding provider.
func NewService(chunks interfaces.ChunkStorage, embedder interfaces.EmbeddingService, config *common.KnowledgeConfig, logger arbor.ILogger) *Service {
	return &Service{
		chunks:   chunks,
		embedder: embedder,
		config:   config,
		logger:   logger,
	}
}

// Search embeds the query and returns the topK most similar stored chunks,
// highest relevance first.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]models.Passage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	topK = s.effectiveTopK(topK)

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	chunks, err := s.chunks.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}

	passages := rankChunks(queryVec, chunks, topK)

	s.logger.Debug().
		Str("query", query).
		Int("top_k", topK).
		Int("candidates", len(chunks)).
		Int("returned", len(passages)).
		Msg("Knowledge search completed")

	return passages, nil
}

// SearchByTopic ranks only chunks tagged with the given topic. An empty query
// falls back to the topic keyword itself.
func (s *Service) SearchByTopic(ctx context.Context, query, topic string, topK int) ([]models.Passage, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		query = topic
	}
	topK = s.effectiveTopK(topK)

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	chunks, err := s.chunks.GetChunksByTopic(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks for topic %s: %w", topic, err)
	}

	return rankChunks(queryVec, chunks, topK), nil
}

// SearchBySource returns the stored chunks for one source document in chunk
// order. No embedding call is made, so passage scores are zero.
func (s *Service) SearchBySource(ctx context.Context, source string, limit int) ([]models.Passage, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("source is required")
	}

	chunks, err := s.chunks.GetChunksBySource(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks for source %s: %w", source, err)
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})
	if limit > 0 && len(chunks) > limit {
		chunks = chunks[:limit]
	}

	passages := make([]models.Passage, 0, len(chunks))
	for _, chunk := range chunks {
		passages = append(passages, models.Passage{
			Text:       chunk.Text,
			Source:     chunk.Source,
			Topic:      chunk.Topic,
			ChunkIndex: chunk.ChunkIndex,
		})
	}
	return passages, nil
}

// AddDocument chunks, embeds, and stores one document's text under a shared
// document ID. The returned result counts a document only when at least one
// chunk survived the minimum-length filter.
func (s *Service) AddDocument(ctx context.Context, source, topic, text string) (*interfaces.IngestResult, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("source is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("document text is empty")
	}

	texts, skippedCount := ChunkText(text, s.config.ChunkSize, s.config.ChunkOverlap, s.config.MinChunkLength)
	if len(texts) == 0 {
		s.logger.Warn().
			Str("source", source).
			Int("skipped", skippedCount).
			Msg("Document produced no chunks above the minimum length")
		return &interfaces.IngestResult{ChunksSkipped: skippedCount}, nil
	}

	documentID := common.NewDocumentID()
	now := time.Now()

	chunks := make([]*models.KnowledgeChunk, 0, len(texts))
	for i, chunkText := range texts {
		embedding, err := s.embedder.Embed(ctx, chunkText)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %d of %s: %w", i, source, err)
		}
		chunks = append(chunks, &models.KnowledgeChunk{
			ID:         common.NewChunkID(),
			DocumentID: documentID,
			Source:     source,
			Topic:      topic,
			Text:       chunkText,
			ChunkIndex: i,
			Embedding:  embedding,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	if err := s.chunks.SaveChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("failed to save chunks for %s: %w", source, err)
	}

	s.logger.Info().
		Str("source", source).
		Str("topic", topic).
		Str("document_id", documentID).
		Int("chunks", len(chunks)).
		Int("skipped", skippedCount).
		Msg("Document added to knowledge store")

	return &interfaces.IngestResult{
		Documents:     1,
		ChunksCreated: len(chunks),
		ChunksSkipped: skippedCount,
	}, nil
}

// Stats reports chunk counts, sources, and topics for the store.
func (s *Service) Stats(ctx context.Context) (*models.KnowledgeStats, error) {
	return s.chunks.GetStats(ctx)
}

// Count returns the number of stored chunks.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.chunks.CountChunks(ctx)
}

func (s *Service) effectiveTopK(topK int) int {
	if topK > 0 {
		return topK
	}
	if s.config.DefaultTopK > 0 {
		return s.config.DefaultTopK
	}
	return 5
}

// rankChunks scores candidates against the query vector and returns the topK
// as passages, highest first. Chunks without an embedding are ignored. Ties
// keep store order, so an unchanged store always ranks the same way.
func rankChunks(queryVec []float32, chunks []*models.KnowledgeChunk, topK int) []models.Passage {
	type scored struct {
		chunk *models.KnowledgeChunk
		score float64
	}

	candidates := make([]scored, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		candidates = append(candidates, scored{
			chunk: chunk,
			score: cosineSimilarity(queryVec, chunk.Embedding),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}

	passages := make([]models.Passage, 0, len(candidates))
	for _, c := range candidates {
		passages = append(passages, models.Passage{
			Text:       c.chunk.Text,
			Source:     c.chunk.Source,
			Topic:      c.chunk.Topic,
			Score:      relevanceScore(c.score),
			ChunkIndex: c.chunk.ChunkIndex,
		})
	}
	return passages
}
