package badger

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/spectrumbridge/bridge/internal/models"
)

func openTestStore(t *testing.T) *BadgerDB {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "badger-test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	options := badgerhold.DefaultOptions
	options.Dir = tmpDir
	options.ValueDir = tmpDir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return &BadgerDB{store: store}
}

func TestChunkStoragePersistence(t *testing.T) {
	db := openTestStore(t)
	logger := arbor.NewLogger()
	storage := NewChunkStorage(db, logger)

	ctx := context.Background()

	chunks := []*models.KnowledgeChunk{
		{
			ID:         "chunk-1",
			DocumentID: "doc-1",
			Source:     "basics.txt",
			Topic:      "communication",
			Text:       "Some children communicate without speaking.",
			ChunkIndex: 0,
			Embedding:  []float32{0.1, 0.2, 0.3},
		},
		{
			ID:         "chunk-2",
			DocumentID: "doc-1",
			Source:     "basics.txt",
			Topic:      "communication",
			Text:       "Pictures and gestures can carry meaning too.",
			ChunkIndex: 1,
			Embedding:  []float32{0.2, 0.1, 0.4},
		},
		{
			ID:         "chunk-3",
			DocumentID: "doc-2",
			Source:     "sensory.txt",
			Topic:      "sensory",
			Text:       "Loud noises can feel overwhelming.",
			ChunkIndex: 0,
			Embedding:  []float32{0.5, 0.5, 0.5},
		},
	}

	if err := storage.SaveChunks(ctx, chunks); err != nil {
		t.Fatalf("Failed to save chunks: %v", err)
	}

	// Get by ID
	got, err := storage.GetChunk(ctx, "chunk-1")
	if err != nil {
		t.Fatalf("Failed to get chunk: %v", err)
	}
	if got.Text != chunks[0].Text {
		t.Errorf("GetChunk text = %q, want %q", got.Text, chunks[0].Text)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("Save should set CreatedAt and UpdatedAt")
	}

	// Missing ID is an error
	if _, err := storage.GetChunk(ctx, "missing"); err == nil {
		t.Error("Expected error for missing chunk")
	}

	// Topic lookup
	byTopic, err := storage.GetChunksByTopic(ctx, "communication")
	if err != nil {
		t.Fatalf("Failed to get chunks by topic: %v", err)
	}
	if len(byTopic) != 2 {
		t.Errorf("Expected 2 communication chunks, got %d", len(byTopic))
	}

	// Source lookup
	bySource, err := storage.GetChunksBySource(ctx, "sensory.txt")
	if err != nil {
		t.Fatalf("Failed to get chunks by source: %v", err)
	}
	if len(bySource) != 1 {
		t.Errorf("Expected 1 sensory.txt chunk, got %d", len(bySource))
	}

	// Count
	count, err := storage.CountChunks(ctx)
	if err != nil {
		t.Fatalf("Failed to count chunks: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 chunks, got %d", count)
	}

	// Stats
	stats, err := storage.GetStats(ctx)
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if stats.TotalChunks != 3 {
		t.Errorf("Stats TotalChunks = %d, want 3", stats.TotalChunks)
	}
	if stats.TotalDocuments != 2 {
		t.Errorf("Stats TotalDocuments = %d, want 2", stats.TotalDocuments)
	}
	if stats.EmbeddingDimension != 3 {
		t.Errorf("Stats EmbeddingDimension = %d, want 3", stats.EmbeddingDimension)
	}
	if stats.ChunksByTopic["communication"] != 2 {
		t.Errorf("Stats ChunksByTopic[communication] = %d, want 2", stats.ChunksByTopic["communication"])
	}
	if len(stats.Sources) != 2 || stats.Sources[0] != "basics.txt" {
		t.Errorf("Stats Sources = %v, want sorted [basics.txt sensory.txt]", stats.Sources)
	}

	// Delete by document removes only that document's chunks
	if err := storage.DeleteByDocument(ctx, "doc-1"); err != nil {
		t.Fatalf("Failed to delete by document: %v", err)
	}
	count, err = storage.CountChunks(ctx)
	if err != nil {
		t.Fatalf("Failed to count chunks after delete: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 chunk after DeleteByDocument, got %d", count)
	}

	// ClearAll empties the store
	if err := storage.ClearAll(ctx); err != nil {
		t.Fatalf("Failed to clear chunks: %v", err)
	}
	count, err = storage.CountChunks(ctx)
	if err != nil {
		t.Fatalf("Failed to count chunks after clear: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 chunks after ClearAll, got %d", count)
	}
}

func TestReportStoragePersistence(t *testing.T) {
	db := openTestStore(t)
	logger := arbor.NewLogger()
	storage := NewReportStorage(db, logger)

	ctx := context.Background()

	older := &models.ReportRecord{
		ID:          "report-1",
		Question:    "What is autism?",
		Path:        "/tmp/report_1.pdf",
		SizeBytes:   1024,
		GeneratedAt: time.Now().Add(-time.Hour),
	}
	newer := &models.ReportRecord{
		ID:        "report-2",
		Question:  "How do routines help?",
		Path:      "/tmp/report_2.pdf",
		SizeBytes: 2048,
	}

	if err := storage.SaveReport(ctx, older); err != nil {
		t.Fatalf("Failed to save report: %v", err)
	}
	if err := storage.SaveReport(ctx, newer); err != nil {
		t.Fatalf("Failed to save report: %v", err)
	}

	// GeneratedAt defaults to now when unset
	if newer.GeneratedAt.IsZero() {
		t.Error("SaveReport should default GeneratedAt")
	}

	got, err := storage.GetReport(ctx, "report-1")
	if err != nil {
		t.Fatalf("Failed to get report: %v", err)
	}
	if got.Question != older.Question {
		t.Errorf("GetReport question = %q, want %q", got.Question, older.Question)
	}

	// Newest first
	reports, err := storage.ListReports(ctx)
	if err != nil {
		t.Fatalf("Failed to list reports: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("Expected 2 reports, got %d", len(reports))
	}
	if reports[0].ID != "report-2" {
		t.Errorf("ListReports[0].ID = %s, want report-2 (newest first)", reports[0].ID)
	}

	if err := storage.DeleteReport(ctx, "report-1"); err != nil {
		t.Fatalf("Failed to delete report: %v", err)
	}
	reports, err = storage.ListReports(ctx)
	if err != nil {
		t.Fatalf("Failed to list reports after delete: %v", err)
	}
	if len(reports) != 1 {
		t.Errorf("Expected 1 report after delete, got %d", len(reports))
	}
}
