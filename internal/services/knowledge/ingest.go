package knowledge

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spectrumbridge/bridge/internal/interfaces"
)

// supportedExtensions lists the file types the ingestion pipeline can read.
var supportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".pdf":  true,
	".html": true,
	".htm":  true,
}

// IngestFile loads one file into the knowledge store. The file's base name
// becomes the chunk source; for HTML files the page title is preferred when
// present.
func (s *Service) IngestFile(ctx context.Context, path string) (*interfaces.IngestResult, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return nil, fmt.Errorf("unsupported file type %q: %s", ext, filepath.Base(path))
	}
	return s.ingestOne(ctx, path, "")
}

// IngestDir walks a directory tree and ingests every supported file. Files in
// subdirectories take the first-level directory name as their topic; files
// directly under the root carry none. A file that fails to ingest is logged
// and skipped so one bad document cannot stall a scheduled rescan.
func (s *Service) IngestDir(ctx context.Context, dir string) (*interfaces.IngestResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open ingest directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("ingest path is not a directory: %s", dir)
	}

	total := &interfaces.IngestResult{}

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if !supportedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		result, err := s.ingestOne(ctx, path, topicFor(dir, path))
		if err != nil {
			s.logger.Warn().Err(err).Str("file", path).Msg("Skipping file that failed to ingest")
			return nil
		}

		total.Files += result.Files
		total.Documents += result.Documents
		total.ChunksCreated += result.ChunksCreated
		total.ChunksSkipped += result.ChunksSkipped
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to walk ingest directory: %w", walkErr)
	}

	s.logger.Info().
		Str("dir", dir).
		Int("files", total.Files).
		Int("documents", total.Documents).
		Int("chunks_created", total.ChunksCreated).
		Int("chunks_skipped", total.ChunksSkipped).
		Msg("Directory ingestion completed")

	return total, nil
}

// ingestOne reads a single file, picks its source name, and feeds the text
// through AddDocument. Files whose text is empty count as scanned but add no
// document.
func (s *Service) ingestOne(ctx context.Context, path, topic string) (*interfaces.IngestResult, error) {
	source := filepath.Base(path)

	var text string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		text = string(raw)
	case ".pdf":
		extracted, err := s.extractPDFText(path)
		if err != nil {
			return nil, err
		}
		text = extracted
	case ".html", ".htm":
		title, markdown, err := s.convertHTMLFile(path)
		if err != nil {
			return nil, err
		}
		if title != "" {
			source = title
		}
		text = markdown
	default:
		return nil, fmt.Errorf("unsupported file type: %s", source)
	}

	if strings.TrimSpace(text) == "" {
		s.logger.Warn().Str("file", path).Msg("File contains no extractable text")
		return &interfaces.IngestResult{Files: 1}, nil
	}

	result, err := s.AddDocument(ctx, source, topic, text)
	if err != nil {
		return nil, err
	}
	result.Files = 1
	return result, nil
}

// topicFor derives a topic from the file's position under the ingest root.
func topicFor(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	dir := filepath.Dir(rel)
	if dir == "." {
		return ""
	}
	parts := strings.Split(dir, string(filepath.Separator))
	return parts[0]
}
