package handlers

import (
	"net/http"
	"os"

	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/interfaces"
	"github.com/spectrumbridge/bridge/internal/models"
)

// KnowledgeHandler serves search, stats, and ingestion endpoints over the
// knowledge store.
type KnowledgeHandler struct {
	knowledge interfaces.KnowledgeService
	logger    arbor.ILogger
}

func NewKnowledgeHandler(knowledge interfaces.KnowledgeService, logger arbor.ILogger) *KnowledgeHandler {
	return &KnowledgeHandler{
		knowledge: knowledge,
		logger:    logger,
	}
}

type searchRequest struct {
	Query string `json:"query" validate:"required"`
	Topic string `json:"topic"`
	TopK  int    `json:"top_k" validate:"gte=0,lte=50"`
}

// SearchHandler runs a similarity search over the knowledge store.
// POST /api/search
func (h *KnowledgeHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req searchRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	var (
		passages []models.Passage
		err      error
	)
	if req.Topic != "" {
		passages, err = h.knowledge.SearchByTopic(r.Context(), req.Query, req.Topic, req.TopK)
	} else {
		passages, err = h.knowledge.Search(r.Context(), req.Query, req.TopK)
	}
	if err != nil {
		h.logger.Error().Err(err).Str("query", req.Query).Msg("Search failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":    req.Query,
		"passages": passages,
		"count":    len(passages),
	})
}

// StatsHandler reports knowledge store statistics.
// GET /api/knowledge/stats
func (h *KnowledgeHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	stats, err := h.knowledge.Stats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Stats query failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}

type ingestRequest struct {
	Path   string `json:"path"`
	Source string `json:"source"`
	Topic  string `json:"topic"`
	Text   string `json:"text"`
}

// IngestHandler loads documents into the knowledge store, either from a file
// or directory path on the server, or from raw text in the request body.
// POST /api/ingest
func (h *KnowledgeHandler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req ingestRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	var (
		result *interfaces.IngestResult
		err    error
	)
	switch {
	case req.Text != "":
		if req.Source == "" {
			WriteError(w, http.StatusBadRequest, "source is required when ingesting raw text")
			return
		}
		result, err = h.knowledge.AddDocument(r.Context(), req.Source, req.Topic, req.Text)
	case req.Path != "":
		info, statErr := os.Stat(req.Path)
		if statErr != nil {
			WriteError(w, http.StatusBadRequest, statErr.Error())
			return
		}
		if info.IsDir() {
			result, err = h.knowledge.IngestDir(r.Context(), req.Path)
		} else {
			result, err = h.knowledge.IngestFile(r.Context(), req.Path)
		}
	default:
		WriteError(w, http.StatusBadRequest, "either path or text is required")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("path", req.Path).Msg("Ingestion failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
