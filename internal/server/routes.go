package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket endpoint for log and progress streaming
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// Pipeline
	mux.HandleFunc("/api/orchestrate", s.app.OrchestrationHandler.OrchestrateHandler) // POST - full multi-agent pipeline

	// Knowledge store
	mux.HandleFunc("/api/search", s.app.KnowledgeHandler.SearchHandler)         // POST - similarity search
	mux.HandleFunc("/api/ingest", s.app.KnowledgeHandler.IngestHandler)         // POST - load documents
	mux.HandleFunc("/api/knowledge/stats", s.app.KnowledgeHandler.StatsHandler) // GET - store statistics

	// Individual agents
	mux.HandleFunc("/api/simplify", s.app.AgentHandler.SimplifyHandler)          // POST - text simplification
	mux.HandleFunc("/api/story", s.app.AgentHandler.StoryHandler)                // POST - social story generation
	mux.HandleFunc("/api/story/situations", s.app.AgentHandler.SituationsHandler) // GET - situation catalog
	mux.HandleFunc("/api/image", s.app.AgentHandler.ImageHandler)                // POST - image generation
	mux.HandleFunc("/api/answer", s.app.AgentHandler.AnswerHandler)              // POST - grounded Q&A

	// Reports
	mux.HandleFunc("/api/reports", s.app.ReportHandler.ListHandler) // GET - list report records
	mux.HandleFunc("/api/reports/", s.handleReportRoutes)           // GET /{id}/download

	// Logs
	mux.HandleFunc("/api/logs/recent", s.app.WSHandler.GetRecentLogsHandler) // GET - buffered log history

	// System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 for unmatched /api/ routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleReportRoutes dispatches /api/reports/{id}/... subpaths.
func (s *Server) handleReportRoutes(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/download") {
		s.app.ReportHandler.DownloadHandler(w, r)
		return
	}
	s.app.APIHandler.NotFoundHandler(w, r)
}
