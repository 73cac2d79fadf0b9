package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/interfaces"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// recentLogCapacity bounds the in-memory log history served to newly
// connected clients.
const recentLogCapacity = 200

// WSMessage is the envelope for all WebSocket messages.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// LogEntry is one log line as streamed to WebSocket clients.
type LogEntry struct {
	Index     int    `json:"index"`
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// ProgressUpdate mirrors pipeline events onto the WebSocket so the UI can
// track orchestrations without polling.
type ProgressUpdate struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
}

// WebSocketHandler streams logs and pipeline progress to connected clients.
// Each connection gets its own write mutex; gorilla/websocket allows only one
// concurrent writer per connection.
type WebSocketHandler struct {
	logger           arbor.ILogger
	clients          map[*websocket.Conn]bool
	clientMutex      map[*websocket.Conn]*sync.Mutex
	mu               sync.RWMutex
	eventService     interfaces.EventService
	serverInstanceID string // Unique ID generated on startup - clients use to detect server restart

	recentMu   sync.Mutex
	recentLogs []LogEntry
	logIndex   int
}

func NewWebSocketHandler(eventService interfaces.EventService, logger arbor.ILogger) *WebSocketHandler {
	h := &WebSocketHandler{
		logger:           logger,
		clients:          make(map[*websocket.Conn]bool),
		clientMutex:      make(map[*websocket.Conn]*sync.Mutex),
		eventService:     eventService,
		serverInstanceID: uuid.New().String(),
	}

	logger.Info().Str("server_instance_id", h.serverInstanceID).Msg("WebSocket handler initialized")

	if eventService != nil {
		h.subscribeToPipelineEvents()
	}

	return h
}

// subscribeToPipelineEvents mirrors orchestration lifecycle events to
// connected clients as progress messages.
func (h *WebSocketHandler) subscribeToPipelineEvents() {
	eventTypes := []interfaces.EventType{
		interfaces.EventOrchestrationStarted,
		interfaces.EventOrchestrationCompleted,
		interfaces.EventTaskStarted,
		interfaces.EventTaskCompleted,
		interfaces.EventIngestCompleted,
		interfaces.EventReportGenerated,
	}

	for _, eventType := range eventTypes {
		et := eventType
		err := h.eventService.Subscribe(et, func(ctx context.Context, event interfaces.Event) error {
			h.BroadcastProgress(ProgressUpdate{
				Event:   string(event.Type),
				Payload: event.Payload,
			})
			return nil
		})
		if err != nil {
			h.logger.Warn().Err(err).Str("event_type", string(et)).Msg("Failed to subscribe to pipeline event")
		}
	}
}

// HandleWebSocket upgrades the connection and holds it open until the client
// disconnects.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.clientMutex[conn] = &sync.Mutex{}
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Msgf("WebSocket client connected (total: %d)", clientCount)

	h.sendToClient(conn, WSMessage{
		Type: "hello",
		Payload: map[string]string{
			"server_instance_id": h.serverInstanceID,
		},
	})

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		delete(h.clientMutex, conn)
		remaining := len(h.clients)
		h.mu.Unlock()

		conn.Close()
		h.logger.Debug().Msgf("WebSocket client disconnected (remaining: %d)", remaining)
	}()

	// Read messages from client (keep connection alive)
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket error")
			}
			break
		}
	}
}

// BroadcastLog sends one log entry to all connected clients and records it in
// the recent-log buffer.
func (h *WebSocketHandler) BroadcastLog(entry LogEntry) {
	h.recentMu.Lock()
	entry.Index = h.logIndex
	h.logIndex++
	h.recentLogs = append(h.recentLogs, entry)
	if len(h.recentLogs) > recentLogCapacity {
		h.recentLogs = h.recentLogs[len(h.recentLogs)-recentLogCapacity:]
	}
	h.recentMu.Unlock()

	h.broadcast(WSMessage{
		Type:    "log",
		Payload: entry,
	})
}

// BroadcastProgress sends a pipeline progress update to all connected clients.
func (h *WebSocketHandler) BroadcastProgress(update ProgressUpdate) {
	h.broadcast(WSMessage{
		Type:    "progress",
		Payload: update,
	})
}

func (h *WebSocketHandler) broadcast(msg WSMessage) {
	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	mutexes := make([]*sync.Mutex, 0, len(h.clients))
	for conn := range h.clients {
		clients = append(clients, conn)
		mutexes = append(mutexes, h.clientMutex[conn])
	}
	h.mu.RUnlock()

	for i, conn := range clients {
		mutex := mutexes[i]
		mutex.Lock()
		err := conn.WriteJSON(msg)
		mutex.Unlock()

		if err != nil {
			h.logger.Warn().Err(err).Msg("Failed to send message to WebSocket client")
		}
	}
}

func (h *WebSocketHandler) sendToClient(conn *websocket.Conn, msg WSMessage) {
	h.mu.RLock()
	mutex := h.clientMutex[conn]
	h.mu.RUnlock()

	if mutex == nil {
		return
	}
	mutex.Lock()
	conn.WriteJSON(msg)
	mutex.Unlock()
}

// GetRecentLogsHandler returns the buffered log history so a freshly loaded UI
// can backfill before live streaming starts.
// GET /api/logs/recent
func (h *WebSocketHandler) GetRecentLogsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	h.recentMu.Lock()
	logs := make([]LogEntry, len(h.recentLogs))
	copy(logs, h.recentLogs)
	h.recentMu.Unlock()

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"count": len(logs),
	})
}
