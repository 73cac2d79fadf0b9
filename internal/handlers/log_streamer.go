package handlers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/phuslu/log"
	"github.com/ternarybob/arbor"
	arborlevels "github.com/ternarybob/arbor/levels"
	arbormodels "github.com/ternarybob/arbor/models"

	"github.com/spectrumbridge/bridge/internal/common"
)

// LogStreamer consumes log batches from arbor's context channel and forwards
// them to WebSocket clients. Attach its channel with Logger.SetChannel.
type LogStreamer struct {
	ws              *WebSocketHandler
	logger          arbor.ILogger
	channel         chan []arbormodels.LogEvent
	minLevel        arbor.LogLevel
	excludePatterns []string
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
}

func NewLogStreamer(ws *WebSocketHandler, config *common.WebSocketConfig, logger arbor.ILogger) *LogStreamer {
	ctx, cancel := context.WithCancel(context.Background())
	s := &LogStreamer{
		ws:       ws,
		logger:   logger,
		channel:  make(chan []arbormodels.LogEvent, 10),
		minLevel: parseLogLevel("info"),
		ctx:      ctx,
		cancel:   cancel,
	}
	if config != nil {
		s.minLevel = parseLogLevel(config.MinLevel)
		s.excludePatterns = config.ExcludePatterns
	}
	return s
}

// parseLogLevel converts string log level to arbor.LogLevel
func parseLogLevel(levelStr string) arbor.LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return arbor.DebugLevel
	case "info":
		return arbor.InfoLevel
	case "warn", "warning":
		return arbor.WarnLevel
	case "error":
		return arbor.ErrorLevel
	default:
		return arbor.InfoLevel
	}
}

// convertTo3Letter converts full level names to 3-letter codes
func convertTo3Letter(level string) string {
	switch strings.ToUpper(level) {
	case "INFO":
		return "INF"
	case "WARN", "WARNING":
		return "WRN"
	case "ERROR":
		return "ERR"
	case "DEBUG":
		return "DBG"
	default:
		if len(level) == 3 {
			return strings.ToUpper(level)
		}
		return "INF"
	}
}

// GetChannel returns the channel for arbor to send log batches to
func (s *LogStreamer) GetChannel() chan []arbormodels.LogEvent {
	return s.channel
}

// Start launches the streaming goroutine
func (s *LogStreamer) Start() {
	s.wg.Add(1)
	go s.consume()
}

// Stop gracefully shuts down the streamer
func (s *LogStreamer) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info().Msg("Log streamer stopped")
}

func (s *LogStreamer) consume() {
	defer s.wg.Done()

	defer func() {
		if r := recover(); r != nil {
			// Use the logger directly; a panic here must not take the server down
			s.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("LogStreamer panic recovered")
		}
	}()

	for {
		select {
		case batch, ok := <-s.channel:
			if !ok {
				return
			}
			for _, event := range batch {
				if !s.shouldStream(event) {
					continue
				}
				s.ws.BroadcastLog(transformEvent(event))
			}
		case <-s.ctx.Done():
			return
		}
	}
}

// shouldStream filters events by level threshold and exclusion patterns.
// Broadcasting WebSocket lifecycle logs back over the WebSocket would loop.
func (s *LogStreamer) shouldStream(event arbormodels.LogEvent) bool {
	if !s.levelAtLeast(event.Level) {
		return false
	}
	for _, pattern := range s.excludePatterns {
		if strings.Contains(event.Message, pattern) {
			return false
		}
	}
	return true
}

func (s *LogStreamer) levelAtLeast(level log.Level) bool {
	return arborlevels.FromLogLevel(level) >= s.minLevel
}

// transformEvent converts an arbor log event into the wire format, folding
// structured fields into the message text.
func transformEvent(event arbormodels.LogEvent) LogEntry {
	message := event.Message
	for key, value := range event.Fields {
		message += fmt.Sprintf(" %s=%v", key, value)
	}

	return LogEntry{
		Timestamp: event.Timestamp.Format("15:04:05"),
		Level:     convertTo3Letter(event.Level.String()),
		Message:   message,
	}
}
