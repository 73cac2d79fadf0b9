package events

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/interfaces"
)

// NewLoggerSubscriber creates an event handler that logs all events
func NewLoggerSubscriber(logger arbor.ILogger) interfaces.EventHandler {
	return func(ctx context.Context, event interfaces.Event) error {
		// Extract common fields from payload if available
		var task, question, status string
		if payload, ok := event.Payload.(map[string]interface{}); ok {
			if t, ok := payload["task"].(string); ok {
				task = t
			}
			if q, ok := payload["question"].(string); ok {
				question = q
			}
			if st, ok := payload["status"].(string); ok {
				status = st
			}
		}

		logEvent := logger.Debug().
			Str("event_type", string(event.Type))

		if task != "" {
			logEvent = logEvent.Str("task", task)
		}
		if question != "" {
			logEvent = logEvent.Str("question", question)
		}
		if status != "" {
			logEvent = logEvent.Str("status", status)
		}

		logEvent.Msg("Event published")

		return nil
	}
}

// SubscribeLoggerToAllEvents subscribes the logger to all known event types
func SubscribeLoggerToAllEvents(eventService interfaces.EventService, logger arbor.ILogger) error {
	subscriber := NewLoggerSubscriber(logger)

	eventTypes := []interfaces.EventType{
		interfaces.EventOrchestrationStarted,
		interfaces.EventOrchestrationCompleted,
		interfaces.EventTaskStarted,
		interfaces.EventTaskCompleted,
		interfaces.EventIngestCompleted,
		interfaces.EventReportGenerated,
	}

	for _, eventType := range eventTypes {
		if err := eventService.Subscribe(eventType, subscriber); err != nil {
			return fmt.Errorf("failed to subscribe logger to event type %s: %w", eventType, err)
		}
	}

	logger.Info().
		Int("event_type_count", len(eventTypes)).
		Msg("Logger subscribed to all event types")

	return nil
}
