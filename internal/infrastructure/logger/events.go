package logger

import (
	"context"

	"go.uber.org/zap"

	"github.com/smberp/backend/internal/domain/shared"
)

// EventLogger publishes domain events as structured log entries. Downstream
// consumers (audit tooling, log-based alerting) read them from the log
// stream; there is no message broker in this deployment.
type EventLogger struct {
	logger *zap.Logger
}

// NewEventLogger creates an EventLogger writing through the given zap logger
func NewEventLogger(logger *zap.Logger) *EventLogger {
	return &EventLogger{logger: logger.Named("events")}
}

// Publish logs each event with its identifying fields
func (l *EventLogger) Publish(ctx context.Context, events ...shared.DomainEvent) {
	for _, event := range events {
		l.logger.Info("domain event",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_type", event.AggregateType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Time("occurred_at", event.OccurredAt()),
		)
	}
}

// Ensure EventLogger implements EventPublisher
var _ shared.EventPublisher = (*EventLogger)(nil)
