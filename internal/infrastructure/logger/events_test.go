package logger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/smberp/backend/internal/domain/shared"
)

type recordedEvent struct {
	shared.BaseDomainEvent
}

func TestEventLoggerPublish(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	publisher := NewEventLogger(zap.New(core))

	aggID := uuid.New()
	event := &recordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("invoice.finalized", "Invoice", aggID),
	}

	publisher.Publish(context.Background(), event)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "domain event", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "invoice.finalized", fields["event_type"])
	assert.Equal(t, "Invoice", fields["aggregate_type"])
	assert.Equal(t, aggID.String(), fields["aggregate_id"])
}

func TestEventLoggerPublishNothing(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	publisher := NewEventLogger(zap.New(core))

	publisher.Publish(context.Background())

	assert.Zero(t, logs.Len())
}
