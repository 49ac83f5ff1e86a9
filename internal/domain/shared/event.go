package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents an event that occurred in the domain
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// EventPublisher delivers domain events after the transaction that raised
// them has committed. Delivery is best effort; publishers must not fail the
// business operation.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent)
}

// NopEventPublisher discards all events. The default for services that were
// not wired with a publisher.
type NopEventPublisher struct{}

// Publish discards the events
func (NopEventPublisher) Publish(ctx context.Context, events ...DomainEvent) {}

// CollectEvents drains the pending events from the given aggregates. Used to
// gather events inside a transaction so they can be published after commit.
func CollectEvents(roots ...AggregateRoot) []DomainEvent {
	var events []DomainEvent
	for _, root := range roots {
		pending := root.GetDomainEvents()
		if len(pending) == 0 {
			continue
		}
		events = append(events, pending...)
		root.ClearDomainEvents()
	}
	return events
}

// BaseDomainEvent provides common fields for all domain events
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	AggID     uuid.UUID `json:"aggregate_id"`
	AggType   string    `json:"aggregate_type"`
}

// EventID returns the unique event identifier
func (e *BaseDomainEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type of the event
func (e *BaseDomainEvent) EventType() string {
	return e.Type
}

// OccurredAt returns when the event occurred
func (e *BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the ID of the aggregate that produced this event
func (e *BaseDomainEvent) AggregateID() uuid.UUID {
	return e.AggID
}

// AggregateType returns the type of the aggregate
func (e *BaseDomainEvent) AggregateType() string {
	return e.AggType
}

// NewBaseDomainEvent creates a new base domain event
func NewBaseDomainEvent(eventType, aggType string, aggID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now(),
		AggID:     aggID,
		AggType:   aggType,
	}
}
