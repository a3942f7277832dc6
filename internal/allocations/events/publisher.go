package events

import (
	"context"
	"time"

	"roomly/pkg/kafka"
	"roomly/pkg/logger"
	"roomly/pkg/middleware"
	"roomly/pkg/model"
)

const (
	TopicAllocations = "roomly.allocations"

	EventAllocationCreated = "allocation.created"
	EventAllocationUpdated = "allocation.updated"
	EventAllocationDeleted = "allocation.deleted"

	source = "allocations-service"
)

// AllocationEvent is the payload published for every allocation mutation.
// Events are keyed by room id, so consumers see each room's history in order.
type AllocationEvent struct {
	AllocationID string    `json:"allocation_id"`
	RoomID       string    `json:"room_id"`
	Subject      string    `json:"subject"`
	StartAt      time.Time `json:"start_at"`
	EndAt        time.Time `json:"end_at"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher emits allocation lifecycle events. Publishing happens after the
// owning transaction commits and must never fail the request.
type Publisher interface {
	AllocationCreated(ctx context.Context, allocation *model.Allocation)
	AllocationUpdated(ctx context.Context, allocation *model.Allocation)
	AllocationDeleted(ctx context.Context, allocation *model.Allocation)
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *kafkaPublisher) AllocationCreated(ctx context.Context, allocation *model.Allocation) {
	p.publish(ctx, EventAllocationCreated, allocation)
}

func (p *kafkaPublisher) AllocationUpdated(ctx context.Context, allocation *model.Allocation) {
	p.publish(ctx, EventAllocationUpdated, allocation)
}

func (p *kafkaPublisher) AllocationDeleted(ctx context.Context, allocation *model.Allocation) {
	p.publish(ctx, EventAllocationDeleted, allocation)
}

func (p *kafkaPublisher) publish(ctx context.Context, eventType string, allocation *model.Allocation) {
	event := AllocationEvent{
		AllocationID: allocation.ID,
		RoomID:       allocation.RoomID,
		Subject:      allocation.Subject,
		StartAt:      allocation.StartAt,
		EndAt:        allocation.EndAt,
		OccurredAt:   time.Now(),
	}

	msg, err := kafka.NewMessage(allocation.RoomID, eventType, source, event)
	if err != nil {
		p.log.Error("Failed to encode allocation event",
			"event_type", eventType,
			"allocation_id", allocation.ID,
			"error", err,
		)
		return
	}
	msg.WithCorrelationID(middleware.RequestIDFromContext(ctx))

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish allocation event",
			"event_type", eventType,
			"allocation_id", allocation.ID,
			"room_id", allocation.RoomID,
			"error", err,
		)
		return
	}

	p.log.Debug("Allocation event published",
		"event_type", eventType,
		"event_id", msg.EventID(),
		"allocation_id", allocation.ID,
		"room_id", allocation.RoomID,
	)
}

type nopPublisher struct{}

// NewNopPublisher returns a publisher that discards every event. Used when
// the broker is not configured.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) AllocationCreated(context.Context, *model.Allocation) {}
func (nopPublisher) AllocationUpdated(context.Context, *model.Allocation) {}
func (nopPublisher) AllocationDeleted(context.Context, *model.Allocation) {}
