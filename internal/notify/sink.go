package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/orbit-delivery/orbit-backend/pkg/enums"
)

// Sink receives fire-and-forget fulfillment notifications. Implementations
// must never block the caller on delivery and must never return an error to
// the state transition that emitted the event.
type Sink interface {
	OrderUpdated(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus)
	TaskUpdated(ctx context.Context, taskID uuid.UUID, status enums.DeliveryTaskStatus)
}

// NoopSink discards every notification. Used when no broker is configured.
type NoopSink struct{}

func (NoopSink) OrderUpdated(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) {}

func (NoopSink) TaskUpdated(ctx context.Context, taskID uuid.UUID, status enums.DeliveryTaskStatus) {
}
