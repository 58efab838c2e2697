package notify

import (
	"context"
	"encoding/json"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/orbit-delivery/orbit-backend/pkg/enums"
	"github.com/orbit-delivery/orbit-backend/pkg/logger"
)

const publishTimeout = 10 * time.Second

const (
	eventOrderUpdated = "order.status_updated"
	eventTaskUpdated  = "task.status_updated"
)

// notificationEvent is the wire payload published to the notification topic.
type notificationEvent struct {
	Event      string    `json:"event"`
	EntityID   uuid.UUID `json:"entity_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

type publisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
}

// PubSubSink publishes notification events to the configured Pub/Sub topic.
type PubSubSink struct {
	publisher publisher
	logg      *logger.Logger
}

// NewPubSubSink wraps a topic publisher. A nil publisher yields a sink that
// only logs, so callers do not have to branch on broker availability.
func NewPubSubSink(pub *pubsub.Publisher, logg *logger.Logger) *PubSubSink {
	sink := &PubSubSink{logg: logg}
	if pub != nil {
		sink.publisher = pub
	}
	return sink
}

func (s *PubSubSink) OrderUpdated(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) {
	s.emit(ctx, eventOrderUpdated, orderID, status.String())
}

func (s *PubSubSink) TaskUpdated(ctx context.Context, taskID uuid.UUID, status enums.DeliveryTaskStatus) {
	s.emit(ctx, eventTaskUpdated, taskID, status.String())
}

// emit serializes and publishes without waiting for the broker ack. Failures
// are logged and dropped; state transitions never roll back on notify errors.
func (s *PubSubSink) emit(ctx context.Context, event string, entityID uuid.UUID, status string) {
	payload, err := json.Marshal(notificationEvent{
		Event:      event,
		EntityID:   entityID,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "marshal notification event", err)
		}
		return
	}

	if s.publisher == nil {
		if s.logg != nil {
			s.logg.Info(ctx, "notification dropped, no broker configured")
		}
		return
	}

	result := s.publisher.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event": event,
		},
	})

	// The request context may be canceled before the broker acks, so the
	// ack wait runs on its own deadline.
	go func() {
		ackCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if _, err := result.Get(ackCtx); err != nil && s.logg != nil {
			s.logg.Error(ackCtx, "publish notification event", err)
		}
	}()
}
