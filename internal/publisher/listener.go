package publisher

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/paybill/paybill/internal/logger"
)

// EventListener drains lifecycle topics and logs them. It stands in for
// downstream consumers (webhooks, exports) that attach to the same topics.
type EventListener struct {
	publisher EventPublisher
	logger    *logger.Logger
}

func NewEventListener(publisher EventPublisher, log *logger.Logger) *EventListener {
	return &EventListener{
		publisher: publisher,
		logger:    log,
	}
}

// Start subscribes to all lifecycle topics and consumes until ctx is done
func (l *EventListener) Start(ctx context.Context) error {
	topics := []string{
		TopicBillingItemApproved,
		TopicInvoiceCreated,
		TopicInvoiceFinalized,
		TopicInvoiceVoided,
	}

	for _, topic := range topics {
		messages, err := l.publisher.Subscribe(ctx, topic)
		if err != nil {
			return err
		}
		go l.consume(ctx, topic, messages)
	}
	return nil
}

func (l *EventListener) consume(ctx context.Context, topic string, messages <-chan *message.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}

			var event Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				l.logger.Errorw("failed to decode event", "topic", topic, "error", err)
				msg.Ack()
				continue
			}

			l.logger.Infow("billing event",
				"topic", topic,
				"event_id", event.ID,
				"tenant_id", event.TenantID,
				"payload", event.Payload,
			)
			msg.Ack()
		}
	}
}
