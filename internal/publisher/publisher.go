package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/logger"
	"github.com/paybill/paybill/internal/types"
)

// Topics for billing lifecycle events
const (
	TopicBillingItemApproved = "billing_item.approved"
	TopicInvoiceCreated      = "invoice.created"
	TopicInvoiceFinalized    = "invoice.finalized"
	TopicInvoiceVoided       = "invoice.voided"
)

// Event is the envelope published for billing lifecycle changes
type Event struct {
	ID        string         `json:"id"`
	Topic     string         `json:"topic"`
	TenantID  string         `json:"tenant_id"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
}

// EventPublisher publishes billing lifecycle events
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload map[string]any) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

type eventPublisher struct {
	pubsub *gochannel.GoChannel
	logger *logger.Logger
}

// NewEventPublisher creates an in-process watermill publisher. The
// gochannel transport keeps delivery inside the process; subscribers
// attach through Subscribe.
func NewEventPublisher(log *logger.Logger) EventPublisher {
	goChannel := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: 100,
		},
		watermill.NopLogger{},
	)

	return &eventPublisher{
		pubsub: goChannel,
		logger: log,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, topic string, payload map[string]any) error {
	event := Event{
		ID:        types.GenerateUUID(),
		Topic:     topic,
		TenantID:  types.GetTenantID(ctx),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode event").
			Mark(ierr.ErrSystem)
	}

	msg := message.NewMessage(event.ID, body)
	if err := p.pubsub.Publish(topic, msg); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to publish event").
			Mark(ierr.ErrSystem)
	}

	p.logger.Debugw("published event", "topic", topic, "event_id", event.ID)
	return nil
}

func (p *eventPublisher) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return p.pubsub.Subscribe(ctx, topic)
}

func (p *eventPublisher) Close() error {
	return p.pubsub.Close()
}
