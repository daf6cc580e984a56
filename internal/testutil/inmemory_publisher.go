package testutil

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/paybill/paybill/internal/publisher"
)

// PublishedEvent records a single Publish call for assertions
type PublishedEvent struct {
	Topic   string
	Payload map[string]any
}

// InMemoryPublisher implements publisher.EventPublisher and records
// every published event instead of delivering it anywhere.
type InMemoryPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

func (p *InMemoryPublisher) Publish(ctx context.Context, topic string, payload map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{Topic: topic, Payload: payload})
	return nil
}

func (p *InMemoryPublisher) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (p *InMemoryPublisher) Close() error {
	return nil
}

// Events returns all recorded events, optionally filtered by topic
func (p *InMemoryPublisher) Events(topic string) []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	if topic == "" {
		return append([]PublishedEvent{}, p.events...)
	}

	matched := make([]PublishedEvent, 0)
	for _, e := range p.events {
		if e.Topic == topic {
			matched = append(matched, e)
		}
	}
	return matched
}

// Reset clears recorded events between tests
func (p *InMemoryPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

var _ publisher.EventPublisher = (*InMemoryPublisher)(nil)
